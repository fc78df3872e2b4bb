package identity

import (
	"fmt"

	"github.com/imamik/etcdnode/internal/facts"
)

// Method names how the local host was matched to its membership entry.
type Method string

const (
	MethodFQDN     Method = "fqdn"
	MethodHostname Method = "hostname"
	MethodIPv4     Method = "ipv4"
	MethodIPv6     Method = "ipv6"
)

// Identity is the resolved "who am I" of one run. It is a value type and
// is never modified after Resolve returns it.
type Identity struct {
	Member string `json:"member"`
	Method Method `json:"method"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%s (matched by %s)", id.Member, id.Method)
}

// Input is what the matchers look at.
type Input struct {
	FQDN      string
	Hostname  string
	Addresses facts.AddressSet
}

// InputFromFacts builds the matcher input from a fact snapshot.
func InputFromFacts(f facts.Facts, addrs facts.AddressSet) Input {
	return Input{
		FQDN:      f.FQDN,
		Hostname:  f.Hostname,
		Addresses: addrs,
	}
}
