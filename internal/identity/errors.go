package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ResolutionFailure means the host matched no membership entry by any
// method. It carries every attempted value so a misconfigured membership
// list can be diagnosed from the error alone.
type ResolutionFailure struct {
	FQDN     string
	Hostname string
	IPv4     []string
	IPv6     []string
	Members  []string
}

func (e *ResolutionFailure) Error() string {
	return fmt.Sprintf("unable to find this host in members [%s]: fqdn=%q hostname=%q ipv4=[%s] ipv6=[%s]",
		strings.Join(e.Members, ", "), e.FQDN, e.Hostname,
		strings.Join(e.IPv4, ", "), strings.Join(e.IPv6, ", "))
}

// IsResolutionFailure reports whether err wraps a *ResolutionFailure.
func IsResolutionFailure(err error) bool {
	var rf *ResolutionFailure
	return errors.As(err, &rf)
}
