package facts

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultExclude matches interfaces that never identify a cluster member.
var DefaultExclude = regexp.MustCompile(`^(lo|docker0)$`)

// AddressLookup returns the address bound to iface, or "" when it has none.
type AddressLookup func(iface string) string

// AddressSet holds the local addresses in interface order.
type AddressSet struct {
	IPv4 []string `json:"ipv4"`
	IPv6 []string `json:"ipv6"`
}

// SplitInterfaces splits a raw interface list on commas and whitespace.
func SplitInterfaces(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// Collect builds the address sets from the raw interface list.
//
// Interfaces matching exclude are skipped, interfaces without an address
// contribute nothing, and the interface order of raw is preserved. A nil
// exclude means DefaultExclude.
func Collect(raw string, exclude *regexp.Regexp, ipv4, ipv6 AddressLookup) AddressSet {
	if exclude == nil {
		exclude = DefaultExclude
	}

	set := AddressSet{IPv4: []string{}, IPv6: []string{}}
	for _, iface := range SplitInterfaces(raw) {
		if exclude.MatchString(iface) {
			continue
		}
		if ipv4 != nil {
			if addr := ipv4(iface); addr != "" {
				set.IPv4 = append(set.IPv4, addr)
			}
		}
		if ipv6 != nil {
			if addr := ipv6(iface); addr != "" {
				set.IPv6 = append(set.IPv6, addr)
			}
		}
	}
	return set
}
