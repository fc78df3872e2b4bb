package identity

import "net"

// Matcher is one resolution strategy. Match must be pure: it only looks at
// its arguments and returns the matching membership entry, if any.
type Matcher struct {
	Method Method
	Match  func(in Input, members []string) (string, bool)
}

// DefaultMatchers is the resolution order.
var DefaultMatchers = []Matcher{
	{Method: MethodFQDN, Match: matchFQDN},
	{Method: MethodHostname, Match: matchHostname},
	{Method: MethodIPv4, Match: matchIPv4},
	{Method: MethodIPv6, Match: matchIPv6},
}

func matchFQDN(in Input, members []string) (string, bool) {
	return matchName(in.FQDN, members)
}

func matchHostname(in Input, members []string) (string, bool) {
	return matchName(in.Hostname, members)
}

func matchIPv4(in Input, members []string) (string, bool) {
	return firstAddressMember(in.Addresses.IPv4, members)
}

func matchIPv6(in Input, members []string) (string, bool) {
	return firstAddressMember(in.Addresses.IPv6, members)
}

func matchName(name string, members []string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, m := range members {
		if m == name {
			return m, true
		}
	}
	return "", false
}

// firstAddressMember returns the first membership entry, in membership
// order, that is one of the local addresses.
func firstAddressMember(local, members []string) (string, bool) {
	if len(local) == 0 {
		return "", false
	}
	for _, m := range members {
		for _, addr := range local {
			if sameAddress(m, addr) {
				return m, true
			}
		}
	}
	return "", false
}

// sameAddress compares two address literals, tolerating different textual
// forms of the same IPv6 address. Non-IP strings never match.
func sameAddress(member, local string) bool {
	if member == local {
		return net.ParseIP(member) != nil
	}
	a, b := net.ParseIP(member), net.ParseIP(local)
	return a != nil && b != nil && a.Equal(b)
}
