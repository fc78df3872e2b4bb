package identity

// Resolve returns the identity of the local host using DefaultMatchers.
func Resolve(members []string, in Input) (Identity, error) {
	return ResolveWith(DefaultMatchers, members, in)
}

// ResolveWith tries matchers in order and returns the first match.
func ResolveWith(matchers []Matcher, members []string, in Input) (Identity, error) {
	for _, m := range matchers {
		if member, ok := m.Match(in, members); ok {
			return Identity{Member: member, Method: m.Method}, nil
		}
	}

	return Identity{}, &ResolutionFailure{
		FQDN:     in.FQDN,
		Hostname: in.Hostname,
		IPv4:     append([]string(nil), in.Addresses.IPv4...),
		IPv6:     append([]string(nil), in.Addresses.IPv6...),
		Members:  append([]string(nil), members...),
	}
}
