package facts

import (
	"regexp"
	"strings"
)

// Facts is the read-only snapshot of the host taken at the start of a run.
type Facts struct {
	FQDN     string `json:"fqdn"`
	Hostname string `json:"hostname"`
	OSFamily string `json:"os_family"`

	// Interfaces is the raw, comma separated interface name list.
	Interfaces string `json:"interfaces"`

	IPv4 map[string]string `json:"ipv4_by_interface"`
	IPv6 map[string]string `json:"ipv6_by_interface"`
}

// Addresses returns the address sets of all non-excluded interfaces.
func (f Facts) Addresses(exclude *regexp.Regexp) AddressSet {
	return Collect(f.Interfaces, exclude, mapLookup(f.IPv4), mapLookup(f.IPv6))
}

// IsDebian reports whether the host belongs to the Debian OS family.
func (f Facts) IsDebian() bool {
	return strings.EqualFold(f.OSFamily, "debian")
}

func mapLookup(m map[string]string) AddressLookup {
	return func(iface string) string {
		return m[iface]
	}
}
