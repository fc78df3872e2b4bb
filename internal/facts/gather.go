package facts

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/shirou/gopsutil/host"
	psnet "github.com/shirou/gopsutil/net"
)

// Gatherer reads live facts from the host. The zero value is not usable;
// call NewGatherer.
type Gatherer struct {
	hostInfo    func(ctx context.Context) (*host.InfoStat, error)
	interfaces  func(ctx context.Context) ([]psnet.InterfaceStat, error)
	lookupCNAME func(ctx context.Context, name string) (string, error)
	lookupHost  func(ctx context.Context, name string) ([]string, error)
	lookupAddr  func(ctx context.Context, addr string) ([]string, error)
}

// NewGatherer creates a Gatherer backed by gopsutil and the system resolver.
func NewGatherer() *Gatherer {
	return &Gatherer{
		hostInfo: host.InfoWithContext,
		interfaces: func(ctx context.Context) ([]psnet.InterfaceStat, error) {
			return psnet.InterfacesWithContext(ctx)
		},
		lookupCNAME: net.DefaultResolver.LookupCNAME,
		lookupHost:  net.DefaultResolver.LookupHost,
		lookupAddr:  net.DefaultResolver.LookupAddr,
	}
}

// Gather takes the fact snapshot for one run.
func (g *Gatherer) Gather(ctx context.Context) (Facts, error) {
	info, err := g.hostInfo(ctx)
	if err != nil {
		return Facts{}, fmt.Errorf("failed to read host info: %w", err)
	}

	ifaces, err := g.interfaces(ctx)
	if err != nil {
		return Facts{}, fmt.Errorf("failed to list network interfaces: %w", err)
	}

	f := Facts{
		Hostname: shortName(info.Hostname),
		OSFamily: info.PlatformFamily,
		IPv4:     make(map[string]string),
		IPv6:     make(map[string]string),
	}
	if f.OSFamily == "" {
		f.OSFamily = info.OS
	}
	f.FQDN = g.fqdn(ctx, info.Hostname)

	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
		for _, a := range iface.Addrs {
			ip := parseAddr(a.Addr)
			if ip == nil {
				continue
			}
			if ip.To4() != nil {
				if _, ok := f.IPv4[iface.Name]; !ok {
					f.IPv4[iface.Name] = ip.String()
				}
				continue
			}
			if ip.IsLinkLocalUnicast() {
				continue
			}
			if _, ok := f.IPv6[iface.Name]; !ok {
				f.IPv6[iface.Name] = ip.String()
			}
		}
	}
	f.Interfaces = strings.Join(names, ",")

	return f, nil
}

// fqdn resolves the canonical name of hostname, falling back to a reverse
// lookup of its first address and finally to hostname itself.
func (g *Gatherer) fqdn(ctx context.Context, hostname string) string {
	if cname, err := g.lookupCNAME(ctx, hostname); err == nil {
		if name := strings.TrimSuffix(cname, "."); strings.Contains(name, ".") {
			return name
		}
	}

	if addrs, err := g.lookupHost(ctx, hostname); err == nil && len(addrs) > 0 {
		if names, err := g.lookupAddr(ctx, addrs[0]); err == nil && len(names) > 0 {
			if name := strings.TrimSuffix(names[0], "."); strings.Contains(name, ".") {
				return name
			}
		}
	}

	return hostname
}

// parseAddr accepts both "10.0.0.1/24" and bare "10.0.0.1".
func parseAddr(s string) net.IP {
	if ip, _, err := net.ParseCIDR(s); err == nil {
		return ip
	}
	return net.ParseIP(s)
}

func shortName(hostname string) string {
	if i := strings.IndexByte(hostname, '.'); i > 0 {
		return hostname[:i]
	}
	return hostname
}
