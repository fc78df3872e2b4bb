package etcdconf

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/imamik/etcdnode/internal/config"
)

const (
	scheme = "http"

	// ClusterStateNew is the only initial-cluster-state ever emitted.
	// Membership is static and every bootstrap starts from an empty data dir.
	ClusterStateNew = "new"

	wildcardIPv4 = "0.0.0.0"
	wildcardIPv6 = "::"
)

// Loopback is the extra client endpoint every member advertises.
const Loopback = "127.0.0.1"

// Params is the full etcd parameter set for one member. Field names follow
// etcd's configuration file keys.
type Params struct {
	Name                     string `yaml:"name" json:"name"`
	DataDir                  string `yaml:"data-dir" json:"data_dir"`
	ListenPeerURLs           string `yaml:"listen-peer-urls" json:"listen_peer_urls"`
	ListenClientURLs         string `yaml:"listen-client-urls" json:"listen_client_urls"`
	InitialAdvertisePeerURLs string `yaml:"initial-advertise-peer-urls" json:"initial_advertise_peer_urls"`
	AdvertiseClientURLs      string `yaml:"advertise-client-urls" json:"advertise_client_urls"`
	InitialCluster           string `yaml:"initial-cluster" json:"initial_cluster"`
	InitialClusterToken      string `yaml:"initial-cluster-token" json:"initial_cluster_token"`
	InitialClusterState      string `yaml:"initial-cluster-state" json:"initial_cluster_state"`
	LogLevel                 string `yaml:"log-level" json:"log_level"`
	AutoCompactionMode       string `yaml:"auto-compaction-mode,omitempty" json:"auto_compaction_mode,omitempty"`
	AutoCompactionRetention  string `yaml:"auto-compaction-retention,omitempty" json:"auto_compaction_retention,omitempty"`
}

// Build returns the parameters for member, whose data lives in dataDir.
// Ports are taken as already validated.
func Build(cfg *config.Config, member, dataDir string) Params {
	wildcard := wildcardIPv4
	if isIPv6(member) {
		wildcard = wildcardIPv6
	}

	p := Params{
		Name:                     member,
		DataDir:                  dataDir,
		ListenPeerURLs:           URL(wildcard, cfg.PeerPort),
		ListenClientURLs:         URL(wildcard, cfg.ClientPort),
		InitialAdvertisePeerURLs: URL(member, cfg.PeerPort),
		AdvertiseClientURLs:      joinURLs(URL(member, cfg.ClientPort), URL(Loopback, cfg.ClientPort)),
		InitialCluster:           InitialCluster(cfg.Members, cfg.PeerPort),
		InitialClusterToken:      cfg.Token,
		InitialClusterState:      ClusterStateNew,
		LogLevel:                 "info",
	}
	if cfg.Debug {
		p.LogLevel = "debug"
	}
	if cfg.AutoCompactionRetention != "" {
		p.AutoCompactionRetention = cfg.AutoCompactionRetention
		p.AutoCompactionMode = cfg.AutoCompactionMode
	}
	return p
}

// URL returns scheme://host:port, bracketing IPv6 literals.
func URL(host string, port int) string {
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

// InitialCluster joins "<member>=<peer url>" for every member, in order.
func InitialCluster(members []string, peerPort int) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, m+"="+URL(m, peerPort))
	}
	return strings.Join(parts, ",")
}

func joinURLs(urls ...string) string {
	return strings.Join(urls, ",")
}

func isIPv6(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.To4() == nil
}
