package installers

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"path"
	"strconv"
	"text/template"

	"github.com/imamik/etcdnode/internal/config"
	platformfs "github.com/imamik/etcdnode/internal/platform/fs"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed files/*
var staticFS embed.FS

// Installed locations.
const (
	CronPath = "/etc/cron.d/etcd-defrag"

	NRPEDirDebian = "/etc/nagios/nrpe.d"
	NRPEDirOther  = "/etc/nrpe.d"
	NRPEFile      = "etcd.cfg"
	CheckPlugin   = "/usr/lib/nagios/plugins/check_etcd_v3_cluster.py"

	LeaderExporterUnit   = "etcd-leader-exporter.service"
	LeaderExporterBinary = "/usr/local/bin/etcd_leader_to_etcd_keys.py"
	UnitDir              = "/etc/systemd/system"
)

// File is one managed file.
type File struct {
	Name    string
	Path    string
	Content []byte
	Mode    fs.FileMode
}

// Apply writes the file if its content or mode differ from what is on
// disk and reports whether it did.
func (f File) Apply() (bool, error) {
	changed, err := platformfs.EnsureFile(f.Path, f.Content, f.Mode)
	if err != nil {
		return false, fmt.Errorf("failed to apply %s: %w", f.Name, err)
	}
	return changed, nil
}

// DefragCron returns the cron job that defragments the local member.
func DefragCron(cfg *config.Config) (File, error) {
	content, err := render("etcd-defrag.cron.tmpl", struct {
		Schedule string
		Endpoint string
	}{
		Schedule: cfg.Cron.Schedule,
		Endpoint: "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.ClientPort)),
	})
	if err != nil {
		return File{}, err
	}
	return File{Name: "defrag cron job", Path: CronPath, Content: content, Mode: 0o644}, nil
}

// NRPEDir returns the NRPE include directory for an OS family.
func NRPEDir(osFamily string) string {
	if osFamily == "debian" {
		return NRPEDirDebian
	}
	return NRPEDirOther
}

// MonitoringCommand returns the NRPE command definition for the cluster
// membership check. Unset thresholds are passed as -1.
func MonitoringCommand(cfg *config.Config, osFamily string) (File, error) {
	content, err := render("nrpe-etcd.cfg.tmpl", struct {
		Plugin   string
		Warning  int
		Critical int
	}{
		Plugin:   CheckPlugin,
		Warning:  threshold(cfg.Monitoring.Warning),
		Critical: threshold(cfg.Monitoring.Critical),
	})
	if err != nil {
		return File{}, err
	}
	return File{
		Name:    "NRPE command",
		Path:    path.Join(NRPEDir(osFamily), NRPEFile),
		Content: content,
		Mode:    0o644,
	}, nil
}

// LeaderExporterPeers returns one host:port client endpoint per member,
// in membership order.
func LeaderExporterPeers(members []string, clientPort int) []string {
	peers := make([]string, 0, len(members))
	for _, m := range members {
		peers = append(peers, net.JoinHostPort(m, strconv.Itoa(clientPort)))
	}
	return peers
}

// LeaderExporterUnitFile returns the systemd unit running the leader exporter.
func LeaderExporterUnitFile(cfg *config.Config) (File, error) {
	content, err := render("etcd-leader-exporter.service.tmpl", struct {
		Binary      string
		Peers       []string
		Delay       int
		EtcdService string
	}{
		Binary:      LeaderExporterBinary,
		Peers:       LeaderExporterPeers(cfg.Members, cfg.ClientPort),
		Delay:       cfg.ExporterDelay(),
		EtcdService: cfg.Service,
	})
	if err != nil {
		return File{}, err
	}
	return File{
		Name:    "leader exporter unit",
		Path:    path.Join(UnitDir, LeaderExporterUnit),
		Content: content,
		Mode:    0o644,
	}, nil
}

// CheckPluginScript returns the NRPE plugin the monitoring command runs.
func CheckPluginScript() (File, error) {
	return static("cluster check plugin", CheckPlugin)
}

// LeaderExporterScript returns the daemon the leader exporter unit runs.
func LeaderExporterScript() (File, error) {
	return static("leader exporter script", LeaderExporterBinary)
}

// static returns the embedded executable installed at target.
func static(name, target string) (File, error) {
	content, err := staticFS.ReadFile("files/" + path.Base(target))
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return File{Name: name, Path: target, Content: content, Mode: 0o755}, nil
}

func threshold(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func render(name string, data any) ([]byte, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
