package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	gossh "golang.org/x/crypto/ssh"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/platform/ssh"
)

// FleetOptions configures FleetApply.
type FleetOptions struct {
	GlobalOptions
	Overrides
	ConfigPath string
	User       string
	KeyPath    string
	Port       int
	Binary     string // etcdnode on the remote hosts

	KnownHosts      []string
	InsecureHostKey bool
}

// RemoteExecutor runs a command on one host with input on stdin.
// Implemented by internal/platform/ssh.Client.
type RemoteExecutor interface {
	ExecuteWithInput(ctx context.Context, command string, input []byte) (string, error)
}

// Factory function variables for fleet - can be replaced in tests.
var (
	// newRemote connects to one member.
	newRemote = func(cfg *ssh.Config) (RemoteExecutor, error) {
		return ssh.NewClient(cfg)
	}

	// readFile reads the local configuration and key.
	readFile = os.ReadFile

	// knownHosts loads host keys from known_hosts files.
	knownHosts = ssh.KnownHosts
)

// FleetApply rolls the configuration out to every member over SSH, one at
// a time in membership order. Each member receives the configuration on
// stdin and runs `etcdnode apply --config -`. The rollout stops at the first
// failure, so a reset never takes down more than one member at once.
func FleetApply(ctx context.Context, opts FleetOptions) error {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultConfigPath
	}
	cfg, err := loadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}

	log, flush, err := setupLogger(opts.GlobalOptions, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = flush() }()

	// Members get the file as written, overrides travel as flags.
	data, err := readFile(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	key, err := readFile(opts.KeyPath)
	if err != nil {
		return fmt.Errorf("failed to read private key: %w", err)
	}
	hostKeys, err := hostKeyCallback(opts)
	if err != nil {
		return err
	}

	command := remoteCommand(opts)
	for i, member := range cfg.Members {
		mlog := log.WithValues("member", member, "position", fmt.Sprintf("%d/%d", i+1, len(cfg.Members)))
		mlog.Info("applying", "command", command)

		remote, err := newRemote(&ssh.Config{
			Host:            member,
			Port:            opts.Port,
			User:            opts.User,
			PrivateKey:      key,
			HostKeyCallback: hostKeys,
		})
		if err != nil {
			return fmt.Errorf("member %s: %w", member, err)
		}

		out, err := remote.ExecuteWithInput(ctx, command, data)
		if out != "" {
			fmt.Fprintf(stdout, "--- %s ---\n%s", member, out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Fprintln(stdout)
			}
		}
		if err != nil {
			mlog.Error(err, "apply failed, stopping rollout")
			return fmt.Errorf("member %s: %w (remaining members were not touched)", member, err)
		}
		mlog.Info("applied")
	}

	log.Info("rollout complete", "members", len(cfg.Members))
	return nil
}

func hostKeyCallback(opts FleetOptions) (gossh.HostKeyCallback, error) {
	if opts.InsecureHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	files := opts.KnownHosts
	if len(files) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate known_hosts: %w", err)
		}
		files = []string{filepath.Join(home, ".ssh", "known_hosts")}
	}
	return knownHosts(files...)
}

// remoteCommand builds the apply invocation for a member. Non-root users
// go through non-interactive sudo.
func remoteCommand(opts FleetOptions) string {
	binary := opts.Binary
	if binary == "" {
		binary = "etcdnode"
	}

	args := []string{shellQuote(binary), "apply", "--config", "-"}
	if opts.Reset {
		args = append(args, "--reset")
	}
	if opts.PeerWait != nil {
		args = append(args, "--peer-wait", strconv.Itoa(*opts.PeerWait))
	}
	if opts.Debug {
		args = append(args, "--debug")
	}
	if opts.User != "root" {
		args = append([]string{"sudo", "-n"}, args...)
	}
	return strings.Join(args, " ")
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// shellQuote returns s as a single POSIX shell word.
func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
