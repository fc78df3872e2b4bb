package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/etcdnode/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultAttempts    = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout bounds establishing the TCP connection. Zero means 10s.
	DialTimeout time.Duration

	// Attempts is the number of dial attempts. Zero means 3.
	Attempts int

	// RetryDelay is the initial delay between dial attempts. Zero means 2s.
	RetryDelay time.Duration

	// HostKeyCallback verifies the server's host key. It is required;
	// see KnownHosts and InsecureIgnoreHostKey.
	HostKeyCallback ssh.HostKeyCallback
}

// KnownHosts returns a host key callback backed by OpenSSH known_hosts files.
func KnownHosts(files ...string) (ssh.HostKeyCallback, error) {
	cb, err := knownhosts.New(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts: %w", err)
	}
	return cb, nil
}

// InsecureIgnoreHostKey accepts any host key.
func InsecureIgnoreHostKey() ssh.HostKeyCallback {
	return ssh.InsecureIgnoreHostKey() //nolint:gosec // explicit operator opt-in
}

// Client executes commands on one remote host. The private key is parsed
// once; a connection is opened per call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient validates cfg and parses its private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, errors.New("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, errors.New("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, errors.New("config private key cannot be empty")
	}
	if cfg.HostKeyCallback == nil {
		return nil, errors.New("config host key callback cannot be nil")
	}

	c := *cfg
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.Attempts == 0 {
		c.Attempts = defaultAttempts
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}

	signer, err := ssh.ParsePrivateKey(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{config: &c, signer: signer}, nil
}

// Addr returns host:port, bracketing IPv6 literals.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Execute runs command and returns its combined output.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	return c.ExecuteWithInput(ctx, command, nil)
}

// ExecuteWithInput runs command with input on its standard input and
// returns its combined output. The remote side sees EOF after input.
func (c *Client) ExecuteWithInput(ctx context.Context, command string, input []byte) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(ctx, client, command, input)
}

func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Addr()
	var client *ssh.Client
	err := retry.Do(ctx, func(context.Context) error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		var keyErr *knownhosts.KeyError
		if errors.As(dialErr, &keyErr) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithAttempts(c.config.Attempts),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return client, nil
}

func (c *Client) runCommand(ctx context.Context, client *ssh.Client, command string, input []byte) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	if input != nil {
		session.Stdin = bytes.NewReader(input)
	}

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = session.Close()
		return "", fmt.Errorf("command on %s interrupted: %w", c.config.Host, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
				c.config.Host, r.err, command, string(r.out))
		}
		return string(r.out), nil
	}
}
