// Package ssh reaches targets over SSH: a TaskRunner executing task
// commands remotely and a binary install strategy uploading the agent.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
	gossh "golang.org/x/crypto/ssh"
)

var (
	ErrConnection     = errors.New("ssh: connection failed")
	ErrAuthentication = errors.New("ssh: authentication failed")
	ErrCommandFailed  = errors.New("ssh: command execution failed")
)

// Config holds the credentials and dial settings shared by all targets.
// Per-target overrides come from target vars: "host", "port", "user".
type Config struct {
	User       string
	Password   string
	PrivateKey string
	Port       int
	Timeout    time.Duration
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	return c
}

func (c Config) authMethods() ([]gossh.AuthMethod, error) {
	var methods []gossh.AuthMethod

	if c.PrivateKey != "" {
		signer, err := gossh.ParsePrivateKey([]byte(c.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key", ErrAuthentication)
		}
		methods = append(methods, gossh.PublicKeys(signer))
	}
	if c.Password != "" {
		methods = append(methods, gossh.Password(c.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no credentials provided", ErrAuthentication)
	}
	return methods, nil
}

// addr resolves the dial address for a target, preferring target vars.
func (c Config) addr(target *domain.Target) string {
	host := target.StringVar("host", target.Name)
	port := c.Port
	if p, ok := target.Vars["port"]; ok {
		switch v := p.(type) {
		case int:
			port = v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				port = n
			}
		}
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// dial connects to a target with retry and linear backoff.
func (c Config) dial(ctx context.Context, target *domain.Target) (*gossh.Client, error) {
	methods, err := c.authMethods()
	if err != nil {
		return nil, err
	}

	clientConfig := &gossh.ClientConfig{
		User:            target.StringVar("user", c.User),
		Auth:            methods,
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         c.Timeout,
	}

	addr := c.addr(target)
	var dialErr error
	for attempt := 1; attempt <= c.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		client, err := gossh.Dial("tcp", addr, clientConfig)
		if err == nil {
			return client, nil
		}
		dialErr = err
		if attempt < c.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return nil, fmt.Errorf("%w: %s: %v (after %d attempts)", ErrConnection, addr, dialErr, c.MaxRetries)
}

// execute runs a command through a session, feeding stdin when non-nil.
// It returns stdout; a non-zero exit surfaces stderr in the error.
func execute(ctx context.Context, client *gossh.Client, cmd string, stdin []byte) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("%w: failed to create session", ErrConnection)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(gossh.SIGKILL)
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			msg := stderr.String()
			if msg == "" {
				msg = err.Error()
			}
			return stdout.String(), fmt.Errorf("%w: %s", ErrCommandFailed, msg)
		}
	}
	return stdout.String(), nil
}
