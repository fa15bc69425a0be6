package storeconn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Backend selects the store implementation
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// Config describes how to reach the remote store
type Config struct {
	Backend  Backend `yaml:"backend" env:"BACKEND"`
	Host     string  `yaml:"host" env:"HOST"`
	Port     int     `yaml:"port" env:"PORT"`
	Username string  `yaml:"username" env:"USERNAME"`
	Password string  `yaml:"password" env:"PASSWORD"`
	Database string  `yaml:"database" env:"DATABASE"`

	// TLS switches the target to an encrypted transport
	TLS bool `yaml:"tls" env:"TLS"`
	// SRV resolves Host through DNS SRV records before connecting
	SRV bool `yaml:"srv" env:"SRV"`

	ConnectTimeout   time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
	SelectionTimeout time.Duration `yaml:"selection_timeout" env:"SELECTION_TIMEOUT"`
	WriteTimeout     time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// DefaultConfig returns an in-memory store with short timeouts
func DefaultConfig() Config {
	return Config{
		Backend:          BackendMemory,
		Host:             "localhost",
		ConnectTimeout:   5 * time.Second,
		SelectionTimeout: 5 * time.Second,
		WriteTimeout:     10 * time.Millisecond,
	}
}

// lookupSRV is swapped out in tests
var lookupSRV = net.DefaultResolver.LookupSRV

var errNoSRVRecords = errors.New("no SRV records")

// Target assembles the connection target for the configured backend
func (c Config) Target(ctx context.Context) (string, error) {
	switch c.Backend {
	case BackendMemory, "":
		return "memory://", nil
	case BackendRedis:
		host, port, err := c.resolve(ctx, "redis", 6379)
		if err != nil {
			return "", err
		}
		scheme := "redis"
		if c.TLS {
			scheme = "rediss"
		}
		u := c.url(scheme, host, port)
		if c.Database != "" {
			u.Path = "/" + c.Database
		}
		return u.String(), nil
	case BackendPostgres:
		host, port, err := c.resolve(ctx, "postgresql", 5432)
		if err != nil {
			return "", err
		}
		u := c.url("postgres", host, port)
		u.Path = "/" + c.Database
		q := url.Values{}
		if c.TLS {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
		if c.ConnectTimeout > 0 {
			q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Round(time.Second)/time.Second)))
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	default:
		return "", fmt.Errorf("unknown store backend %q", c.Backend)
	}
}

func (c Config) url(scheme, host string, port int) *url.URL {
	u := &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
	switch {
	case c.Username != "" && c.Password != "":
		u.User = url.UserPassword(c.Username, c.Password)
	case c.Username != "":
		u.User = url.User(c.Username)
	case c.Password != "":
		u.User = url.UserPassword("", c.Password)
	}
	return u
}

// resolve returns the host and port to dial, consulting SRV records when enabled
func (c Config) resolve(ctx context.Context, service string, defaultPort int) (string, int, error) {
	if !c.SRV {
		port := c.Port
		if port == 0 {
			port = defaultPort
		}
		return c.Host, port, nil
	}

	_, addrs, err := lookupSRV(ctx, service, "tcp", c.Host)
	if err != nil {
		return "", 0, fmt.Errorf("resolving SRV for %s: %w", c.Host, err)
	}
	if len(addrs) == 0 {
		return "", 0, fmt.Errorf("resolving SRV for %s: %w", c.Host, errNoSRVRecords)
	}
	// Records arrive sorted by priority and weight
	return strings.TrimSuffix(addrs[0].Target, "."), int(addrs[0].Port), nil
}
