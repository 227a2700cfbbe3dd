package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/go-sod/nbayes/internal/httputil"
)

const (
	defaultServer  = "http://localhost:8787"
	defaultTimeout = 5 * time.Minute
)

// profile is the optional TOML file holding connection settings of the client.
//
//	server = "https://nbayes.example.com"
//	timeout = "1m"
//
//	[auth]
//	bearer_token = "..."
type profile struct {
	Server  string                    `toml:"server"`
	Timeout string                    `toml:"timeout"`
	Auth    httputil.HTTPClientConfig `toml:"auth"`

	timeout time.Duration
}

func defaultProfile() *profile {
	return &profile{Server: defaultServer, timeout: defaultTimeout}
}

// loadProfile reads path over the defaults. An empty path returns the defaults.
func loadProfile(path string) (*profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	if _, err := toml.DecodeFile(path, p); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return nil, fmt.Errorf("profile %s: timeout: %w", path, err)
		}
		p.timeout = d
	}
	if err := p.Auth.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}
