/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultPort is the well-known NTP port
	DefaultPort = 123
	// DefaultTimeout bounds the wait for a server reply
	DefaultTimeout = 2 * time.Second

	primaryServer   = "time.google.com"
	secondaryServer = "time.apple.com"
	// time-a-g.nist.gov, used when both hostname resolutions fail
	fallbackAddr = "129.6.15.28"
)

// Config specifies which time server to exchange with and how long to wait
// for its reply. The zero value plus SetDefaults points at the public
// fallback chain.
type Config struct {
	Server  string        `yaml:"server"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// SetDefaults fills in port and timeout when unset
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid time server port %d", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ResolveServer resolves the default time server address, trying
// time.google.com first, time.apple.com next and falling back to the fixed
// NIST address when both resolutions fail. Meant to run once at
// configuration time, not per request.
func ResolveServer() net.IP {
	for _, host := range []string{primaryServer, secondaryServer} {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			log.Warningf("failed to resolve %s: %v", host, err)
			continue
		}
		return ips[0]
	}
	log.Warningf("falling back to fixed time server address %s", fallbackAddr)
	return net.ParseIP(fallbackAddr)
}

// resolveAddr turns the configured server into a UDP address, running the
// fallback chain when no server is configured
func (c *Config) resolveAddr() (*net.UDPAddr, error) {
	if c.Server == "" {
		return &net.UDPAddr{IP: ResolveServer(), Port: c.Port}, nil
	}
	if ip := net.ParseIP(c.Server); ip != nil {
		return &net.UDPAddr{IP: ip, Port: c.Port}, nil
	}
	ips, err := net.LookupIP(c.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve time server %q: %w", c.Server, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses found for time server %q", c.Server)
	}
	return &net.UDPAddr{IP: ips[0], Port: c.Port}, nil
}
