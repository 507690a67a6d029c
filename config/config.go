// Package config loads client/pool options from a YAML file, the same
// shape of loader the teacher uses for its gRPC control plane
// (cmd/dnsscience-grpc/config.go), retargeted from server listen addresses
// to resolver/client/pool tuning.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dnsscience/dnsasync/errkind"
)

// File is the top-level YAML configuration structure.
type File struct {
	// Nameserver is the default (host, port, protocol) dialed when a
	// caller doesn't supply its own ConnectionRequirements.
	Nameserver NameserverConfig `yaml:"nameserver"`
	// Timeout is the default per-query budget, e.g. "30s".
	Timeout string `yaml:"timeout"`
	// Pool tunes connpool.Config.
	Pool PoolConfig `yaml:"pool"`
	// Metrics, if enabled, registers instruments against the process's
	// default Prometheus registry when the caller wires it up.
	Metrics MetricsConfig `yaml:"metrics"`
}

// NameserverConfig names the server a Client should dial.
type NameserverConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Protocol string `yaml:"protocol"` // "udp" or "tcp"
}

// PoolConfig tunes connpool.Config.
type PoolConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	RetryBurst int    `yaml:"retry_burst"`
	RetryEvery string `yaml:"retry_every"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultTimeout is used when File.Timeout is empty.
const DefaultTimeout = 30 * time.Second

// Load reads and parses a YAML config file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.New(errkind.ConfigParse, "config.Load", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errkind.New(errkind.ConfigParse, "config.Load", err)
	}
	return &f, nil
}

// TimeoutDuration parses File.Timeout, falling back to DefaultTimeout when
// it is empty, and failing with errkind.ConfigParse on a malformed value.
func (f *File) TimeoutDuration() (time.Duration, error) {
	if f.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(f.Timeout)
	if err != nil {
		return 0, errkind.New(errkind.ConfigParse, "config.TimeoutDuration", err)
	}
	return d, nil
}

// RetryEveryDuration parses Pool.RetryEvery, returning 0 (the pool's own
// default) when it is empty.
func (p *PoolConfig) RetryEveryDuration() (time.Duration, error) {
	if p.RetryEvery == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.RetryEvery)
	if err != nil {
		return 0, errkind.New(errkind.ConfigParse, "config.RetryEveryDuration", err)
	}
	return d, nil
}
