// Package config loads and validates the .syncrun.yml configuration.
package config

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"syncrun/pkg/locks"
	"syncrun/pkg/outputsync"
)

// Config is the root of .syncrun.yml.
type Config struct {
	Version  int            `yaml:"version"`
	Sync     SyncConfig     `yaml:"sync"`
	Workload WorkloadConfig `yaml:"workload"`
	Output   OutputConfig   `yaml:"output"`
}

// SyncConfig configures the output synchronizer.
type SyncConfig struct {
	LockTimeoutMs      int         `yaml:"lock_timeout_ms"`
	MaxConcurrentTests int         `yaml:"max_concurrent_tests"`
	EnableMonitoring   bool        `yaml:"enable_monitoring"`
	Queue              QueueConfig `yaml:"queue"`
}

// QueueConfig configures drain behavior.
type QueueConfig struct {
	EnableBatching bool `yaml:"enable_batching"`
}

// OutputConfig configures where run artifacts land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// WorkloadConfig describes the producers a run drives through the
// synchronizer.
type WorkloadConfig struct {
	Producers []ProducerGroup `yaml:"producers"`
}

// ProducerGroup is a batch of identical producers.
type ProducerGroup struct {
	LabelPrefix string `yaml:"label_prefix"`
	Count       int    `yaml:"count"`
	Messages    int    `yaml:"messages"`
	Priority    string `yaml:"priority"`
	Channel     string `yaml:"channel"`
}

// ParseConfig decodes YAML with unknown fields rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SyncOptions maps the sync section onto the synchronizer configuration.
func (c Config) SyncOptions() outputsync.Config {
	return outputsync.Config{
		Locks: locks.Config{
			Timeout: time.Duration(c.Sync.LockTimeoutMs) * time.Millisecond,
		},
		Queue:              outputsync.QueueConfig{EnableBatching: c.Sync.Queue.EnableBatching},
		MaxConcurrentTests: c.Sync.MaxConcurrentTests,
		EnableMonitoring:   c.Sync.EnableMonitoring,
	}
}
