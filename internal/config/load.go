package config

import (
	"fmt"
	"os"
)

// Load reads, parses, normalizes, and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills defaults for optional fields.
func Normalize(cfg *Config) {
	if cfg.Sync.LockTimeoutMs == 0 {
		cfg.Sync.LockTimeoutMs = 5000
	}
	if cfg.Sync.MaxConcurrentTests == 0 {
		cfg.Sync.MaxConcurrentTests = 100
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./syncrun-out"
	}
	for i := range cfg.Workload.Producers {
		group := &cfg.Workload.Producers[i]
		if group.Count == 0 {
			group.Count = 1
		}
		if group.Messages == 0 {
			group.Messages = 1
		}
		if group.Priority == "" {
			group.Priority = "normal"
		}
		if group.Channel == "" {
			group.Channel = "out"
		}
	}
}
