package config

import (
	"fmt"
	"strings"

	"syncrun/pkg/outputsync"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if cfg.Sync.LockTimeoutMs < 0 {
		add("sync.lock_timeout_ms", "must not be negative")
	}
	if cfg.Sync.MaxConcurrentTests < 1 {
		add("sync.max_concurrent_tests", "must be at least 1")
	}

	if len(cfg.Workload.Producers) == 0 {
		add("workload.producers", "at least one producer group is required")
	}
	total := 0
	for i, group := range cfg.Workload.Producers {
		fieldPrefix := fmt.Sprintf("workload.producers[%d]", i)
		if strings.TrimSpace(group.LabelPrefix) == "" {
			add(fieldPrefix+".label_prefix", "is required")
		}
		if group.Count < 1 {
			add(fieldPrefix+".count", "must be at least 1")
		}
		if group.Messages < 1 {
			add(fieldPrefix+".messages", "must be at least 1")
		}
		if !outputsync.Priority(group.Priority).Valid() {
			add(fieldPrefix+".priority", fmt.Sprintf("unknown priority %q", group.Priority))
		}
		switch outputsync.Channel(group.Channel) {
		case outputsync.ChannelOut, outputsync.ChannelErr:
		default:
			add(fieldPrefix+".channel", fmt.Sprintf("unknown channel %q", group.Channel))
		}
		total += group.Count
	}
	if total > cfg.Sync.MaxConcurrentTests {
		add("workload.producers", fmt.Sprintf(
			"%d producers exceed sync.max_concurrent_tests (%d)", total, cfg.Sync.MaxConcurrentTests))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
