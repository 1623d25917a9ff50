package cli

import (
	"fmt"
	"path/filepath"
	"strings"
)

// defaultConfigName is the config file searched for when --config is omitted.
const defaultConfigName = ".syncrun.yml"

// resolveConfigPath normalizes a config path, defaulting to the working
// directory's .syncrun.yml.
func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}
