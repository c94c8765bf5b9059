// Package config loads probegate's system configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/probegate-dev/probegate/internal/catalog"
)

// SystemConfig represents the global configuration file (~/.probegate/config.yaml).
type SystemConfig struct {
	// Named catalogs resolvable by --catalog <name>
	Catalogs []struct {
		Name string `yaml:"name"`
		Path string `yaml:"path"`
	} `yaml:"catalogs"`

	// Gate defaults, overridable per invocation
	Gate GateConfig `yaml:"gate"`
}

// GateConfig configures how probes are re-executed during gating.
type GateConfig struct {
	// Directory holding the mode-runner and emitter helpers
	HarnessDir string `yaml:"harness_dir"`
	// Wall-clock budget per probe run (e.g. "30s")
	Timeout time.Duration `yaml:"timeout"`
	// Modes to gate each probe under when none are given
	Modes []string `yaml:"modes"`
	// Workspace root advertised to probes via the environment
	WorkspaceRoot string `yaml:"workspace_root"`
	// Sandbox hint forwarded verbatim (e.g. "seatbelt", "bubblewrap")
	SandboxHint string `yaml:"sandbox_hint"`
}

// DefaultPath returns the default system config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".probegate", "config.yaml")
}

// LoadSystemConfig loads the system configuration from the specified path.
// If the file does not exist, it returns an empty config without error.
func LoadSystemConfig(path string) (*SystemConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &SystemConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	var config SystemConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	return &config, nil
}

// CatalogDefaults converts the configured catalogs to the resolver's format.
func (sc *SystemConfig) CatalogDefaults() []catalog.DefaultEntry {
	defaults := make([]catalog.DefaultEntry, 0, len(sc.Catalogs))
	for _, c := range sc.Catalogs {
		defaults = append(defaults, catalog.DefaultEntry{
			Name: c.Name,
			Path: c.Path,
		})
	}
	return defaults
}
