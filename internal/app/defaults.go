package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the paths used when the command line does not name them.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - VSH_CONFIG_PATH: config file location (default: ~/.config/vsh.toml)
//   - VSH_HOME: base directory for vsh data (default: ~/.local/share/vsh)
func GetDefaults() (*Defaults, error) {
	configPath := os.Getenv("VSH_CONFIG_PATH")
	baseDir := os.Getenv("VSH_HOME")
	if configPath == "" || baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(home, ".config", "vsh.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(home, ".local", "share", "vsh")
		}
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}
