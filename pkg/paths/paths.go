// Package paths provides centralized path handling for inix.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvInixConfigDir overrides the XDG config directory for inix
	EnvInixConfigDir = "INIX_CONFIG_DIR"

	// EnvInixStateDir overrides the XDG state directory for inix
	EnvInixStateDir = "INIX_STATE_DIR"
)

// Directory and file names.
// These define inix's on-disk layout and are not user-configurable.
const (
	// InixDirName is the directory name for inix-specific files
	InixDirName = "inix"

	// TemplatesDir is the subdirectory holding user templates
	TemplatesDir = "templates"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "inix.log"
)

// Paths provides centralized path management for inix
type Paths interface {
	ConfigDir() string
	ConfigFilePath() string
	UserTemplatesDir() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	xdgConfig string
	xdgState  string
}

// New creates a new Paths instance, resolving directories from the
// environment overrides or the XDG defaults.
func New() (Paths, error) {
	p := &paths{}

	if configDir := os.Getenv(EnvInixConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, InixDirName)
	}

	if stateDir := os.Getenv(EnvInixStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		p.xdgState = filepath.Join(stateHome, InixDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", InixDirName)
	}

	return p, nil
}

func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

func (p *paths) UserTemplatesDir() string {
	return filepath.Join(p.xdgConfig, TemplatesDir)
}

func (p *paths) StateDir() string {
	return p.xdgState
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
