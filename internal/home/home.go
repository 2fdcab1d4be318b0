package home

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackzampolin/worknorm/internal/correct"
)

const (
	// DefaultDirName is the default name for the worknorm home directory.
	DefaultDirName = ".worknorm"

	// TablesDirName is the subdirectory for correction table files.
	TablesDirName = "tables"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the worknorm home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.worknorm).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// TablesPath returns the path to the tables directory.
func (d *Dir) TablesPath() string {
	return filepath.Join(d.path, TablesDirName)
}

// TableFile returns the table file path for a policy.
func (d *Dir) TableFile(policy correct.Policy) string {
	name := "fix.json"
	if policy == correct.PolicyNormalized {
		name = "normalize.json"
	}
	return filepath.Join(d.TablesPath(), name)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create tables directory (this also creates the parent)
	if err := os.MkdirAll(d.TablesPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create tables directory: %w", err)
	}
	return nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
