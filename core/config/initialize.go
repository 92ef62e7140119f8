package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration to dir and loads it. An
// existing configuration is never overwritten.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs is Initialize on an arbitrary file system.
func InitializeFs(fsys afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	configPath := filepath.Join(dir, ConfigurationName)

	exists, err := afero.Exists(fsys, configPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s already exists", configPath)
	}

	logger.Printf("Creating %s\n", dir)
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	logger.Printf("Writing %s\n", configPath)
	if err := afero.WriteFile(fsys, configPath, defaultConfigData, 0600); err != nil {
		return nil, err
	}

	return LoadFs(fsys, dir)
}
