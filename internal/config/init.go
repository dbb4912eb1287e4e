package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `output: structure.txt
depth: 0
include_hidden: false
color: false
stat: false
verbose: false
copy: false
search:
  query: ""
  case_sensitive: false
  max_matches: 5
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", workingDirectoryError)
			}
			workingDirectory = currentDirectory
		}
		destinationPath = filepath.Join(workingDirectory, ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", homeError)
		}
		configurationDirectory := filepath.Join(homeDirectory, GlobalConfigDirectoryName)
		if mkdirError := os.MkdirAll(configurationDirectory, 0o755); mkdirError != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, mkdirError)
		}
		destinationPath = filepath.Join(configurationDirectory, ConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, statError := os.Stat(destinationPath); statError == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(statError) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, statError)
	}

	if writeError := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); writeError != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeError)
	}

	return destinationPath, nil
}
