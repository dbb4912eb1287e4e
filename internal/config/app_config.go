// Package config discovers and merges application configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the configuration file looked up locally and globally.
	ConfigFileName = ".dirtree.yaml"
	// GlobalConfigDirectoryName is the directory under the user home that
	// holds the global configuration file.
	GlobalConfigDirectoryName = ".config/dirtree"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds file-based defaults for the run. Pointer
// fields distinguish "unset" from an explicit false or zero.
type ApplicationConfiguration struct {
	Output        string              `mapstructure:"output"`
	Depth         *int                `mapstructure:"depth"`
	IncludeHidden *bool               `mapstructure:"include_hidden"`
	Color         *bool               `mapstructure:"color"`
	Stat          *bool               `mapstructure:"stat"`
	Verbose       *bool               `mapstructure:"verbose"`
	Copy          *bool               `mapstructure:"copy"`
	Search        SearchConfiguration `mapstructure:"search"`
}

// SearchConfiguration controls content-search defaults.
type SearchConfiguration struct {
	Query         string `mapstructure:"query"`
	CaseSensitive *bool  `mapstructure:"case_sensitive"`
	MaxMatches    *int   `mapstructure:"max_matches"`
}

// LoadApplicationConfiguration loads configuration from the global and local
// files, with the local file overriding the global one. An explicit file path
// replaces local discovery entirely.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, GlobalConfigDirectoryName, ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if fileInformation.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Depth != nil {
		result.Depth = cloneInt(override.Depth)
	}
	if override.IncludeHidden != nil {
		result.IncludeHidden = cloneBool(override.IncludeHidden)
	}
	if override.Color != nil {
		result.Color = cloneBool(override.Color)
	}
	if override.Stat != nil {
		result.Stat = cloneBool(override.Stat)
	}
	if override.Verbose != nil {
		result.Verbose = cloneBool(override.Verbose)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Search = result.Search.merge(override.Search)
	return result
}

func (configuration SearchConfiguration) merge(override SearchConfiguration) SearchConfiguration {
	result := configuration
	if override.Query != "" {
		result.Query = override.Query
	}
	if override.CaseSensitive != nil {
		result.CaseSensitive = cloneBool(override.CaseSensitive)
	}
	if override.MaxMatches != nil {
		result.MaxMatches = cloneInt(override.MaxMatches)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
