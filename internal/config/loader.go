package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ErrConfigNotFound is returned when no configuration file could be located.
var ErrConfigNotFound = errors.New("configuration file not found")

var configFileNames = []string{"config.json", "config.yaml", "config.yml"}

// FindConfigFile resolves the configuration file to load.
// An explicit path must exist. Without one, the XDG config directories are
// searched for triangle-weaver/config.{json,yaml,yml}.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return explicit, nil
	}

	for _, name := range configFileNames {
		path, err := xdg.SearchConfigFile(filepath.Join(AppName, name))
		if err == nil {
			return path, nil
		}
	}

	return "", ErrConfigNotFound
}

// Resolve loads the configuration file found by FindConfigFile, or returns
// the defaults when none exists and none was requested.
func Resolve(explicit string) (*Config, string, error) {
	path, err := FindConfigFile(explicit)
	if err != nil {
		if explicit == "" && errors.Is(err, ErrConfigNotFound) {
			return Default(), "", nil
		}
		return nil, "", err
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
