package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPaths returns the search order for config files.
func DefaultConfigPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "browsertime", "config.yaml"))
	}
	paths = append(paths, "/etc/browsertime/config.yaml")
	return paths
}

// Resolve builds the options for a run: defaults, then the config file at
// the explicit path or the first default location that exists. A missing
// default file is not an error; a missing explicit one is.
func Resolve(explicit string) (Options, string, error) {
	opts := Defaults()

	path, err := findConfig(explicit)
	if err != nil {
		return opts, "", err
	}
	if path == "" {
		return opts, "", nil
	}

	opts, err = Load(path, opts)
	if err != nil {
		return opts, path, err
	}
	return opts, path, nil
}

func findConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}
