package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "INFOSTORE_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "infostore.yaml"
	// ConfigDirName is the directory holding config.yaml under the user
	// and system config roots
	ConfigDirName = "infostore"
)

// searchPaths lists candidate config files, most specific first. An
// explicit $INFOSTORE_CONFIG leads, then the working directory, the user
// config dir ($XDG_CONFIG_HOME or ~/.config) and /etc.
func searchPaths() []string {
	var paths []string
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing config file, or "" when there
// is none. A missing explicit path falls through to the other locations.
func FindConfigPath() string {
	for _, path := range searchPaths() {
		if isRegularFile(path) {
			return path
		}
	}
	return ""
}

// EnsureConfigDir creates the directory that will hold configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
