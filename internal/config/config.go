// Package config wraps the viper singleton used by the mc CLI and tool server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MikeyBeez/mission-control/internal/debug"
)

var v *viper.Viper

// DefaultTaskDirName is the directory holding tasks.jsonl and archive.jsonl
const DefaultTaskDirName = ".mikey_tasks"

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()

	v.SetConfigType("yaml")

	// Explicitly locate config.yaml with SetConfigFile.
	// Precedence: project .mikey_tasks/config.yaml > ~/.config/mc/config.yaml > ~/.mikey_tasks/config.yaml
	configFileSet := false

	// 1. Walk up from CWD to find a project .mikey_tasks/config.yaml, so
	//    commands work from subdirectories.
	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, DefaultTaskDirName, "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/mc/config.yaml)
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "mc", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// 3. Home directory (~/.mikey_tasks/config.yaml)
	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, DefaultTaskDirName, "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Automatic environment variable binding; env vars take precedence over
	// the config file. E.g. MC_JSON, MC_TASK_DIR, MC_NO_LOCK.
	v.SetEnvPrefix("MC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("task-dir", DefaultTaskDirName)
	v.SetDefault("no-lock", false)
	v.SetDefault("lock-timeout", "10s")
	v.SetDefault("git-timeout", "5s")
	v.SetDefault("actor", "")
	v.SetDefault("watch-debounce", "500ms")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("loaded config from %s", v.ConfigFileUsed())
	} else {
		debug.Logf("no config.yaml found; using defaults and environment variables")
	}

	return nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// TaskDirName returns the configured task directory name, falling back to
// the default when config is uninitialized or set to empty.
func TaskDirName() string {
	if name := GetString("task-dir"); name != "" {
		return name
	}
	return DefaultTaskDirName
}

// GitTimeout returns the subprocess timeout for version-control calls
func GitTimeout() time.Duration {
	if d := GetDuration("git-timeout"); d > 0 {
		return d
	}
	return 5 * time.Second
}
