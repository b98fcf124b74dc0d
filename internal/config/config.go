package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	burnttoml "github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvLogLevel overrides [log].level when set.
const EnvLogLevel = "SONGVAULT_LOG_LEVEL"

const (
	appName        = "songvault"
	configFileName = "config.toml"

	defaultStructure = "hierarchical"
	defaultWorkers   = 4
	maxWorkers       = 16
)

// ErrConfigExists is returned by WriteDefault when the target exists and
// force is not set.
var ErrConfigExists = errors.New("config file already exists")

type Config struct {
	StorageDir string `koanf:"storage_dir" toml:"storage_dir"` // where stored copies live
	Database   string `koanf:"database"    toml:"database"`    // sqlite file path

	Log    LogConfig    `koanf:"log"    toml:"log"`
	Export ExportConfig `koanf:"export" toml:"export"`
}

// LogConfig controls the console logger.
type LogConfig struct {
	Level   string `koanf:"level"    toml:"level"` // trace|debug|info|warn|error|disabled
	NoColor bool   `koanf:"no_color" toml:"no_color"`
}

// ExportConfig holds defaults for the export command.
type ExportConfig struct {
	Structure string `koanf:"structure" toml:"structure"` // flat|hierarchical|single
	Workers   int    `koanf:"workers"   toml:"workers"`   // 1-16
}

// Default returns a configuration with every key populated.
func Default() *Config {
	return &Config{
		StorageDir: filepath.Join(xdg.DataHome, appName, "storage"),
		Database:   filepath.Join(xdg.DataHome, appName, appName+".db"),
		Log:        LogConfig{Level: "info"},
		Export: ExportConfig{
			Structure: defaultStructure,
			Workers:   defaultWorkers,
		},
	}
}

// Load reads the layered config files and applies defaults. explicitPath,
// when non-empty, is loaded last and must exist.
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if explicitPath != "" {
		path := expandPath(explicitPath)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		cfg.Log.Level = lvl
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	if strings.TrimSpace(c.StorageDir) == "" {
		c.StorageDir = def.StorageDir
	}
	if strings.TrimSpace(c.Database) == "" {
		c.Database = def.Database
	}
	c.StorageDir = expandPath(c.StorageDir)
	c.Database = expandPath(c.Database)

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Export.Structure == "" {
		c.Export.Structure = defaultStructure
	}
	if c.Export.Workers <= 0 {
		c.Export.Workers = defaultWorkers
	}
	if c.Export.Workers > maxWorkers {
		c.Export.Workers = maxWorkers
	}
}

// WriteDefault writes a fully populated config file to path. An empty path
// targets the XDG config location.
func WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		path = UserConfigPath()
	}
	path = expandPath(path)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, err
	}

	f, err := os.Create(path)
	if err != nil {
		return path, err
	}

	if err := burnttoml.NewEncoder(f).Encode(Default()); err != nil {
		_ = f.Close()
		return path, fmt.Errorf("encode config: %w", err)
	}
	return path, f.Close()
}

// UserConfigPath is the per-user config file location.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/songvault/config.toml
		UserConfigPath(),
		// 2. ./config.toml (pwd, highest priority)
		configFileName,
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
