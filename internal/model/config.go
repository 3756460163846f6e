package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds connection settings for the dashboard backend.
type BackendConfig struct {
	// BaseURL is the root URL of the hosted backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// RecipientID is the user whose notifications are synced.
	RecipientID string `mapstructure:"recipient_id" yaml:"recipient_id"`

	// Role is the dashboard role used for visibility filtering.
	Role string `mapstructure:"role" yaml:"role"`

	// TimeoutSec is the per-request timeout for backend calls.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI and feedback preferences.
type DisplayConfig struct {
	// PageSize is how many notifications the initial fetch requests.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// Sound enables tone feedback on incoming notifications.
	Sound bool `mapstructure:"sound" yaml:"sound"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// Offline selects the embedded SQLite backend instead of the
	// hosted one. Mainly for demos and local development.
	Offline bool `mapstructure:"offline" yaml:"offline"`

	// OfflineDBPath is where the embedded backend keeps its database.
	OfflineDBPath string `mapstructure:"offline_db_path" yaml:"offline_db_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/orderbell/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "orderbell", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			TimeoutSec: 15,
		},
		Display: DisplayConfig{
			PageSize: 50,
			Sound:    true,
		},
		OfflineDBPath: filepath.Join(filepath.Dir(DefaultConfigPath()), "orderbell.db"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.timeout_sec", 15)
	v.SetDefault("display.page_size", 50)
	v.SetDefault("display.sound", true)
	v.SetDefault("offline_db_path", defaultAppConfig().OfflineDBPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.PageSize <= 0 {
		cfg.Display.PageSize = 50
	}
	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = 15
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("display", cfg.Display)
	v.Set("offline", cfg.Offline)
	v.Set("offline_db_path", cfg.OfflineDBPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
