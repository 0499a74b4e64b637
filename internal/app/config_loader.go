package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/khinsider-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	return LoadConfigWith(viper.New(), configPath)
}

// LoadConfigWith loads configuration through v, so callers can bind command line
// flags before the file and environment are read
func LoadConfigWith(v *viper.Viper, configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.khinsider")
		v.AddConfigPath("/etc/khinsider")
	}

	// Defaults make every key known to viper so environment overrides apply
	setDefaults(v, config)

	v.SetEnvPrefix("KHINSIDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("download.url", config.Download.URL)
	v.SetDefault("download.dir", config.Download.Dir)

	v.SetDefault("fetch.user_agent", config.Fetch.UserAgent)
	v.SetDefault("fetch.timeout", config.Fetch.Timeout)

	v.SetDefault("markup.listing_anchor", config.Markup.ListingAnchor)
	v.SetDefault("markup.row_anchor", config.Markup.RowAnchor)
	v.SetDefault("markup.footer_anchor", config.Markup.FooterAnchor)
	v.SetDefault("markup.link_cell_anchor", config.Markup.LinkCellAnchor)
	v.SetDefault("markup.link_attribute_anchor", config.Markup.LinkAttributeAnchor)
	v.SetDefault("markup.media_tag_anchor", config.Markup.MediaTagAnchor)
	v.SetDefault("markup.media_attribute_anchor", config.Markup.MediaAttributeAnchor)

	v.SetDefault("history.enabled", config.History.Enabled)
	v.SetDefault("history.database_path", config.History.DatabasePath)

	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)

	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.method", config.Notification.Method)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
	v.SetDefault("logging.events_dir", config.Logging.EventsDir)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.Dir = expandPath(config.Download.Dir)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Logging.EventsDir = expandPath(config.Logging.EventsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch timeout cannot be negative")
	}

	anchors := map[string]string{
		"listing_anchor":         config.Markup.ListingAnchor,
		"row_anchor":             config.Markup.RowAnchor,
		"footer_anchor":          config.Markup.FooterAnchor,
		"link_cell_anchor":       config.Markup.LinkCellAnchor,
		"link_attribute_anchor":  config.Markup.LinkAttributeAnchor,
		"media_tag_anchor":       config.Markup.MediaTagAnchor,
		"media_attribute_anchor": config.Markup.MediaAttributeAnchor,
	}
	for key, anchor := range anchors {
		if anchor == "" {
			return fmt.Errorf("markup.%s must not be empty", key)
		}
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	// Per-run values are never persisted
	setDefaults(v, config)
	v.Set("download.url", "")
	v.Set("download.dir", "")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
