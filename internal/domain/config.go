package domain

import "time"

// Config represents the application configuration
type Config struct {
	Download     DownloadConfig     `mapstructure:"download"`
	Fetch        FetchConfig        `mapstructure:"fetch"`
	Markup       MarkupConfig       `mapstructure:"markup"`
	History      HistoryConfig      `mapstructure:"history"`
	Server       ServerConfig       `mapstructure:"server"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	URL string `mapstructure:"url"` // catalog page of the album
	Dir string `mapstructure:"dir"` // destination directory
}

// FetchConfig contains HTTP client configuration shared by page and media fetches
type FetchConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"` // 0 disables the deadline
}

// MarkupConfig holds every literal anchor used to pick data out of catalog and
// detail pages. If the site markup changes, this is the only place to update.
type MarkupConfig struct {
	ListingAnchor        string `mapstructure:"listing_anchor"`
	RowAnchor            string `mapstructure:"row_anchor"`
	FooterAnchor         string `mapstructure:"footer_anchor"`
	LinkCellAnchor       string `mapstructure:"link_cell_anchor"`
	LinkAttributeAnchor  string `mapstructure:"link_attribute_anchor"`
	MediaTagAnchor       string `mapstructure:"media_tag_anchor"`
	MediaAttributeAnchor string `mapstructure:"media_attribute_anchor"`
}

// HistoryConfig contains session history configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// ServerConfig contains history API server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	EventsDir  string `mapstructure:"events_dir"`  // JSON session event logs, empty disables
}

// DefaultMarkupConfig returns the anchors for the catalog site's current markup
func DefaultMarkupConfig() MarkupConfig {
	return MarkupConfig{
		ListingAnchor:        `<table id="songlist">`,
		RowAnchor:            `<tr>`,
		FooterAnchor:         `<tr id="songlist_footer">`,
		LinkCellAnchor:       `<td class="clickable-row">`,
		LinkAttributeAnchor:  `href="`,
		MediaTagAnchor:       `<audio`,
		MediaAttributeAnchor: `src="`,
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			UserAgent: "khinsider-go/1.0",
			Timeout:   0,
		},
		Markup: DefaultMarkupConfig(),
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.khinsider/history.db",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
