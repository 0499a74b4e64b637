package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/app"
	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/pkg/logger"
)

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	logLevel   string
	noHistory  bool

	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "khinsider --url <album-url> --dir <directory>",
		Short: "Download every track of a khinsider album",
		Long: `Downloads every track listed on a khinsider album page into a local directory,
one at a time and in listing order. The first failure stops the run.`,
		Example:       "  khinsider --dir ./save-files-here --url https://downloads.khinsider.com/game-soundtracks/album/some-album",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: config.yaml in ./configs, $HOME/.khinsider or /etc/khinsider)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Don't record or read session history")

	rootCmd.Flags().String("url", "", "Album catalog page URL")
	rootCmd.Flags().String("dir", "", "Directory to save the tracks in")
	opts.v.BindPFlag("download.url", rootCmd.Flags().Lookup("url"))
	opts.v.BindPFlag("download.dir", rootCmd.Flags().Lookup("dir"))

	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadConfig loads the configuration and applies the persistent flag overrides
func (o *options) loadConfig() (*domain.Config, error) {
	config, err := app.LoadConfigWith(o.v, o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		config.Logging.Level = o.logLevel
	}
	if o.noHistory {
		config.History.Enabled = false
	}

	return config, nil
}

func newLogger(config *domain.Config) (*zap.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
