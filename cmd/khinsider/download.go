package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/app"
	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/internal/infrastructure"
	"github.com/yourusername/khinsider-go/pkg/format"
	"github.com/yourusername/khinsider-go/pkg/logger"
)

func runDownload(cmd *cobra.Command, opts *options) error {
	config, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// Both inputs are required; without them there is nothing to do
	if config.Download.URL == "" || config.Download.Dir == "" {
		return cmd.Usage()
	}

	log, err := newLogger(config)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(config.Download.Dir, 0755); err != nil {
		return &domain.FilesystemError{Op: "mkdir", Path: config.Download.Dir, Err: err}
	}

	ctx, stop := interruptContext()
	defer stop()

	manager, cleanup, err := newSessionManager(config, log)
	if err != nil {
		return err
	}
	defer cleanup()

	totals, err := manager.Run(ctx, config.Download.URL, config.Download.Dir)
	if err != nil {
		if totals.Count > 0 {
			log.Warn("Stopped early, completed downloads are kept",
				zap.Int("completed", totals.Count),
				zap.String("size", format.Bytes(totals.Bytes)))
		}
		return err
	}

	return nil
}

// interruptContext is cancelled by the first SIGINT or SIGTERM. The default signal
// handling is restored right after, so a second Ctrl-C kills the process.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// newSessionManager wires the resolvers, the downloader and the optional side channels.
// cleanup closes whatever side channels were opened.
func newSessionManager(config *domain.Config, log *zap.Logger) (*app.SessionManager, func(), error) {
	jar, err := infrastructure.NewCookieJar()
	if err != nil {
		return nil, nil, err
	}

	fetcher := infrastructure.NewPageFetcher(&config.Fetch, jar)
	manager := app.NewSessionManager(
		infrastructure.NewCatalogResolver(fetcher, &config.Markup, log),
		infrastructure.NewDetailResolver(fetcher, &config.Markup, log),
		infrastructure.NewMediaDownloader(&config.Fetch, jar, log),
		newConsoleReporter(log),
		log,
	)

	var closers []func() error

	if config.History.Enabled {
		repo, err := infrastructure.NewSQLiteSessionRepository(config.History.DatabasePath)
		if err != nil {
			log.Warn("Session history unavailable", zap.String("path", config.History.DatabasePath), zap.Error(err))
		} else {
			manager.SetRepository(repo)
			closers = append(closers, repo.Close)
		}
	}

	if config.Logging.EventsDir != "" {
		events, err := logger.NewEventLog(config.Logging.EventsDir)
		if err != nil {
			log.Warn("Event log unavailable", zap.String("dir", config.Logging.EventsDir), zap.Error(err))
		} else {
			manager.SetEventRecorder(events)
			closers = append(closers, events.Close)
		}
	}

	if config.Notification.Enabled {
		manager.SetNotifier(infrastructure.NewNotificationService(&config.Notification, log))
	}

	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn("Failed to close", zap.Error(err))
			}
		}
	}

	return manager, cleanup, nil
}

// consoleReporter writes session progress through the logger
type consoleReporter struct {
	log *zap.Logger
}

func newConsoleReporter(log *zap.Logger) *consoleReporter {
	return &consoleReporter{log: log}
}

func (r *consoleReporter) SessionStarted(collection string, start time.Time) {
	r.log.Info("start: "+collection, zap.String("at", format.Date(start)))
}

// ItemStarted pads the position to the width of the total, e.g. "[ 7/12] 07.mp3"
func (r *consoleReporter) ItemStarted(position, total int, fileName string) {
	width := len(strconv.Itoa(total))
	r.log.Info(fmt.Sprintf("[%*d/%d] %s", width, position, total, fileName))
}

func (r *consoleReporter) SessionFinished(collection string, totals *domain.SessionTotals) {
	r.log.Info("done: "+collection, zap.String("at", format.Date(totals.FinishedAt)))
	r.log.Info("- downloaded in: " + format.Duration(totals.Elapsed()))
	r.log.Info("- download size: " + format.Bytes(totals.Bytes))
}
