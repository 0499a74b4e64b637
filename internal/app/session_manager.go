package app

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/yourusername/khinsider-go/internal/domain"
)

// Notifier is told how a session ended
type Notifier interface {
	NotifySessionCompleted(collection string, totals *domain.SessionTotals)
	NotifySessionFailed(collection string, err error)
}

// EventRecorder receives structured session events
type EventRecorder interface {
	LogSessionEvent(event string, fields ...zap.Field)
	LogError(msg string, fields ...zap.Field)
}

// SessionManager downloads one collection: it resolves the catalog once, then for each
// item in listing order resolves its media URL and downloads it before moving on.
// The first error of any kind aborts the session.
type SessionManager struct {
	catalog    domain.CatalogResolver
	detail     domain.DetailResolver
	downloader domain.MediaDownloader
	reporter   domain.ProgressReporter
	logger     *zap.Logger

	// Optional side channels; their failures are logged and never abort a session
	repo     domain.SessionRepository
	events   EventRecorder
	notifier Notifier

	now func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(
	catalog domain.CatalogResolver,
	detail domain.DetailResolver,
	downloader domain.MediaDownloader,
	reporter domain.ProgressReporter,
	logger *zap.Logger,
) *SessionManager {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		catalog:    catalog,
		detail:     detail,
		downloader: downloader,
		reporter:   reporter,
		logger:     logger,
		now:        time.Now,
	}
}

// SetRepository sets the session history repository
func (sm *SessionManager) SetRepository(repo domain.SessionRepository) {
	sm.repo = repo
}

// SetEventRecorder sets the structured event log
func (sm *SessionManager) SetEventRecorder(events EventRecorder) {
	sm.events = events
}

// SetNotifier sets the notifier
func (sm *SessionManager) SetNotifier(notifier Notifier) {
	sm.notifier = notifier
}

// Run downloads the collection at catalogURL into downloadDir, which must exist.
// The returned totals are always non-nil and finalized; on error they cover exactly
// the items completed before the failure.
func (sm *SessionManager) Run(ctx context.Context, catalogURL, downloadDir string) (*domain.SessionTotals, error) {
	collection := CollectionName(catalogURL)
	totals := domain.NewSessionTotals(sm.now())

	sm.reporter.SessionStarted(collection, totals.StartedAt)
	session := sm.recordStart(catalogURL, collection, downloadDir, totals.StartedAt)

	err := sm.download(ctx, catalogURL, downloadDir, totals, session)
	totals.Finish(sm.now())

	if err != nil {
		sm.recordFailure(collection, session, totals, err)
		return totals, err
	}

	sm.recordCompletion(collection, session, totals)
	sm.reporter.SessionFinished(collection, totals)
	return totals, nil
}

func (sm *SessionManager) download(ctx context.Context, catalogURL, downloadDir string, totals *domain.SessionTotals, session *domain.Session) error {
	detailURLs, err := sm.catalog.Resolve(ctx, catalogURL)
	if err != nil {
		return err
	}

	total := len(detailURLs)
	sm.logger.Debug("Catalog resolved", zap.String("url", catalogURL), zap.Int("items", total))
	if session != nil {
		session.TotalItems = total
		sm.saveSession(session)
	}

	for i, detailURL := range detailURLs {
		position := i + 1

		mediaURL, err := sm.detail.Resolve(ctx, detailURL)
		if err != nil {
			return err
		}

		fileName, err := MediaFileName(mediaURL)
		if err != nil {
			return err
		}
		destPath := filepath.Join(downloadDir, fileName)

		sm.reporter.ItemStarted(position, total, fileName)

		written, err := sm.downloader.Download(ctx, mediaURL, destPath)
		if err != nil {
			return err
		}

		record := domain.DownloadRecord{Path: destPath, Bytes: written}
		totals.Add(record)
		sm.recordItem(session, position, detailURL, mediaURL, record)
	}

	return nil
}

func (sm *SessionManager) recordStart(catalogURL, collection, downloadDir string, start time.Time) *domain.Session {
	if sm.events != nil {
		sm.events.LogSessionEvent("session_started",
			zap.String("catalog_url", catalogURL),
			zap.String("collection", collection),
			zap.String("download_dir", downloadDir))
	}

	if sm.repo == nil {
		return nil
	}
	session := domain.NewSession(catalogURL, collection, downloadDir, start)
	if err := sm.repo.Create(session); err != nil {
		sm.logger.Warn("Failed to record session, history disabled for this run", zap.Error(err))
		return nil
	}
	return session
}

func (sm *SessionManager) recordItem(session *domain.Session, position int, detailURL, mediaURL string, record domain.DownloadRecord) {
	if sm.events != nil {
		sm.events.LogSessionEvent("item_completed",
			zap.Int("position", position),
			zap.String("media_url", mediaURL),
			zap.String("file", record.Path),
			zap.Int64("bytes", record.Bytes))
	}

	if session == nil {
		return
	}
	item := domain.NewSessionItem(session.ID, position, detailURL, mediaURL, record, sm.now())
	if err := sm.repo.AddItem(item); err != nil {
		sm.logger.Warn("Failed to record session item", zap.Int("position", position), zap.Error(err))
	}
}

func (sm *SessionManager) recordCompletion(collection string, session *domain.Session, totals *domain.SessionTotals) {
	if sm.events != nil {
		sm.events.LogSessionEvent("session_finished",
			zap.String("collection", collection),
			zap.Int("items", totals.Count),
			zap.Int64("bytes", totals.Bytes),
			zap.Duration("elapsed", totals.Elapsed()))
	}
	if session != nil {
		session.MarkCompleted(totals)
		sm.saveSession(session)
	}
	if sm.notifier != nil {
		sm.notifier.NotifySessionCompleted(collection, totals)
	}
}

func (sm *SessionManager) recordFailure(collection string, session *domain.Session, totals *domain.SessionTotals, err error) {
	if sm.events != nil {
		sm.events.LogError("session_failed",
			zap.String("collection", collection),
			zap.Int("items", totals.Count),
			zap.Int64("bytes", totals.Bytes),
			zap.Error(err))
	}
	if session != nil {
		session.MarkFailed(totals, err)
		sm.saveSession(session)
	}
	if sm.notifier != nil {
		sm.notifier.NotifySessionFailed(collection, err)
	}
}

func (sm *SessionManager) saveSession(session *domain.Session) {
	if err := sm.repo.Update(session); err != nil {
		sm.logger.Warn("Failed to update session", zap.String("id", session.ID), zap.Error(err))
	}
}

// CollectionName returns the percent-decoded final path segment of a catalog URL
func CollectionName(catalogURL string) string {
	name, err := lastPathSegment(catalogURL)
	if err != nil || name == "" || name == "." || name == "/" {
		return catalogURL
	}
	return name
}

// MediaFileName derives the local file name of a media URL from its final path
// segment, percent-decoded and NFC-normalised
func MediaFileName(mediaURL string) (string, error) {
	name, err := lastPathSegment(mediaURL)
	if err != nil {
		return "", &domain.ParseError{URL: mediaURL, Step: "media file name", Err: err}
	}

	name = norm.NFC.String(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", &domain.ParseError{URL: mediaURL, Step: "media file name", Err: fmt.Errorf("unusable file name %q", name)}
	}
	return name, nil
}

func lastPathSegment(rawURL string) (string, error) {
	escaped := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		escaped = u.EscapedPath()
	}
	return url.PathUnescape(path.Base(escaped))
}

type nopReporter struct{}

func (nopReporter) SessionStarted(string, time.Time)               {}
func (nopReporter) ItemStarted(int, int, string)                   {}
func (nopReporter) SessionFinished(string, *domain.SessionTotals) {}
