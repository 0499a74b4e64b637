package domain

import (
	"context"
	"time"
)

// CatalogResolver turns a catalog page into its item detail-page URLs, in listing order
type CatalogResolver interface {
	Resolve(ctx context.Context, catalogURL string) ([]string, error)
}

// DetailResolver turns an item detail page into its direct media URL
type DetailResolver interface {
	Resolve(ctx context.Context, detailURL string) (string, error)
}

// MediaDownloader streams a media URL into a local file and returns the bytes written
type MediaDownloader interface {
	Download(ctx context.Context, mediaURL, destPath string) (int64, error)
}

// ProgressReporter receives the user-visible progress of a session
type ProgressReporter interface {
	// SessionStarted is called once before the catalog is resolved
	SessionStarted(collection string, start time.Time)

	// ItemStarted is called before each download with a 1-based position
	ItemStarted(position, total int, fileName string)

	// SessionFinished is called once after every item completed
	SessionFinished(collection string, totals *SessionTotals)
}
