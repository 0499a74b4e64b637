package infrastructure

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/pkg/markup"
)

// DetailResolver extracts the direct media URL from an item detail page
type DetailResolver struct {
	fetcher TextFetcher
	anchors *domain.MarkupConfig
	logger  *zap.Logger
}

// NewDetailResolver creates a new detail resolver
func NewDetailResolver(fetcher TextFetcher, anchors *domain.MarkupConfig, logger *zap.Logger) *DetailResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailResolver{
		fetcher: fetcher,
		anchors: anchors,
		logger:  logger,
	}
}

// Resolve fetches detailURL and returns the source of its audio element verbatim.
// The page already carries an absolute URL there, so it is not re-resolved.
func (r *DetailResolver) Resolve(ctx context.Context, detailURL string) (string, error) {
	body, err := r.fetcher.FetchText(ctx, detailURL)
	if err != nil {
		return "", err
	}

	mediaURL, err := markup.LocateAttribute(body, r.anchors.MediaTagAnchor, r.anchors.MediaAttributeAnchor, 0)
	if err != nil {
		return "", &domain.ParseError{URL: detailURL, Step: "media source", Err: err}
	}

	r.logger.Debug("Resolved media URL",
		zap.String("detail_url", detailURL),
		zap.String("media_url", mediaURL))

	return mediaURL, nil
}
