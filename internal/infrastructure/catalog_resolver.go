package infrastructure

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/pkg/markup"
)

// TextFetcher retrieves a page as text
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// CatalogResolver extracts the item detail-page URLs from an album catalog page
type CatalogResolver struct {
	fetcher TextFetcher
	anchors *domain.MarkupConfig
	logger  *zap.Logger
}

// NewCatalogResolver creates a new catalog resolver
func NewCatalogResolver(fetcher TextFetcher, anchors *domain.MarkupConfig, logger *zap.Logger) *CatalogResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogResolver{
		fetcher: fetcher,
		anchors: anchors,
		logger:  logger,
	}
}

// Resolve fetches catalogURL and returns one absolute detail-page URL per listed row,
// in listing order. Duplicate rows are kept. Any missing anchor fails the whole call.
func (r *CatalogResolver) Resolve(ctx context.Context, catalogURL string) ([]string, error) {
	base, err := url.Parse(catalogURL)
	if err != nil {
		return nil, &domain.ParseError{URL: catalogURL, Step: "catalog url", Err: err}
	}

	body, err := r.fetcher.FetchText(ctx, catalogURL)
	if err != nil {
		return nil, err
	}

	detailURLs, err := r.extract(body, base)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Resolved catalog",
		zap.String("url", catalogURL),
		zap.Int("items", len(detailURLs)))

	return detailURLs, nil
}

func (r *CatalogResolver) extract(body string, base *url.URL) ([]string, error) {
	catalogURL := base.String()

	listingStart, err := markup.Index(body, r.anchors.ListingAnchor, 0)
	if err != nil {
		return nil, &domain.ParseError{URL: catalogURL, Step: "listing container", Err: err}
	}

	// The footer row marks the end of the real items and is excluded
	rowsStart, rowsEnd, err := markup.LocateRegion(body, r.anchors.RowAnchor, r.anchors.FooterAnchor, listingStart)
	if err != nil {
		return nil, &domain.ParseError{URL: catalogURL, Step: "listing rows", Err: err}
	}

	rows := markup.Split(body[rowsStart:rowsEnd], r.anchors.RowAnchor)
	detailURLs := make([]string, 0, len(rows))

	for i, row := range rows {
		href, err := markup.LocateAttribute(row, r.anchors.LinkCellAnchor, r.anchors.LinkAttributeAnchor, 0)
		if err != nil {
			return nil, &domain.ParseError{URL: catalogURL, Step: fmt.Sprintf("row %d link", i+1), Err: err}
		}

		ref, err := url.Parse(href)
		if err != nil {
			return nil, &domain.ParseError{URL: catalogURL, Step: fmt.Sprintf("row %d link", i+1), Err: err}
		}

		detailURLs = append(detailURLs, base.ResolveReference(ref).String())
	}

	return detailURLs, nil
}
