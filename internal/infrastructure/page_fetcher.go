package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/gocolly/colly"
	"golang.org/x/net/publicsuffix"

	"github.com/yourusername/khinsider-go/internal/domain"
)

// NewCookieJar creates the cookie jar shared by page and media requests, so cookies
// set while browsing the catalog are sent with the media downloads
func NewCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// PageFetcher fetches pages and returns their whole body as text
type PageFetcher struct {
	collector *colly.Collector
}

// NewPageFetcher creates a page fetcher. A zero timeout disables the request deadline.
func NewPageFetcher(config *domain.FetchConfig, jar *cookiejar.Jar) *PageFetcher {
	collector := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(), // duplicate rows are fetched again
		colly.MaxBodySize(0),
	)
	collector.SetRequestTimeout(config.Timeout)
	if jar != nil {
		collector.SetCookieJar(jar)
	}

	return &PageFetcher{collector: collector}
}

// FetchText retrieves url and returns the response body as text. It returns as soon
// as ctx is done, even while the request is still in flight.
// Transport failures and non-2xx responses are returned as *domain.NetworkError.
func (f *PageFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.NetworkError{URL: url, Err: err}
	}

	// Clone shares the HTTP backend but gets its own callbacks
	c := f.collector.Clone()

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= http.StatusMultipleChoices {
			fetchErr = fmt.Errorf("unexpected status %d %s", r.StatusCode, http.StatusText(r.StatusCode))
			return
		}
		fetchErr = err
	})

	// colly has no context support, so the visit runs on its own and is abandoned on cancel
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Visit(url); err != nil && fetchErr == nil {
			fetchErr = err
		}
	}()

	select {
	case <-ctx.Done():
		return "", &domain.NetworkError{URL: url, Err: ctx.Err()}
	case <-done:
	}

	if fetchErr != nil {
		return "", &domain.NetworkError{URL: url, Err: fetchErr}
	}

	return string(body), nil
}
