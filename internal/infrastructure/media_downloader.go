package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/domain"
)

// MediaDownloader streams media files to local storage.
//
// A failed transfer leaves whatever was already written at the destination; there is
// no cleanup and no resume marker.
type MediaDownloader struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger

	// OnChunk, if set, is called with the size of every chunk written
	OnChunk func(n int)
}

// NewMediaDownloader creates a new media downloader. A zero timeout means a stalled
// stream blocks until the caller's context is done.
func NewMediaDownloader(config *domain.FetchConfig, jar *cookiejar.Jar, logger *zap.Logger) *MediaDownloader {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := &http.Client{}
	if jar != nil {
		client.Jar = jar
	}

	return &MediaDownloader{
		client:    client,
		userAgent: config.UserAgent,
		timeout:   config.Timeout,
		logger:    logger,
	}
}

// Download creates or truncates destPath, streams mediaURL into it and returns the
// number of bytes transferred
func (d *MediaDownloader) Download(ctx context.Context, mediaURL, destPath string) (int64, error) {
	file, err := os.Create(destPath)
	if err != nil {
		return 0, &domain.FilesystemError{Op: "create", Path: destPath, Err: err}
	}

	written, err := d.stream(ctx, mediaURL, file)
	if err != nil {
		file.Close()
		return 0, &domain.TransferError{URL: mediaURL, Path: destPath, Err: err}
	}

	if err := file.Close(); err != nil {
		return 0, &domain.TransferError{URL: mediaURL, Path: destPath, Err: fmt.Errorf("close: %w", err)}
	}

	d.logger.Debug("Media downloaded",
		zap.String("url", mediaURL),
		zap.String("file", destPath),
		zap.Int64("bytes", written))

	return written, nil
}

func (d *MediaDownloader) stream(ctx context.Context, mediaURL string, dst io.Writer) (int64, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return 0, &domain.NetworkError{URL: mediaURL, Err: err}
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &domain.NetworkError{URL: mediaURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &domain.NetworkError{URL: mediaURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body := &countingReader{r: resp.Body, onChunk: d.OnChunk}
	if _, err := io.Copy(dst, body); err != nil {
		return body.n, err
	}

	return body.n, nil
}

// countingReader counts the bytes read through it
type countingReader struct {
	r       io.Reader
	n       int64
	onChunk func(n int)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.onChunk != nil {
			c.onChunk(n)
		}
	}
	return n, err
}
