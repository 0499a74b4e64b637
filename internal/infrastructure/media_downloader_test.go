package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/khinsider-go/internal/domain"
)

func newTestMediaDownloader() *MediaDownloader {
	return NewMediaDownloader(&domain.FetchConfig{UserAgent: "test-agent"}, nil, nil)
}

func TestMediaDownloader_Download(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 10000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(payload[:len(payload)/2])
		w.(http.Flusher).Flush()
		w.Write(payload[len(payload)/2:])
	}))
	defer server.Close()

	downloader := newTestMediaDownloader()
	var chunkTotal int
	downloader.OnChunk = func(n int) { chunkTotal += n }

	dest := filepath.Join(t.TempDir(), "track.mp3")
	n, err := downloader.Download(context.Background(), server.URL+"/track.mp3", dest)
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, len(payload), chunkTotal)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestMediaDownloader_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "empty.mp3")
	n, err := newTestMediaDownloader().Download(context.Background(), server.URL, dest)
	require.NoError(t, err)
	assert.Zero(t, n)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestMediaDownloader_TruncatesExistingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(dest, []byte("much longer old content"), 0644))

	n, err := newTestMediaDownloader().Download(context.Background(), server.URL, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(written))
}

func TestMediaDownloader_NonSuccessStatusLeavesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "track.mp3")
	n, err := newTestMediaDownloader().Download(context.Background(), server.URL, dest)
	require.Error(t, err)
	assert.Zero(t, n)

	var transferErr *domain.TransferError
	require.True(t, errors.As(err, &transferErr))
	assert.Equal(t, dest, transferErr.Path)

	var networkErr *domain.NetworkError
	assert.True(t, errors.As(err, &networkErr))

	// The destination was created before the request and is not cleaned up
	_, statErr := os.Stat(dest)
	assert.NoError(t, statErr)
}

func TestMediaDownloader_InterruptedStreamLeavesPartialFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "track.mp3")
	n, err := newTestMediaDownloader().Download(context.Background(), server.URL, dest)
	require.Error(t, err)
	assert.Zero(t, n)

	var transferErr *domain.TransferError
	require.True(t, errors.As(err, &transferErr))

	written, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "partial", string(written))
}

func TestMediaDownloader_MissingDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "track.mp3")

	_, err := newTestMediaDownloader().Download(context.Background(), "http://127.0.0.1:1/x", dest)

	var fsErr *domain.FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, dest, fsErr.Path)
}
