package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/internal/infrastructure"
)

// isolate points HOME at an empty directory so no user config or history is picked up
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("KHINSIDER_LOGGING_OUTPUT_PATH", "stderr")
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newAlbumServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/album/test-album":
			fmt.Fprint(w, `<table id="songlist">
<tr id="songlist_header"><th>Name</th></tr>
<tr>
<td class="clickable-row"><a href="/album/test-album/1">One</a></td>
</tr>
<tr>
<td class="clickable-row"><a href="/album/test-album/2">Two</a></td>
</tr>
<tr id="songlist_footer"><th>Total</th></tr>
</table>`)
		case "/album/test-album/1":
			fmt.Fprintf(w, `<audio controls src="%s/media/01%%20One.mp3"></audio>`, server.URL)
		case "/album/test-album/2":
			fmt.Fprintf(w, `<audio controls src="%s/media/02.mp3"></audio>`, server.URL)
		case "/media/01 One.mp3":
			fmt.Fprint(w, "first track")
		case "/media/02.mp3":
			fmt.Fprint(w, "second track")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRoot_MissingInputsPrintsUsage(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{
		{},
		{"--dir", t.TempDir()},
		{"--url", "https://example.com/album/a"},
	} {
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "--url")
	}
}

func TestRoot_DownloadsAlbum(t *testing.T) {
	isolate(t)
	server := newAlbumServer(t)
	dir := filepath.Join(t.TempDir(), "nested", "album")

	_, err := execute(t, "--no-history", "--url", server.URL+"/album/test-album", "--dir", dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "01 One.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "first track", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "02.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "second track", string(content))
}

func TestRoot_RecordsHistory(t *testing.T) {
	home := isolate(t)
	server := newAlbumServer(t)

	_, err := execute(t, "--url", server.URL+"/album/test-album", "--dir", t.TempDir())
	require.NoError(t, err)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "test-album")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "2/2")

	repo, err := infrastructure.NewSQLiteSessionRepository(filepath.Join(home, ".khinsider", "history.db"))
	require.NoError(t, err)
	sessions, err := repo.FindAll(0)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.Len(t, sessions, 1)

	out, err = execute(t, "history", "show", sessions[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Collection: test-album")
	assert.Contains(t, out, "01 One.mp3")
	assert.Contains(t, out, "02.mp3")

	_, err = execute(t, "history", "show", "unknown")
	assert.Error(t, err)
}

func TestRoot_HistoryDisabled(t *testing.T) {
	isolate(t)

	_, err := execute(t, "--no-history", "history")
	assert.Error(t, err)
}

func TestRoot_FailureReturnsTypedError(t *testing.T) {
	isolate(t)
	server := newAlbumServer(t)

	_, err := execute(t, "--no-history", "--url", server.URL+"/album/missing", "--dir", t.TempDir())

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestRoot_UnwritableDirectory(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := execute(t, "--no-history", "--url", "https://example.com/album/a", "--dir", filepath.Join(file, "album"))

	var fsErr *domain.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "mkdir", fsErr.Op)
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)

	_, err = execute(t, "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestConsoleReporter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reporter := newConsoleReporter(zap.New(core))

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reporter.SessionStarted("some-album", start)
	reporter.ItemStarted(7, 12, "07.mp3")
	reporter.ItemStarted(12, 12, "12.mp3")

	totals := domain.NewSessionTotals(start)
	totals.Add(domain.DownloadRecord{Bytes: 1048576})
	totals.Finish(start.Add(time.Hour + 2*time.Second))
	reporter.SessionFinished("some-album", totals)

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{
		"start: some-album",
		"[ 7/12] 07.mp3",
		"[12/12] 12.mp3",
		"done: some-album",
		"- downloaded in: 1 hours 2 seconds",
		"- download size: 1.00MB",
	}, messages)

	assert.Equal(t, "2024-03-01 10:00:00", logs.All()[0].ContextMap()["at"])
	assert.True(t, strings.HasPrefix(logs.All()[3].ContextMap()["at"].(string), "2024-03-01 11:00:02"))
}

func TestInterruptContext(t *testing.T) {
	ctx, stop := interruptContext()
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGINT")
	}
}

func TestSessionManager_StopsOnCancelWhileFetchStalls(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	config := domain.DefaultConfig()
	config.History.Enabled = false
	config.Logging.EventsDir = ""

	manager, cleanup, err := newSessionManager(config, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = manager.Run(ctx, server.URL+"/album/stalled", t.TempDir())

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 8))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 8))

	truncated := truncate("ドラゴンクエスト オリジナル・サウンドトラック", 10)
	assert.Equal(t, "ドラゴンクエス...", truncated)
	assert.True(t, utf8.ValidString(truncated))
}
