package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/pkg/logger"
)

const (
	streamBacklog      = 50
	streamPollInterval = time.Second
	streamPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only API
	},
}

// LogStreamHandler streams event log entries over a WebSocket as they are written
type LogStreamHandler struct {
	logReader    *logger.LogReader
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewLogStreamHandler creates a new log stream handler
func NewLogStreamHandler(logReader *logger.LogReader, log *zap.Logger) *LogStreamHandler {
	return &LogStreamHandler{
		logReader:    logReader,
		logger:       log,
		pollInterval: streamPollInterval,
	}
}

// Stream handles GET /api/v1/logs/:category/stream. It sends today's most recent
// entries first, then every new entry until the client disconnects.
func (h *LogStreamHandler) Stream(c *gin.Context) {
	category := logger.LogCategory(c.Param("category"))
	if !logger.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("Log stream client connected",
		zap.String("category", string(category)),
		zap.String("remote_addr", c.Request.RemoteAddr))

	backlog, position, err := h.logReader.ReadRecent(category, streamBacklog)
	if err != nil {
		h.logger.Error("Failed to read log backlog", zap.Error(err))
		return
	}
	for _, entry := range backlog {
		if err := writeEntry(conn, entry); err != nil {
			return
		}
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	entries := make(chan logger.LogEntry, 100)
	go func() {
		if err := h.logReader.TailLogs(ctx, category, position, h.pollInterval, entries); err != nil {
			h.logger.Error("Log tailing error", zap.Error(err))
			cancel()
		}
	}()

	// The read loop only notices the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-entries:
			if err := writeEntry(conn, entry); err != nil {
				h.logger.Debug("Log stream client gone", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeEntry(conn *websocket.Conn, entry logger.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
