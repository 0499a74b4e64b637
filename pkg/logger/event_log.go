package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different event log categories
type LogCategory string

const (
	CategorySession LogCategory = "session" // Session lifecycle events (JSON)
	CategoryError   LogCategory = "error"   // Session failures (JSON)
)

// Categories lists every category written by EventLog
var Categories = []LogCategory{CategorySession, CategoryError}

// EventLog writes structured session events to one JSON file per category and day
type EventLog struct {
	loggers map[LogCategory]*zap.Logger
	files   []*os.File
	logsDir string
	mu      sync.RWMutex
}

// NewEventLog creates the event log files in logsDir
func NewEventLog(logsDir string) (*EventLog, error) {
	if logsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	el := &EventLog{
		loggers: make(map[LogCategory]*zap.Logger),
		logsDir: logsDir,
	}

	for _, category := range Categories {
		logger, err := el.createStructuredLogger(category)
		if err != nil {
			el.Close()
			return nil, fmt.Errorf("failed to create %s logger: %w", category, err)
		}
		el.loggers[category] = logger
	}

	return el, nil
}

// createStructuredLogger creates a JSON-formatted logger for a category
func (el *EventLog) createStructuredLogger(category LogCategory) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = ""

	file, err := os.OpenFile(CategoryLogPath(el.logsDir, category, time.Now()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	el.files = append(el.files, file)

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), zapcore.InfoLevel)
	return zap.New(core), nil
}

// CategoryLogPath returns the log file of a category for the given day
func CategoryLogPath(logsDir string, category LogCategory, date time.Time) string {
	filename := fmt.Sprintf("%s-%s.log", category, date.Format("20060102"))
	return filepath.Join(logsDir, filename)
}

// LogsDir returns the logs directory path
func (el *EventLog) LogsDir() string {
	return el.logsDir
}

// LogSessionEvent logs a session lifecycle event
func (el *EventLog) LogSessionEvent(event string, fields ...zap.Field) {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if logger, ok := el.loggers[CategorySession]; ok {
		logger.Info(event, fields...)
	}
}

// LogError logs a session failure
func (el *EventLog) LogError(msg string, fields ...zap.Field) {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if logger, ok := el.loggers[CategoryError]; ok {
		logger.Error(msg, fields...)
	}
}

// Close flushes the loggers and closes their files
func (el *EventLog) Close() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	var lastErr error
	for _, logger := range el.loggers {
		logger.Sync()
	}
	for _, file := range el.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
	}
	el.loggers = map[LogCategory]*zap.Logger{}
	el.files = nil

	return lastErr
}
