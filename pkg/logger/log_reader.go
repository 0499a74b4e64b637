package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"
)

// LogEntry represents a parsed event log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Category  string                 `json:"category"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogReader reads the files written by EventLog
type LogReader struct {
	logsDir string
}

// NewLogReader creates a new log reader
func NewLogReader(logsDir string) *LogReader {
	return &LogReader{
		logsDir: logsDir,
	}
}

// ValidCategory reports whether category is written by EventLog
func ValidCategory(category LogCategory) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ReadLogs reads the last limit entries of a category for a day; limit <= 0 reads all
func (lr *LogReader) ReadLogs(category LogCategory, date time.Time, limit int) ([]LogEntry, error) {
	file, err := os.Open(CategoryLogPath(lr.logsDir, category, date))
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, parseEntry(category, line))
	}

	return entries, nil
}

// LogPosition marks a point in a category's daily file
type LogPosition struct {
	Date   time.Time
	Offset int64
}

// ReadRecent reads the last limit complete entries of today's file and returns the
// position just past them, to be handed to TailLogs
func (lr *LogReader) ReadRecent(category LogCategory, limit int) ([]LogEntry, LogPosition, error) {
	now := time.Now()
	entries, offset, err := readFrom(category, CategoryLogPath(lr.logsDir, category, now), 0)
	if err != nil {
		return nil, LogPosition{}, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []LogEntry{}
	}

	return entries, LogPosition{Date: now, Offset: offset}, nil
}

// TailLogs polls a category's file every interval and sends each newly completed line
// after from to out. When the day changes it finishes the old file and moves on to
// the new one. It returns when ctx is done.
func (lr *LogReader) TailLogs(ctx context.Context, category LogCategory, from LogPosition, interval time.Duration, out chan<- LogEntry) error {
	path := CategoryLogPath(lr.logsDir, category, from.Date)
	offset := from.Offset

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		current := CategoryLogPath(lr.logsDir, category, time.Now())
		for {
			entries, next, err := readFrom(category, path, offset)
			if err != nil {
				return err
			}
			offset = next

			for _, entry := range entries {
				select {
				case out <- entry:
				case <-ctx.Done():
					return nil
				}
			}

			if path == current {
				break
			}
			path = current
			offset = 0
		}
	}
}

// readFrom parses the complete lines after offset and returns the offset just past them
func readFrom(category LogCategory, path string, offset int64) ([]LogEntry, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, offset, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, err
	}
	if info.Size() < offset {
		// truncated or replaced
		offset = 0
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, offset, err
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, offset, nil
	}

	var entries []LogEntry
	for _, line := range strings.Split(string(data[:end]), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, parseEntry(category, line))
		}
	}

	return entries, offset + int64(end+1), nil
}

// parseEntry splits a JSON line into the well-known keys and the remaining fields.
// Lines that are not JSON are kept as plain messages.
func parseEntry(category LogCategory, line string) LogEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{Level: "info", Message: line, Category: string(category)}
	}

	entry := LogEntry{Category: string(category)}
	entry.Timestamp, _ = raw["timestamp"].(string)
	entry.Level, _ = raw["level"].(string)
	entry.Message, _ = raw["message"].(string)
	delete(raw, "timestamp")
	delete(raw, "level")
	delete(raw, "message")
	if len(raw) > 0 {
		entry.Fields = raw
	}

	return entry
}
