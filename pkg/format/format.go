// Package format renders byte sizes, durations and timestamps for log output
package format

import (
	"fmt"
	"strings"
	"time"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// DateLayout is the layout used by Date
const DateLayout = "2006-01-02 15:04:05"

// Bytes formats a byte count using 1024-based units with two decimals, e.g. "1.00MB"
func Bytes(n int64) string {
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f%s", size, byteUnits[unit])
}

// Duration formats d as "1 days 2 hours 3 minutes 4 seconds", omitting zero parts.
// Durations under one second format as the empty string.
func Duration(d time.Duration) string {
	days := d / (24 * time.Hour)
	hours := (d % (24 * time.Hour)) / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%d seconds", seconds))
	}
	return strings.Join(parts, " ")
}

// Date formats t in UTC using DateLayout
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
