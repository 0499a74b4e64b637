package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "notify-send", "notify-send"},
		{"empty", "", "''"},
		{"spaces", "Download Completed", "'Download Completed'"},
		{"single quote", "it's", `'it'"'"'s'`},
		{"double quote", `album "x"`, `'album "x"'`},
		{"dollar", "$HOME", "'$HOME'"},
		{"percent", "100%", "'100%'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteArg(tt.input))
		})
	}
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "notify-send 'Download Completed' 'some-album: 3 files, 1.00MB'",
		commandLine("notify-send", "Download Completed", "some-album: 3 files, 1.00MB"))
	assert.Equal(t, "true", commandLine("true"))
}
