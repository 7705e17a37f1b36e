//go:build !release

package log

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	tests := []struct {
		name     string
		fn       func()
		expected string
	}{
		{
			name:     "Print",
			fn:       func() { Print("catalog ready") },
			expected: "catalog ready",
		},
		{
			name:     "Printf",
			fn:       func() { Printf("download attempt %d/%d", 2, 5) },
			expected: "download attempt 2/5",
		},
		{
			name:     "Println",
			fn:       func() { Println("rotation halted") },
			expected: "rotation halted",
		},
		{
			name:     "Debug",
			fn:       func() { Debug("stale tick") },
			expected: "[DEBUG] stale tick",
		},
		{
			name:     "Debugf",
			fn:       func() { Debugf("received %d bytes", 1024) },
			expected: "[DEBUG] received 1024 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			assert.True(t, strings.Contains(buf.String(), tt.expected), "log output %q should contain %q", buf.String(), tt.expected)
		})
	}
}
