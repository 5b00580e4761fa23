package logger

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.trai.ch/kiln/internal/core/ports"
)

// HTTPLogger adapts a ports.Logger to retryablehttp.LeveledLogger.
// Debug messages are dropped; they are emitted for every request.
type HTTPLogger struct {
	Logger ports.Logger
}

var _ retryablehttp.LeveledLogger = HTTPLogger{}

// Error implements retryablehttp.LeveledLogger.
func (h HTTPLogger) Error(msg string, keysAndValues ...any) {
	h.Logger.Warn(formatKV(msg, keysAndValues))
}

// Info implements retryablehttp.LeveledLogger.
func (h HTTPLogger) Info(msg string, keysAndValues ...any) {
	h.Logger.Info(formatKV(msg, keysAndValues))
}

// Debug implements retryablehttp.LeveledLogger.
func (h HTTPLogger) Debug(string, ...any) {}

// Warn implements retryablehttp.LeveledLogger.
func (h HTTPLogger) Warn(msg string, keysAndValues ...any) {
	h.Logger.Warn(formatKV(msg, keysAndValues))
}

func formatKV(msg string, keysAndValues []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return b.String()
}
