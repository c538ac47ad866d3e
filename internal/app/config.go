package app

import (
	"net/http"
	"time"

	"github.com/hyperifyio/articlefetch/internal/fetch"
)

// Config holds runtime configuration for the application. There is no
// config file or environment lookup; callers start from DefaultConfig.
type Config struct {
	// Timeout bounds the single page request.
	Timeout time.Duration
	// Headers are sent with the page request.
	Headers http.Header
	// TraceTitleWidth caps the title shown in the diagnostic line, in columns.
	TraceTitleWidth int
}

// DefaultConfig returns the fixed settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		Timeout:         fetch.DefaultTimeout,
		Headers:         fetch.DefaultHeaders(),
		TraceTitleWidth: 60,
	}
}
