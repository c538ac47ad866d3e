// Package article holds the record printed for a fetched page and its
// single-line JSON encoding.
package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/hyperifyio/articlefetch/internal/extract"
)

// Record is the transient result for one URL. Field order is the wire order.
type Record struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	PublishedAt *string `json:"publishedAt"`
	Text        string  `json:"text"`
}

// New builds a Record from an extracted document. It reports false when the
// trimmed body text is empty, in which case there is no result.
func New(rawURL string, doc extract.Document) (*Record, bool) {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, false
	}
	return &Record{
		URL:         rawURL,
		Title:       strings.TrimSpace(doc.Title),
		PublishedAt: FormatTime(doc.PublishedAt),
		Text:        text,
	}, true
}

// FormatTime renders t as RFC 3339 with its offset, or nil.
func FormatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// Encode writes rec as exactly one JSON line. A nil rec is written as {}.
func Encode(w io.Writer, rec *Record) error {
	var buf bytes.Buffer
	if rec == nil {
		buf.WriteString("{}\n")
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		// Encode terminates the value with a newline
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// TraceTitle shortens title to at most width terminal columns for the
// diagnostic line.
func TraceTitle(title string, width int) string {
	if width <= 0 {
		return title
	}
	return runewidth.Truncate(title, width, "")
}

// CharCount counts characters, not bytes.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}
