package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlefetch/internal/extract"
)

const storyHTML = `<!doctype html>
<html>
  <head>
    <title>Harbor Bridge Reopens After Repairs</title>
    <meta property="article:published_time" content="2024-05-01T12:00:00Z">
  </head>
  <body>
    <article>
      <h1>Harbor Bridge Reopens After Repairs</h1>
      <p>The harbor bridge reopened to traffic on Wednesday morning after eight months of repairs to its steel deck and cables, city engineers said in a statement.</p>
      <p>Commuters who had been taking the ferry or the long road around the bay crowded onto the bridge shortly after dawn, and traffic moved slowly for most of the morning.</p>
      <p>The repairs came in under budget, according to the transport department, which said the bridge should not need major work again for at least twenty years.</p>
    </article>
  </body>
</html>`

// captureLogs redirects the global logger to a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runOnce(t *testing.T, a *App, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := a.Run(context.Background(), args, &out); err != nil {
		t.Fatalf("run error: %v", err)
	}
	s := out.String()
	if strings.Count(s, "\n") != 1 || !strings.HasSuffix(s, "\n") {
		t.Fatalf("expected exactly one output line, got %q", s)
	}
	if !json.Valid([]byte(s)) {
		t.Fatalf("expected valid JSON, got %q", s)
	}
	return s
}

func TestRun_Article(t *testing.T) {
	logs := captureLogs(t)
	srv := serve(t, 200, storyHTML)

	out := runOnce(t, New(DefaultConfig()), srv.URL+"/news/bridge")
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["url"] != srv.URL+"/news/bridge" {
		t.Fatalf("unexpected url %v", got["url"])
	}
	if got["title"] != "Harbor Bridge Reopens After Repairs" {
		t.Fatalf("unexpected title %v", got["title"])
	}
	if got["publishedAt"] != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected publishedAt %v", got["publishedAt"])
	}
	text, _ := got["text"].(string)
	if !strings.Contains(text, "The harbor bridge reopened to traffic") {
		t.Fatalf("unexpected text %q", text)
	}
	if !strings.Contains(logs.String(), `"message":"extracted"`) {
		t.Fatalf("expected diagnostic line, got %q", logs.String())
	}
	if strings.Count(logs.String(), "\n") != 1 {
		t.Fatalf("expected exactly one log line, got %q", logs.String())
	}
}

func TestRun_HTTPErrorsYieldEmptyObject(t *testing.T) {
	for _, code := range []int{404, 500} {
		logs := captureLogs(t)
		srv := serve(t, code, "<html><body><p>error page</p></body></html>")

		out := runOnce(t, New(DefaultConfig()), srv.URL)
		if out != "{}\n" {
			t.Fatalf("status %d: expected {}, got %q", code, out)
		}
		if !strings.Contains(logs.String(), srv.URL) || !strings.Contains(logs.String(), "unexpected status") {
			t.Fatalf("status %d: expected error log with url, got %q", code, logs.String())
		}
	}
}

func TestRun_NoExtractableText(t *testing.T) {
	logs := captureLogs(t)
	srv := serve(t, 200, `<html><head><title>Nothing here</title></head><body><script>1</script></body></html>`)

	out := runOnce(t, New(DefaultConfig()), srv.URL)
	if out != "{}\n" {
		t.Fatalf("expected {}, got %q", out)
	}
	if !strings.Contains(logs.String(), `"chars":0`) {
		t.Fatalf("expected diagnostic trace with zero chars, got %q", logs.String())
	}
	if strings.Contains(logs.String(), `"level":"error"`) {
		t.Fatalf("empty text should not log an error, got %q", logs.String())
	}
}

func TestRun_NoArgs(t *testing.T) {
	logs := captureLogs(t)
	out := runOnce(t, New(DefaultConfig()))
	if out != "{}\n" {
		t.Fatalf("expected {}, got %q", out)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no logs, got %q", logs.String())
	}
}

func TestRun_ConnectionRefused(t *testing.T) {
	logs := captureLogs(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	out := runOnce(t, New(DefaultConfig()), addr)
	if out != "{}\n" {
		t.Fatalf("expected {}, got %q", out)
	}
	if !strings.Contains(logs.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got %q", logs.String())
	}
}

func TestRun_InvalidURL(t *testing.T) {
	captureLogs(t)
	for _, raw := range []string{"not a url", "ftp://example.com/x", ""} {
		if out := runOnce(t, New(DefaultConfig()), raw); out != "{}\n" {
			t.Fatalf("%q: expected {}, got %q", raw, out)
		}
	}
}

func TestRun_Timeout(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	if out := runOnce(t, New(cfg), srv.URL); out != "{}\n" {
		t.Fatalf("expected {}, got %q", out)
	}
}

type panicExtractor struct{}

func (panicExtractor) Extract([]byte, *url.URL) (extract.Document, error) {
	panic("boom")
}

func TestRun_PanicCollapsesToEmpty(t *testing.T) {
	logs := captureLogs(t)
	srv := serve(t, 200, storyHTML)

	out := runOnce(t, New(DefaultConfig()).WithExtractor(panicExtractor{}), srv.URL)
	if out != "{}\n" {
		t.Fatalf("expected {}, got %q", out)
	}
	if !strings.Contains(logs.String(), "panic: boom") {
		t.Fatalf("expected panic logged, got %q", logs.String())
	}
}

type fixedExtractor struct{ doc extract.Document }

func (f fixedExtractor) Extract([]byte, *url.URL) (extract.Document, error) { return f.doc, nil }

func TestFetchArticle_TraceTruncatesTitle(t *testing.T) {
	logs := captureLogs(t)
	srv := serve(t, 200, "<html></html>")
	long := strings.Repeat("t", 100)

	a := New(DefaultConfig()).WithExtractor(fixedExtractor{doc: extract.Document{Title: long, Text: "body"}})
	rec, err := a.FetchArticle(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != long {
		t.Fatalf("record title must not be truncated")
	}
	var line map[string]any
	if err := json.Unmarshal(logs.Bytes(), &line); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if line["title"] != strings.Repeat("t", 60) {
		t.Fatalf("expected 60 column title, got %v", line["title"])
	}
	if line["chars"] != float64(4) {
		t.Fatalf("expected 4 chars, got %v", line["chars"])
	}
}

func TestFetchArticle_NoText(t *testing.T) {
	captureLogs(t)
	srv := serve(t, 200, "<html></html>")
	a := New(DefaultConfig()).WithExtractor(fixedExtractor{doc: extract.Document{Title: "x", Text: "  "}})
	if _, err := a.FetchArticle(context.Background(), srv.URL); err != ErrNoText {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestNew_FillsZeroConfig(t *testing.T) {
	a := New(Config{})
	if a.cfg.Timeout != 20*time.Second {
		t.Fatalf("expected default timeout, got %v", a.cfg.Timeout)
	}
	if a.cfg.Headers.Get("Accept-Language") != "en-US,en;q=0.9" {
		t.Fatalf("expected default headers")
	}
	if a.cfg.TraceTitleWidth != 60 {
		t.Fatalf("expected default trace width")
	}
}
