package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlefetch/internal/article"
	"github.com/hyperifyio/articlefetch/internal/extract"
	"github.com/hyperifyio/articlefetch/internal/fetch"
)

// ErrNoText is returned when extraction leaves no body text.
var ErrNoText = errors.New("no article text")

// App fetches one page and turns it into an article record.
type App struct {
	cfg       Config
	client    *fetch.Client
	extractor extract.Extractor
}

// New wires the fetch client and extractor from cfg. Zero fields of cfg
// take their DefaultConfig values.
func New(cfg Config) *App {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Headers == nil {
		cfg.Headers = def.Headers
	}
	if cfg.TraceTitleWidth <= 0 {
		cfg.TraceTitleWidth = def.TraceTitleWidth
	}
	return &App{
		cfg: cfg,
		client: &fetch.Client{
			HTTPClient:        newHTTPClient(cfg.Timeout),
			Headers:           cfg.Headers,
			PerRequestTimeout: cfg.Timeout,
		},
		extractor: extract.Default(),
	}
}

// WithExtractor replaces the extraction strategy.
func (a *App) WithExtractor(e extract.Extractor) *App {
	a.extractor = e
	return a
}

// FetchArticle downloads rawURL, extracts the article and builds the record.
// A diagnostic line with the shortened title and character count is logged
// once extraction has finished.
func (a *App) FetchArticle(ctx context.Context, rawURL string) (*article.Record, error) {
	page, err := a.client.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	doc, err := a.extractor.Extract(page.Body, page.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	rec, ok := article.New(rawURL, doc)
	text := ""
	if ok {
		text = rec.Text
	}
	log.Info().
		Str("title", article.TraceTitle(doc.Title, a.cfg.TraceTitleWidth)).
		Int("chars", article.CharCount(text)).
		Msg("extracted")
	if !ok {
		return nil, ErrNoText
	}
	return rec, nil
}

// Run handles one CLI invocation. Every failure collapses to {} on w; the
// cause is logged to stderr only. The returned error is non-nil only when
// writing to w fails.
func (a *App) Run(ctx context.Context, args []string, w io.Writer) error {
	if len(args) == 0 {
		return article.Encode(w, nil)
	}
	rawURL := args[0]
	rec, err := a.safeFetch(ctx, rawURL)
	switch {
	case errors.Is(err, ErrNoText):
		// already reported by the extraction trace
		rec = nil
	case err != nil:
		log.Error().Err(err).Str("url", rawURL).Msg("error fetching article")
		rec = nil
	}
	return article.Encode(w, rec)
}

// safeFetch converts a panic anywhere below FetchArticle into an error.
func (a *App) safeFetch(ctx context.Context, rawURL string) (rec *article.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.FetchArticle(ctx, rawURL)
}
