package extract

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
)

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into a Document. pageURL may be nil.
	Extract(input []byte, pageURL *url.URL) (Document, error)
}

// HeuristicExtractor uses FromHTML, which prefers <main>/<article> and
// applies light boilerplate reduction and normalization.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte, pageURL *url.URL) (Document, error) {
	doc := FromHTML(input)
	doc.Title = NormalizeTitle(doc.Title)
	if q, err := goquery.NewDocumentFromReader(bytes.NewReader(input)); err == nil {
		doc.PublishedAt = PublishedDate(q, pageURL)
	} else {
		doc.PublishedAt = URLDate(pageURL)
	}
	return doc, nil
}

// ReadabilityExtractor runs go-readability and fills in the title and
// publication date from page metadata when readability finds none. When
// readability yields no text, Fallback is used (HeuristicExtractor if nil).
type ReadabilityExtractor struct {
	Fallback Extractor
}

func (e ReadabilityExtractor) Extract(input []byte, pageURL *url.URL) (Document, error) {
	article, err := readability.FromReader(bytes.NewReader(input), pageURL)
	if err != nil {
		log.Debug().Err(err).Msg("readability failed, using fallback")
		return e.fallback().Extract(input, pageURL)
	}

	text := fragmentText(article.Content)
	if text == "" {
		text = NormalizeText(article.TextContent)
	}
	if text == "" {
		log.Debug().Msg("readability found no text, using fallback")
		doc, err := e.fallback().Extract(input, pageURL)
		if err != nil {
			return Document{}, fmt.Errorf("fallback extract: %w", err)
		}
		if doc.Title == "" {
			doc.Title = NormalizeTitle(article.Title)
		}
		if article.PublishedTime != nil {
			doc.PublishedAt = article.PublishedTime
		}
		return doc, nil
	}

	doc := Document{
		Title:       NormalizeTitle(article.Title),
		Text:        text,
		PublishedAt: article.PublishedTime,
	}
	if doc.Title == "" || doc.PublishedAt == nil {
		q, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
		if err != nil {
			q = nil
		}
		if doc.Title == "" {
			doc.Title = NormalizeTitle(MetaTitle(q))
		}
		if doc.PublishedAt == nil {
			doc.PublishedAt = PublishedDate(q, pageURL)
		}
	}
	return doc, nil
}

func (e ReadabilityExtractor) fallback() Extractor {
	if e.Fallback != nil {
		return e.Fallback
	}
	return HeuristicExtractor{}
}

// Default returns the extractor used by the CLI.
func Default() Extractor {
	return ReadabilityExtractor{Fallback: HeuristicExtractor{}}
}
