package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// publishedMetaKeys are matched case-insensitively against the property,
// name and itemprop attributes of <meta> tags, in priority order.
var publishedMetaKeys = []string{
	"article:published_time",
	"og:published_time",
	"rnews:datepublished",
	"datepublished",
	"originalpublicationdate",
	"article_date_original",
	"publication_date",
	"parsely-pub-date",
	"sailthru.date",
	"dc.date.issued",
	"dcterms.issued",
	"publishdate",
	"publish_date",
	"pubdate",
	"date",
}

var urlDatePattern = regexp.MustCompile(`/((?:19|20)\d{2})[/\-_.]([01]?\d)[/\-_.]([0-3]?\d)(?:[/\-_.]|$)`)

// PublishedDate looks for a publication timestamp in <meta> tags, then in
// the first <time datetime> element, then in the page URL path.
func PublishedDate(doc *goquery.Document, pageURL *url.URL) *time.Time {
	if doc != nil {
		if t := metaPublished(doc); t != nil {
			return t
		}
		if t := timeElementPublished(doc); t != nil {
			return t
		}
	}
	return URLDate(pageURL)
}

func metaPublished(doc *goquery.Document) *time.Time {
	values := map[string]string{}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", s.AttrOr("datetime", "")))
		if content == "" {
			return
		}
		for _, attr := range []string{"property", "name", "itemprop"} {
			key := strings.ToLower(strings.TrimSpace(s.AttrOr(attr, "")))
			if key == "" {
				continue
			}
			if _, seen := values[key]; !seen {
				values[key] = content
			}
		}
	})
	for _, key := range publishedMetaKeys {
		if v, ok := values[key]; ok {
			if t := parseDate(v); t != nil {
				return t
			}
		}
	}
	return nil
}

func timeElementPublished(doc *goquery.Document) *time.Time {
	var found *time.Time
	// itemprop and pubdate markers win over a bare <time>
	for _, sel := range []string{`time[itemprop="datePublished"]`, "time[pubdate]", "time[datetime]"} {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if t := parseDate(s.AttrOr("datetime", "")); t != nil {
				found = t
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// URLDate extracts a /YYYY/MM/DD/ style date from the URL path.
func URLDate(pageURL *url.URL) *time.Time {
	if pageURL == nil {
		return nil
	}
	m := urlDatePattern.FindStringSubmatch(pageURL.Path)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject overflow such as 2024/02/31
	if t.Day() != day {
		return nil
	}
	return &t
}

// MetaTitle returns og:title, falling back to <title>.
func MetaTitle(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	var title string
	doc.Find(`meta[property="og:title"], meta[name="og:title"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title = strings.TrimSpace(s.AttrOr("content", ""))
		return title == ""
	})
	if title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("head title").First().Text())
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}
