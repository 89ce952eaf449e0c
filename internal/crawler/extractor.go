package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alvmarrod/triangle-weaver/internal/config"
	"github.com/alvmarrod/triangle-weaver/internal/graph"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// LinkExtractor returns the normalized http(s) links found on a page.
// Failures are absorbed: a page that cannot be fetched or parsed has no links.
type LinkExtractor interface {
	ExtractLinks(ctx context.Context, pageURL string) graph.LinkSet
}

// Extractor fetches pages with colly and collects their anchors
type Extractor struct {
	collector *colly.Collector
	headers   map[string]string
	recorder  Recorder
}

// NewExtractor creates a colly-backed link extractor.
// The base collector carries the shared transport settings; every page gets
// a clone so callbacks stay local to one fetch.
func NewExtractor(cfg *config.Config, recorder Recorder) *Extractor {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),        // VisitedSet owns deduplication
		colly.ParseHTTPErrorResponse(), // non-2xx bodies are still parsed
	)
	collector.SetRequestTimeout(cfg.RequestTimeout())

	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Extractor{
		collector: collector,
		headers:   cfg.Headers,
		recorder:  recorder,
	}
}

// ExtractLinks fetches pageURL and returns the set of links it references
func (e *Extractor) ExtractLinks(ctx context.Context, pageURL string) graph.LinkSet {
	links := graph.NewLinkSet()

	if err := ctx.Err(); err != nil {
		return links
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		logrus.Warnf("Error fetching %s -> %v", pageURL, err)
		e.recorder.IncrementPagesFailed()
		return links
	}

	var (
		isHTML bool
		hrefs  []string
	)

	c := e.collector.Clone()

	c.OnRequest(func(r *colly.Request) {
		for key, value := range e.headers {
			r.Headers.Set(key, value)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		isHTML = strings.Contains(strings.ToLower(r.Headers.Get("Content-Type")), "text/html")
		logrus.Debugf("Fetched %s (status=%d, html=%t)", pageURL, r.StatusCode, isHTML)
	})

	c.OnHTML("html", func(el *colly.HTMLElement) {
		if !isHTML {
			return
		}
		el.DOM.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				hrefs = append(hrefs, href)
			}
		})
	})

	startTime := time.Now()
	err = c.Visit(pageURL)
	e.recorder.RecordFetchTime(time.Since(startTime))

	if err != nil {
		logrus.Warnf("Error fetching %s -> %v", pageURL, err)
		e.recorder.IncrementPagesFailed()
		return links
	}

	e.recorder.IncrementPagesFetched()

	if !isHTML {
		logrus.Debugf("Skipping %s: not an HTML document", pageURL)
		e.recorder.IncrementPagesSkipped()
		return links
	}

	found, malformed := FilterLinks(base, hrefs)
	if malformed > 0 {
		logrus.Debugf("Skipped %d malformed hrefs on %s", malformed, pageURL)
	}
	for _, link := range found {
		links.Add(link)
	}

	return links
}
