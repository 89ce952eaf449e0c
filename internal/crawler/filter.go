package crawler

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL into its graph key: scheme://host/path with
// query, fragment and every trailing slash removed. Input that does not parse
// or has no scheme yields the empty key instead of an error; it never
// matches a fetched page.
func Normalize(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return ""
	}

	return strings.TrimRight(parsed.Scheme+"://"+parsed.Host+parsed.EscapedPath(), "/")
}

// IsCrawlable reports whether an absolute URL uses a scheme we fetch
func IsCrawlable(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// Resolve turns an href into an absolute URL relative to the page it was found on
func Resolve(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// FilterLinks resolves, filters and normalizes the hrefs found on a page.
// Hrefs that cannot be parsed are skipped without affecting the others.
func FilterLinks(base *url.URL, hrefs []string) (links []string, malformed int) {
	for _, href := range hrefs {
		abs, err := Resolve(base, href)
		if err != nil {
			malformed++
			continue
		}
		if !IsCrawlable(abs) {
			continue
		}
		links = append(links, Normalize(abs.String()))
	}
	return links, malformed
}
