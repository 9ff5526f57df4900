package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const maxExcerptLength = 280

type ExcerptExtractor struct {
	fetcher *Fetcher
	timeout time.Duration
}

func NewExcerptExtractor(fetcher *Fetcher, timeout time.Duration) *ExcerptExtractor {
	return &ExcerptExtractor{
		fetcher: fetcher,
		timeout: timeout,
	}
}

// Run downloads the page behind link and returns a short plain-text summary.
func (e *ExcerptExtractor) Run(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return "", fmt.Errorf("not an absolute url: %q", link)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.fetcher.Get(ctx, link)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return Excerpt(data, pageURL)
}

// Excerpt extracts the readable summary of an HTML page.
func Excerpt(data []byte, pageURL *url.URL) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	excerpt := strings.Join(strings.Fields(article.Excerpt), " ")
	if excerpt == "" {
		excerpt = strings.Join(strings.Fields(article.TextContent), " ")
	}
	if excerpt == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Excerpt extracted", "url", pageURL.String(), "title", article.Title, "length", len(excerpt))

	return truncate(excerpt, maxExcerptLength), nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
