package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrFetchFailure = errors.New("fetch failure")

const maxErrorBody = 512

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// Fetch downloads target, either directly or, when proxyURL is set, through a
// caching proxy taking the target as its url parameter.
func (f *Fetcher) Fetch(ctx context.Context, target string, proxyURL string, timeout time.Duration) ([]byte, error) {
	requestURL, err := buildURL(target, proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := f.Get(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrFetchFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrFetchFailure, resp.StatusCode, errorText(resp.Status, data))
	}

	return data, nil
}

// Get performs a plain GET with the configured user agent. The caller owns the body.
func (f *Fetcher) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	return resp, nil
}

func buildURL(target, proxyURL string) (string, error) {
	if target == "" {
		return "", errors.New("missing url")
	}
	if proxyURL == "" {
		return target, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy url: %w", err)
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// errorText prefers the body, which a proxy uses to surface the upstream error.
func errorText(status string, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}
