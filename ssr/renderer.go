package ssr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Renderer produces a crawlable HTML snapshot of a single-page-app path.
// The rendering engine itself is external; this package only owns caching
// and the time box around a render.
type Renderer interface {
	Render(ctx context.Context, path string) (string, error)
}

// HTTPRenderer asks an external prerender service for a snapshot. A render
// exceeding the caller's context deadline is abandoned; the late response is
// discarded by the transport.
type HTTPRenderer struct {
	base   string
	client *http.Client
}

func NewHTTPRenderer(base string) *HTTPRenderer {
	return &HTTPRenderer{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{},
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+path, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
