package ssr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRendererReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/hello-world", r.URL.Path)
		_, _ = w.Write([]byte("<html>snapshot</html>"))
	}))
	defer srv.Close()

	html, err := NewHTTPRenderer(srv.URL).Render(context.Background(), "/posts/hello-world")
	require.NoError(t, err)
	assert.Equal(t, "<html>snapshot</html>", html)
}

func TestHTTPRendererNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPRenderer(srv.URL).Render(context.Background(), "/broken")
	assert.Error(t, err)
}

func TestHTTPRendererHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewHTTPRenderer(srv.URL).Render(ctx, "/slow")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
