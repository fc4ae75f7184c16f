package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devlog/ssr"
	"devlog/utils"
)

// SSRController serves crawler snapshots of the frontend: cache hit or a
// time-boxed render against the external prerender service.
type SSRController struct {
	cache    *ssr.Cache
	renderer ssr.Renderer
	timeout  time.Duration
}

func NewSSRController(cache *ssr.Cache, renderer ssr.Renderer, timeout time.Duration) *SSRController {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SSRController{cache: cache, renderer: renderer, timeout: timeout}
}

// Get returns the snapshot for the request path, rendering and caching it on
// a miss. A render exceeding the time box is abandoned.
func (s *SSRController) Get(ctx *gin.Context) {
	path := ctx.Param("path")

	if html, ok := s.cache.Get(ctx.Request.Context(), path); ok {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	renderCtx, cancel := context.WithTimeout(ctx.Request.Context(), s.timeout)
	defer cancel()

	html, err := s.renderer.Render(renderCtx, path)
	if err != nil {
		utils.Sugar.Warnf("ssr render failed path=%s err=%v", path, err)
		utils.Error(ctx, http.StatusBadGateway, 50280, "render failed")
		return
	}

	s.cache.Set(ctx.Request.Context(), path, html)
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Purge drops every cached snapshot. The next crawl re-renders on demand.
func (s *SSRController) Purge(ctx *gin.Context) {
	if err := s.cache.Purge(ctx.Request.Context()); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to purge snapshots")
		return
	}
	utils.Success(ctx, nil)
}
