package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devlog/middleware"
	"devlog/models"
	"devlog/search"
)

// stubIndex returns a fixed slug list for any query.
type stubIndex struct {
	slugs []string
}

func (s stubIndex) EnsureIndex(ctx context.Context) error                  { return nil }
func (s stubIndex) Exists(ctx context.Context, slug string) (bool, error)  { return false, nil }
func (s stubIndex) Create(ctx context.Context, slug string, doc search.Document) error {
	return nil
}
func (s stubIndex) Update(ctx context.Context, slug string, fields map[string]interface{}) error {
	return nil
}
func (s stubIndex) Delete(ctx context.Context, slug string) error { return nil }
func (s stubIndex) Search(ctx context.Context, query string, authed bool) ([]string, error) {
	return s.slugs, nil
}

func newPublicAPI(t *testing.T, index search.Index) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{}, &models.Post{},
		&models.PostImage{}, &models.PostVideo{}, &models.PostThumbnail{},
	))

	pc := NewPostController(db, index)

	r := gin.New()
	public := r.Group("/api/v1")
	public.Use(middleware.AuthOptional())
	public.GET("/posts", pc.List)
	public.GET("/posts/:slug", pc.Get)
	return r, db
}

func createPost(t *testing.T, db *gorm.DB, slug string, level models.AccessLevel, published bool) {
	t.Helper()
	post := models.Post{Slug: slug, Title: slug, AccessLevel: level}
	if published {
		content := "body of " + slug
		post.Content = &content
	}
	require.NoError(t, db.Create(&post).Error)
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListRejectsBadInput(t *testing.T) {
	r, _ := newPublicAPI(t, stubIndex{})

	cases := []string{
		"/api/v1/posts?before=post-aa&after=post-bb",
		"/api/v1/posts?before=Not%20A%20Slug",
		"/api/v1/posts?after=x",
		"/api/v1/posts?query=go&after=post-aa",
		"/api/v1/posts?query=go&category=tech",
	}
	for _, path := range cases {
		w := doGet(r, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestListReturnsVisiblePosts(t *testing.T) {
	r, db := newPublicAPI(t, stubIndex{})
	createPost(t, db, "public-post", models.AccessPublic, true)
	createPost(t, db, "private-post", models.AccessPrivate, true)
	createPost(t, db, "draft-post", models.AccessPublic, false)

	w := doGet(r, "/api/v1/posts")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Posts []struct {
				Slug string `json:"slug"`
			} `json:"posts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Posts, 1)
	assert.Equal(t, "public-post", resp.Data.Posts[0].Slug)
}

func TestListUnknownCategory(t *testing.T) {
	r, _ := newPublicAPI(t, stubIndex{})

	w := doGet(r, "/api/v1/posts?category=ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchHydratesAndFilters(t *testing.T) {
	// The index still knows a deleted slug and a private one; hydration
	// drops both.
	r, db := newPublicAPI(t, stubIndex{slugs: []string{"match-post", "ghost-post", "private-post"}})
	createPost(t, db, "match-post", models.AccessPublic, true)
	createPost(t, db, "private-post", models.AccessPrivate, true)

	w := doGet(r, "/api/v1/posts?query=match")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Posts []struct {
				Slug string `json:"slug"`
			} `json:"posts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Posts, 1)
	assert.Equal(t, "match-post", resp.Data.Posts[0].Slug)
}

func TestGetDetailVisibility(t *testing.T) {
	r, db := newPublicAPI(t, stubIndex{})
	createPost(t, db, "public-post", models.AccessPublic, true)
	createPost(t, db, "unlisted-post", models.AccessUnlisted, true)
	createPost(t, db, "private-post", models.AccessPrivate, true)
	createPost(t, db, "draft-post", models.AccessPublic, false)

	assert.Equal(t, http.StatusOK, doGet(r, "/api/v1/posts/public-post").Code)

	// Unlisted is reachable by direct link.
	assert.Equal(t, http.StatusOK, doGet(r, "/api/v1/posts/unlisted-post").Code)

	// Private and draft posts are indistinguishable from missing ones.
	assert.Equal(t, http.StatusNotFound, doGet(r, "/api/v1/posts/private-post").Code)
	assert.Equal(t, http.StatusNotFound, doGet(r, "/api/v1/posts/draft-post").Code)
	assert.Equal(t, http.StatusNotFound, doGet(r, "/api/v1/posts/ghost-post").Code)

	assert.Equal(t, http.StatusBadRequest, doGet(r, "/api/v1/posts/Bad_Slug").Code)
}
