package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devlog/models"
	"devlog/pagination"
	"devlog/search"
	"devlog/utils"
)

// PostController serves the public post listing, search and detail paths.
type PostController struct {
	db    *gorm.DB
	pager *pagination.Pager
	index search.Index
}

func NewPostController(db *gorm.DB, index search.Index) *PostController {
	return &PostController{db: db, pager: pagination.New(db), index: index}
}

// List returns one page of visible posts, either by cursor pagination or by
// full-text search. The query parameter is mutually exclusive with cursors.
func (p *PostController) List(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	before := strings.TrimSpace(ctx.Query("before"))
	after := strings.TrimSpace(ctx.Query("after"))
	query := strings.TrimSpace(ctx.Query("query"))

	if len(category) > 32 {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid category")
		return
	}
	if before != "" && !utils.ValidSlug(before) {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid before cursor")
		return
	}
	if after != "" && !utils.ValidSlug(after) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid after cursor")
		return
	}
	if query != "" && (before != "" || after != "" || category != "") {
		utils.Error(ctx, http.StatusBadRequest, 40043, "query cannot be combined with category or cursors")
		return
	}

	if query != "" {
		p.searchPosts(ctx, query)
		return
	}

	page, err := p.pager.List(pagination.Query{
		Category: category,
		Before:   before,
		After:    after,
		Authed:   isAuthed(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, pagination.ErrBothCursors):
			utils.Error(ctx, http.StatusBadRequest, 40044, "before and after cannot coexist")
		case errors.Is(err, pagination.ErrCategoryNotFound):
			utils.Error(ctx, http.StatusNotFound, 40440, "category not found")
		case errors.Is(err, pagination.ErrAnchorNotFound):
			utils.Error(ctx, http.StatusNotFound, 40441, "cursor post not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list posts")
		}
		return
	}
	utils.Success(ctx, page)
}

// searchPosts resolves matching slugs from the full-text index and hydrates
// them from the post store under the same visibility rules as listing. A slug
// the index still knows but the store no longer has is silently dropped.
func (p *PostController) searchPosts(ctx *gin.Context, query string) {
	slugs, err := p.index.Search(ctx.Request.Context(), query, isAuthed(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "search failed")
		return
	}

	posts := []models.Post{}
	if len(slugs) > 0 {
		err = p.db.
			Scopes(models.ScopePublished, models.ScopeListable(isAuthed(ctx))).
			Preload("Category").
			Where("slug IN ?", slugs).
			Order("created_at DESC").
			Find(&posts).Error
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "search failed")
			return
		}
	}

	utils.Success(ctx, pagination.Page{Posts: posts})
}

// Get returns a single post by slug with its category, attachments ordered by
// index, and thumbnail. Drafts and private posts are not visible without a
// session; unlisted posts are reachable here by direct link.
func (p *PostController) Get(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if !utils.ValidSlug(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid slug")
		return
	}

	authed := isAuthed(ctx)

	var post models.Post
	query := p.db.Scopes(models.ScopeViewable(authed)).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("`index` ASC") }).
		Preload("Videos", func(db *gorm.DB) *gorm.DB { return db.Order("`index` ASC") }).
		Preload("Thumbnail")
	if !authed {
		query = query.Scopes(models.ScopePublished)
	}

	if err := query.Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40442, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}
