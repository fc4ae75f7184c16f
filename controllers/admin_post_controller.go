package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devlog/config"
	"devlog/markdown"
	"devlog/models"
	"devlog/search"
	"devlog/storage"
	"devlog/utils"
)

// AdminPostController manages the post lifecycle: metadata, content, deletion
// and bulk regeneration.
type AdminPostController struct {
	db       *gorm.DB
	pipeline *markdown.Pipeline
	syncer   *search.Syncer
	store    storage.Store
}

func NewAdminPostController(db *gorm.DB, pipeline *markdown.Pipeline, syncer *search.Syncer, store storage.Store) *AdminPostController {
	return &AdminPostController{db: db, pipeline: pipeline, syncer: syncer, store: store}
}

// List returns the 20 most recently modified posts, drafts included.
func (a *AdminPostController) List(ctx *gin.Context) {
	var posts []models.Post
	err := a.db.Preload("Category").Preload("Thumbnail").
		Order("modified_at DESC").
		Limit(20).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{"posts": posts})
}

// Create adds a metadata-only draft. Content is attached later through the
// content endpoint.
func (a *AdminPostController) Create(ctx *gin.Context) {
	var req struct {
		Slug        string  `json:"slug" binding:"required"`
		Title       string  `json:"title" binding:"required,max=128"`
		AccessLevel string  `json:"accessLevel" binding:"required"`
		Category    *string `json:"category"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}
	if !utils.ValidSlug(req.Slug) {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid slug")
		return
	}
	if !models.ValidAccessLevel(req.AccessLevel) {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid access level")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40053, "title cannot be empty")
		return
	}

	post := models.Post{
		Slug:        req.Slug,
		Title:       title,
		AccessLevel: models.AccessLevel(req.AccessLevel),
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if req.Category != nil && *req.Category != "" {
			var category models.Category
			if err := tx.Where("name = ?", *req.Category).First(&category).Error; err != nil {
				return err
			}
			post.CategoryID = &category.ID
			post.Category = &category
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40450, "category not found")
		case isDuplicateErr(err):
			utils.Error(ctx, http.StatusConflict, 40950, "slug already taken")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create post")
		}
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// Update changes post metadata: title, access level, category and slug. A
// slug rename moves the search document since the slug is its id.
func (a *AdminPostController) Update(ctx *gin.Context) {
	var req struct {
		Slug        *string `json:"slug"`
		Title       *string `json:"title" binding:"omitempty,max=128"`
		AccessLevel *string `json:"accessLevel"`
		Category    *string `json:"category"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid request payload")
		return
	}
	if req.Slug != nil && !utils.ValidSlug(*req.Slug) {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid slug")
		return
	}
	if req.AccessLevel != nil && !models.ValidAccessLevel(*req.AccessLevel) {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid access level")
		return
	}

	oldSlug := ctx.Param("slug")
	var post models.Post

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Category").Preload("Images").Preload("Videos").
			Where("slug = ?", oldSlug).First(&post).Error; err != nil {
			return err
		}

		if req.Slug != nil {
			post.Slug = *req.Slug
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return errEmptyTitle
			}
			post.Title = title
		}
		if req.AccessLevel != nil {
			post.AccessLevel = models.AccessLevel(*req.AccessLevel)
		}
		if req.Category != nil {
			if *req.Category == "" {
				post.CategoryID = nil
				post.Category = nil
			} else {
				var category models.Category
				if err := tx.Where("name = ?", *req.Category).First(&category).Error; err != nil {
					return err
				}
				post.CategoryID = &category.ID
				post.Category = &category
			}
		}
		return tx.Omit("Category", "Images", "Videos").Save(&post).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errEmptyTitle):
			utils.Error(ctx, http.StatusBadRequest, 40053, "title cannot be empty")
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40451, "post not found")
		case isDuplicateErr(err):
			utils.Error(ctx, http.StatusConflict, 40950, "slug already taken")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to update post")
		}
		return
	}

	a.pushIndex(ctx, oldSlug, &post)
	utils.Success(ctx, gin.H{"post": post})
}

// UpdateContent attaches raw markup to a post. The content pipeline derives
// the preview, index text and HTML, and all four fields persist atomically; a
// render failure persists nothing.
func (a *AdminPostController) UpdateContent(ctx *gin.Context) {
	maxBytes := int64(config.Get().ContentMaxKiB) * 1024
	raw, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxBytes+1))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "failed to read content")
		return
	}
	if int64(len(raw)) > maxBytes {
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41350, "content too large")
		return
	}

	slug := ctx.Param("slug")
	var post models.Post
	if err := a.db.Preload("Category").Preload("Images").Preload("Videos").
		Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40451, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load post")
		return
	}

	content := string(raw)
	generated, err := a.pipeline.Generate(&post, content)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40056, "failed to render content")
		return
	}

	post.Content = &content
	post.ContentPreview = generated.Preview
	post.HTMLContent = generated.HTML

	err = a.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"content":         post.Content,
		"content_preview": post.ContentPreview,
		"html_content":    post.HTMLContent,
	}).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to persist content")
		return
	}

	a.pushIndex(ctx, post.Slug, &post)
	utils.Success(ctx, gin.H{"post": post})
}

// Delete removes a post and its media rows in one transaction, then cleans up
// blobs and the search document best-effort.
func (a *AdminPostController) Delete(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var keys []string
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Preload("Images").Preload("Videos").Preload("Thumbnail").
			Where("slug = ?", slug).First(&post).Error; err != nil {
			return err
		}

		for _, img := range post.Images {
			keys = append(keys, storage.AttachmentKey(post.ID, img.UUID))
		}
		for _, vid := range post.Videos {
			keys = append(keys, storage.AttachmentKey(post.ID, vid.UUID))
		}
		if post.Thumbnail != nil {
			keys = append(keys, storage.ThumbnailKey(post.ID))
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostVideo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostThumbnail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40451, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to delete post")
		return
	}

	if len(keys) > 0 {
		if err := a.store.DeleteMany(ctx.Request.Context(), keys); err != nil {
			utils.Sugar.Warnf("blob cleanup failed for post %s: %v", slug, err)
		}
	}
	if err := a.syncer.PushDelete(ctx.Request.Context(), slug); err != nil {
		utils.Sugar.Warnf("search delete push failed for post %s: %v", slug, err)
	}

	utils.Success(ctx, nil)
}

// Regenerate re-runs the content pipeline over every non-draft post. It is
// the recovery path after renderer or sanitizer changes, and shares the code
// path of a single content update.
func (a *AdminPostController) Regenerate(ctx *gin.Context) {
	var posts []models.Post
	err := a.db.Scopes(models.ScopePublished).
		Preload("Category").Preload("Images").Preload("Videos").
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to load posts")
		return
	}

	regenerated := 0
	for i := range posts {
		post := &posts[i]
		generated, err := a.pipeline.Generate(post, *post.Content)
		if err != nil {
			utils.Sugar.Warnf("regeneration failed for post %s: %v", post.Slug, err)
			continue
		}

		err = a.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
			"content_preview": generated.Preview,
			"html_content":    generated.HTML,
		}).Error
		if err != nil {
			utils.Sugar.Warnf("regeneration persist failed for post %s: %v", post.Slug, err)
			continue
		}

		a.pushIndex(ctx, post.Slug, post)
		regenerated++
	}

	utils.Success(ctx, gin.H{"regenerated": regenerated, "total": len(posts)})
}

// pushIndex eagerly syncs the search document after a mutation. Failures are
// logged, never surfaced: the periodic sweep self-heals a missed push.
func (a *AdminPostController) pushIndex(ctx *gin.Context, oldSlug string, post *models.Post) {
	var err error
	if oldSlug != post.Slug {
		err = a.syncer.PushRename(ctx.Request.Context(), oldSlug, post)
	} else {
		err = a.syncer.PushUpsert(ctx.Request.Context(), post)
	}
	if err != nil {
		utils.Sugar.Warnf("search push failed for post %s: %v", post.Slug, err)
	}
}

var errEmptyTitle = errors.New("title cannot be empty")
