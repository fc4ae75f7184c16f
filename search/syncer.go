package search

import (
	"context"
	"time"

	"gorm.io/gorm"

	"devlog/markdown"
	"devlog/models"
	"devlog/utils"
)

// Syncer keeps the full-text index eventually consistent with the post
// store. Mutations push eagerly; a periodic sweep backfills whatever the
// eager path missed. Both are idempotent (existence-checked), so a failed
// push or an overlapping sweep costs nothing but a retry.
type Syncer struct {
	db       *gorm.DB
	index    Index
	pipeline *markdown.Pipeline
	interval time.Duration

	done chan struct{}
}

func NewSyncer(db *gorm.DB, index Index, pipeline *markdown.Pipeline, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Syncer{
		db:       db,
		index:    index,
		pipeline: pipeline,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the periodic backfill sweep. Call Stop to end it.
func (s *Syncer) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(context.Background()); err != nil {
					utils.Sugar.Warnf("search sweep failed: %v", err)
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Stop ends the periodic sweep. A sweep already in flight finishes on its
// own; the next tick simply never fires.
func (s *Syncer) Stop() {
	close(s.done)
}

// Sweep scans non-draft posts newest-first and creates index documents for
// the unindexed prefix. It stops at the first already-indexed post: once a
// post is indexed it stays indexed until deleted, and posts are synced in
// strict recency order, so the indexed set is a contiguous suffix.
func (s *Syncer) Sweep(ctx context.Context) error {
	var heads []models.Post
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Scopes(models.ScopePublished).
		Select("id", "slug").
		Order("created_at DESC").
		Find(&heads).Error
	if err != nil {
		return err
	}

	for _, head := range heads {
		indexed, err := s.index.Exists(ctx, head.Slug)
		if err != nil {
			return err
		}
		if indexed {
			break
		}

		var post models.Post
		err = s.db.WithContext(ctx).
			Scopes(models.ScopePublished).
			Preload("Category").
			Preload("Images").
			Preload("Videos").
			First(&post, head.ID).Error
		if err != nil {
			// Deleted between the two queries; nothing to index.
			continue
		}

		doc, err := s.document(&post)
		if err != nil {
			return err
		}
		if err := s.index.Create(ctx, post.Slug, doc); err != nil {
			return err
		}
		utils.Sugar.Infof("search sweep indexed post %s", post.Slug)
	}
	return nil
}

// PushUpsert eagerly syncs a created or updated post. Drafts are never
// indexed. Errors are returned for logging; callers should not fail the
// triggering write on them, the sweep self-heals missed syncs.
func (s *Syncer) PushUpsert(ctx context.Context, post *models.Post) error {
	if post.IsDraft() {
		return nil
	}

	indexed, err := s.index.Exists(ctx, post.Slug)
	if err != nil {
		return err
	}

	doc, err := s.document(post)
	if err != nil {
		return err
	}

	if !indexed {
		return s.index.Create(ctx, post.Slug, doc)
	}
	return s.index.Update(ctx, post.Slug, map[string]interface{}{
		"accessLevel": doc.AccessLevel,
		"category":    doc.Category,
		"title":       doc.Title,
		"content":     doc.Content,
	})
}

// PushDelete eagerly removes a post's index document.
func (s *Syncer) PushDelete(ctx context.Context, slug string) error {
	indexed, err := s.index.Exists(ctx, slug)
	if err != nil {
		return err
	}
	if !indexed {
		return nil
	}
	return s.index.Delete(ctx, slug)
}

// PushRename moves a document to a new slug: slugs are document ids, so a
// rename is delete-old plus create-new.
func (s *Syncer) PushRename(ctx context.Context, oldSlug string, post *models.Post) error {
	if err := s.PushDelete(ctx, oldSlug); err != nil {
		return err
	}
	return s.PushUpsert(ctx, post)
}

func (s *Syncer) document(post *models.Post) (Document, error) {
	generated, err := s.pipeline.Generate(post, *post.Content)
	if err != nil {
		return Document{}, err
	}
	category := ""
	if post.Category != nil {
		category = post.Category.Name
	}
	return Document{
		AccessLevel: string(post.AccessLevel),
		Category:    category,
		Title:       post.Title,
		Content:     generated.IndexText,
		CreatedAt:   post.CreatedAt,
	}, nil
}
