package controllers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"devlog/models"
	"devlog/storage"
	"devlog/utils"
)

// MediaController manages post attachments: bulk image/video upload,
// attachment deletion and the replaceable thumbnail.
type MediaController struct {
	db       *gorm.DB
	store    storage.Store
	analyzer storage.Analyzer
}

func NewMediaController(db *gorm.DB, store storage.Store, analyzer storage.Analyzer) *MediaController {
	return &MediaController{db: db, store: store, analyzer: analyzer}
}

type uploadedBlob struct {
	uuid string
	url  string
	meta storage.ImageMeta
}

// UploadImages accepts a multipart batch of images and uploads them
// concurrently. The batch is all-or-nothing: any failure aborts the request
// and best-effort deletes what already reached the store.
func (m *MediaController) UploadImages(ctx *gin.Context) {
	m.uploadBatch(ctx, true)
}

// UploadVideos is the video counterpart of UploadImages. Videos are stored
// as-is; no metadata is extracted.
func (m *MediaController) UploadVideos(ctx *gin.Context) {
	m.uploadBatch(ctx, false)
}

func (m *MediaController) uploadBatch(ctx *gin.Context, isImage bool) {
	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40061, "no files provided")
		return
	}

	var post models.Post
	if err := m.db.Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load post")
		return
	}

	blobs := make([]*uploadedBlob, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file *multipart.FileHeader) {
			defer wg.Done()
			blobs[i], errs[i] = m.uploadOne(ctx, post.ID, file, isImage)
		}(i, file)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			m.discardBlobs(ctx, post.ID, blobs)
			utils.Sugar.Warnf("batch upload failed for post %s: %v", post.Slug, err)
			utils.Error(ctx, http.StatusInternalServerError, 50061, "upload failed")
			return
		}
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, post.ID).Error; err != nil {
			return err
		}

		if isImage {
			base := post.ImageCount
			for i, blob := range blobs {
				row := models.PostImage{
					PostID: post.ID,
					Index:  base + i,
					UUID:   blob.uuid,
					URL:    blob.url,
					Width:  blob.meta.Width,
					Height: blob.meta.Height,
					Hash:   blob.meta.Hash,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			return tx.Model(&post).Update("image_count", base+len(blobs)).Error
		}

		base := post.VideoCount
		for i, blob := range blobs {
			row := models.PostVideo{
				PostID: post.ID,
				Index:  base + i,
				UUID:   blob.uuid,
				URL:    blob.url,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Model(&post).Update("video_count", base+len(blobs)).Error
	})
	if err != nil {
		m.discardBlobs(ctx, post.ID, blobs)
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to persist attachments")
		return
	}

	if isImage {
		var images []models.PostImage
		if err := m.db.Where("post_id = ?", post.ID).Order("`index` ASC").Find(&images).Error; err == nil {
			utils.Success(ctx, gin.H{"images": images})
			return
		}
	} else {
		var videos []models.PostVideo
		if err := m.db.Where("post_id = ?", post.ID).Order("`index` ASC").Find(&videos).Error; err == nil {
			utils.Success(ctx, gin.H{"videos": videos})
			return
		}
	}
	utils.Success(ctx, nil)
}

func (m *MediaController) uploadOne(ctx *gin.Context, postID uint, file *multipart.FileHeader, isImage bool) (*uploadedBlob, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	blob := &uploadedBlob{uuid: uuid.NewString()}
	if isImage {
		meta, err := m.analyzer.Analyze(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		blob.meta = meta
	}

	url, err := m.store.Put(ctx.Request.Context(),
		storage.AttachmentKey(postID, blob.uuid),
		bytes.NewReader(data),
		file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	blob.url = url
	return blob, nil
}

// discardBlobs best-effort deletes whatever part of an aborted batch already
// reached the store. An orphaned blob is an accepted failure mode.
func (m *MediaController) discardBlobs(ctx *gin.Context, postID uint, blobs []*uploadedBlob) {
	var keys []string
	for _, blob := range blobs {
		if blob != nil && blob.url != "" {
			keys = append(keys, storage.AttachmentKey(postID, blob.uuid))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := m.store.DeleteMany(ctx.Request.Context(), keys); err != nil {
		utils.Sugar.Warnf("aborted batch cleanup failed: %v", err)
	}
}

// DeleteImage removes one image attachment row; the blob delete afterwards is
// best-effort. The attachment's index is never reassigned.
func (m *MediaController) DeleteImage(ctx *gin.Context) {
	m.deleteAttachment(ctx, true)
}

// DeleteVideo is the video counterpart of DeleteImage.
func (m *MediaController) DeleteVideo(ctx *gin.Context) {
	m.deleteAttachment(ctx, false)
}

func (m *MediaController) deleteAttachment(ctx *gin.Context, isImage bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid attachment index")
		return
	}

	var key string
	err = m.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
			return err
		}

		if isImage {
			var image models.PostImage
			if err := tx.Where("post_id = ? AND `index` = ?", post.ID, index).First(&image).Error; err != nil {
				return err
			}
			key = storage.AttachmentKey(post.ID, image.UUID)
			return tx.Delete(&image).Error
		}

		var video models.PostVideo
		if err := tx.Where("post_id = ? AND `index` = ?", post.ID, index).First(&video).Error; err != nil {
			return err
		}
		key = storage.AttachmentKey(post.ID, video.UUID)
		return tx.Delete(&video).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40461, "attachment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete attachment")
		return
	}

	if err := m.store.DeleteMany(ctx.Request.Context(), []string{key}); err != nil {
		utils.Sugar.Warnf("blob delete failed key=%s err=%v", key, err)
	}
	utils.Success(ctx, nil)
}

// ReplaceThumbnail uploads a new thumbnail to the post's reserved storage key
// and swaps the row. The prior blob lives at the same key and is overwritten
// by the put.
func (m *MediaController) ReplaceThumbnail(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "file is required")
		return
	}

	var post models.Post
	if err := m.db.Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load post")
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, "failed to read file")
		return
	}

	meta, err := m.analyzer.Analyze(bytes.NewReader(data))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, "unsupported image format")
		return
	}

	url, err := m.store.Put(ctx.Request.Context(),
		storage.ThumbnailKey(post.ID),
		bytes.NewReader(data),
		file.Header.Get("Content-Type"))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "upload failed")
		return
	}

	thumbnail := models.PostThumbnail{
		PostID: post.ID,
		Width:  meta.Width,
		Height: meta.Height,
		Hash:   meta.Hash,
		URL:    url,
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostThumbnail{}).Error; err != nil {
			return err
		}
		return tx.Create(&thumbnail).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to persist thumbnail")
		return
	}

	utils.Success(ctx, gin.H{"thumbnail": thumbnail})
}
