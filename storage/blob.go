package storage

import (
	"context"
	"fmt"
	"io"
)

// Store is the blob store media endpoints write to. Deletion is best-effort
// everywhere it is used: an orphaned blob is an accepted failure mode and
// must never block or roll back a record mutation.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteMany(ctx context.Context, keys []string) error
}

const thumbnailID = "__thumbnail"

// AttachmentKey is the storage key of a media attachment blob.
func AttachmentKey(postID uint, attachmentID string) string {
	return fmt.Sprintf("%d/%s", postID, attachmentID)
}

// ThumbnailKey is the reserved storage key of a post's thumbnail blob.
func ThumbnailKey(postID uint) string {
	return fmt.Sprintf("%d/%s", postID, thumbnailID)
}
