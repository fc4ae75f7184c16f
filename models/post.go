package models

import "time"

// AccessLevel controls who may see a post.
type AccessLevel string

const (
	AccessPublic   AccessLevel = "public"
	AccessUnlisted AccessLevel = "unlisted"
	AccessPrivate  AccessLevel = "private"
)

// ValidAccessLevel reports whether s is one of the known access levels.
func ValidAccessLevel(s string) bool {
	switch AccessLevel(s) {
	case AccessPublic, AccessUnlisted, AccessPrivate:
		return true
	}
	return false
}

// Post is a blog entry. Content is nil until the admin attaches markup to it;
// such a post is a draft and never appears on public paths.
type Post struct {
	ID             uint        `gorm:"primaryKey" json:"-"`
	Slug           string      `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	AccessLevel    AccessLevel `gorm:"size:16;not null;default:'private'" json:"accessLevel"`
	Title          string      `gorm:"size:128;not null" json:"title"`
	Content        *string     `gorm:"type:mediumtext" json:"content,omitempty"`
	ContentPreview string      `gorm:"size:256" json:"contentPreview"`
	HTMLContent    string      `gorm:"type:mediumtext" json:"htmlContent,omitempty"`

	CategoryID *uint     `gorm:"index" json:"-"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`

	Images    []PostImage    `gorm:"constraint:OnDelete:CASCADE;" json:"images,omitempty"`
	Videos    []PostVideo    `gorm:"constraint:OnDelete:CASCADE;" json:"videos,omitempty"`
	Thumbnail *PostThumbnail `gorm:"constraint:OnDelete:CASCADE;" json:"thumbnail,omitempty"`

	// Monotonic counters backing attachment index assignment. Never
	// decremented, so an index is never reused after a deletion.
	ImageCount int `gorm:"not null;default:0" json:"-"`
	VideoCount int `gorm:"not null;default:0" json:"-"`

	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	ModifiedAt time.Time `gorm:"index;autoUpdateTime" json:"modifiedAt"`
}

// IsDraft reports whether the post has no content attached yet.
func (p *Post) IsDraft() bool {
	return p.Content == nil
}

// PostImage is an image attachment uploaded to the blob store.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"index;not null;uniqueIndex:idx_post_image_index" json:"-"`
	Index     int       `gorm:"not null;uniqueIndex:idx_post_image_index" json:"index"`
	UUID      string    `gorm:"size:64;not null" json:"-"`
	Width     int       `gorm:"not null" json:"width"`
	Height    int       `gorm:"not null" json:"height"`
	Hash      string    `gorm:"size:64" json:"hash"` // blurhash, opaque to the backend
	URL       string    `gorm:"size:256;uniqueIndex;not null" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostVideo is a video attachment uploaded to the blob store.
type PostVideo struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"index;not null;uniqueIndex:idx_post_video_index" json:"-"`
	Index     int       `gorm:"not null;uniqueIndex:idx_post_video_index" json:"index"`
	UUID      string    `gorm:"size:64;not null" json:"-"`
	URL       string    `gorm:"size:256;uniqueIndex;not null" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostThumbnail is the single replaceable thumbnail of a post. Replacing it
// deletes the previous blob and row.
type PostThumbnail struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	PostID     uint      `gorm:"uniqueIndex;not null" json:"-"`
	Width      int       `gorm:"not null" json:"width"`
	Height     int       `gorm:"not null" json:"height"`
	Hash       string    `gorm:"size:64" json:"hash"`
	URL        string    `gorm:"size:256;uniqueIndex;not null" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modifiedAt"`
}
