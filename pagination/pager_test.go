package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devlog/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{}, &models.Post{},
		&models.PostImage{}, &models.PostVideo{}, &models.PostThumbnail{},
	))
	return db
}

func seedPost(t *testing.T, db *gorm.DB, slug string, level models.AccessLevel, categoryID *uint, createdAt time.Time, published bool) {
	t.Helper()
	post := models.Post{
		Slug:        slug,
		Title:       slug,
		AccessLevel: level,
		CategoryID:  categoryID,
		CreatedAt:   createdAt,
	}
	if published {
		content := "content of " + slug
		post.Content = &content
	}
	require.NoError(t, db.Create(&post).Error)
}

// seedTimeline creates n public published posts; post-01 is the oldest.
func seedTimeline(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		seedPost(t, db, fmt.Sprintf("post-%02d", i), models.AccessPublic, nil, base.Add(time.Duration(i)*time.Hour), true)
	}
}

func TestListFirstPage(t *testing.T) {
	db := newTestDB(t)
	seedTimeline(t, db, 25)
	pager := New(db)

	page, err := pager.List(Query{})
	require.NoError(t, err)

	require.Len(t, page.Posts, PageSize)
	assert.Equal(t, "post-25", page.Posts[0].Slug)
	assert.Equal(t, "post-06", page.Posts[19].Slug)
	assert.False(t, page.HasBefore)
	assert.True(t, page.HasAfter)
}

func TestListAfterCursor(t *testing.T) {
	db := newTestDB(t)
	seedTimeline(t, db, 25)
	pager := New(db)

	// After the 20th-newest post: the remaining 5 oldest.
	page, err := pager.List(Query{After: "post-06"})
	require.NoError(t, err)

	require.Len(t, page.Posts, 5)
	assert.Equal(t, "post-05", page.Posts[0].Slug)
	assert.Equal(t, "post-01", page.Posts[4].Slug)
	assert.True(t, page.HasBefore)
	assert.False(t, page.HasAfter)
}

func TestListBeforeCursor(t *testing.T) {
	db := newTestDB(t)
	seedTimeline(t, db, 25)
	pager := New(db)

	page, err := pager.List(Query{Before: "post-05"})
	require.NoError(t, err)

	// The 20 posts newer than post-05, still newest first.
	require.Len(t, page.Posts, PageSize)
	assert.Equal(t, "post-25", page.Posts[0].Slug)
	assert.Equal(t, "post-06", page.Posts[19].Slug)
	assert.False(t, page.HasBefore)
	assert.True(t, page.HasAfter)
}

func TestListBeforeNewestIsEmpty(t *testing.T) {
	db := newTestDB(t)
	seedTimeline(t, db, 3)
	pager := New(db)

	page, err := pager.List(Query{Before: "post-03"})
	require.NoError(t, err)

	assert.Empty(t, page.Posts)
	assert.False(t, page.HasBefore)
	assert.True(t, page.HasAfter)
}

func TestListAfterOldestIsEmpty(t *testing.T) {
	db := newTestDB(t)
	seedTimeline(t, db, 3)
	pager := New(db)

	page, err := pager.List(Query{After: "post-01"})
	require.NoError(t, err)

	assert.Empty(t, page.Posts)
	assert.True(t, page.HasBefore)
	assert.False(t, page.HasAfter)
}

func TestListEmptyStore(t *testing.T) {
	db := newTestDB(t)
	pager := New(db)

	page, err := pager.List(Query{})
	require.NoError(t, err)

	assert.Empty(t, page.Posts)
	assert.False(t, page.HasBefore)
	assert.False(t, page.HasAfter)
}

func TestListErrors(t *testing.T) {
	db := newTestDB(t)
	seedTimeline(t, db, 2)
	pager := New(db)

	_, err := pager.List(Query{Before: "post-01", After: "post-02"})
	assert.ErrorIs(t, err, ErrBothCursors)

	_, err = pager.List(Query{Category: "nope"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = pager.List(Query{After: "ghost-post"})
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestListCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	category := models.Category{Name: "golang"}
	require.NoError(t, db.Create(&category).Error)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(t, db, "in-cat-post", models.AccessPublic, &category.ID, base.Add(time.Hour), true)
	seedPost(t, db, "no-cat-post", models.AccessPublic, nil, base.Add(2*time.Hour), true)

	pager := New(db)
	page, err := pager.List(Query{Category: "golang"})
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "in-cat-post", page.Posts[0].Slug)
	require.NotNil(t, page.Posts[0].Category)
	assert.Equal(t, "golang", page.Posts[0].Category.Name)
}

func TestListVisibility(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(t, db, "public-post", models.AccessPublic, nil, base.Add(time.Hour), true)
	seedPost(t, db, "unlisted-post", models.AccessUnlisted, nil, base.Add(2*time.Hour), true)
	seedPost(t, db, "private-post", models.AccessPrivate, nil, base.Add(3*time.Hour), true)
	seedPost(t, db, "draft-post", models.AccessPublic, nil, base.Add(4*time.Hour), false)

	pager := New(db)

	anon, err := pager.List(Query{})
	require.NoError(t, err)
	require.Len(t, anon.Posts, 1)
	assert.Equal(t, "public-post", anon.Posts[0].Slug)

	admin, err := pager.List(Query{Authed: true})
	require.NoError(t, err)
	// Drafts stay hidden from listings even for admins; the admin listing is
	// a separate path.
	require.Len(t, admin.Posts, 3)
}

func TestListAnchorOutsideScopeDoesNotLeak(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(t, db, "public-post", models.AccessPublic, nil, base.Add(time.Hour), true)
	seedPost(t, db, "private-post", models.AccessPrivate, nil, base.Add(2*time.Hour), true)

	pager := New(db)

	// Using a private post as cursor anonymously is indistinguishable from a
	// missing post.
	_, err := pager.List(Query{After: "private-post"})
	assert.ErrorIs(t, err, ErrAnchorNotFound)

	_, err = pager.List(Query{After: "private-post", Authed: true})
	assert.NoError(t, err)
}
