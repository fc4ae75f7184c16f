package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func scopeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}, &Post{}, &PostImage{}, &PostVideo{}, &PostThumbnail{}))

	content := "body"
	for _, p := range []Post{
		{Slug: "public-post", Title: "t", AccessLevel: AccessPublic, Content: &content},
		{Slug: "unlisted-post", Title: "t", AccessLevel: AccessUnlisted, Content: &content},
		{Slug: "private-post", Title: "t", AccessLevel: AccessPrivate, Content: &content},
		{Slug: "draft-post", Title: "t", AccessLevel: AccessPublic},
	} {
		require.NoError(t, db.Create(&p).Error)
	}
	return db
}

func slugsOf(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var slugs []string
	require.NoError(t, db.Model(&Post{}).Order("slug").Pluck("slug", &slugs).Error)
	return slugs
}

func TestScopeListable(t *testing.T) {
	db := scopeTestDB(t)

	anon := slugsOf(t, db.Scopes(ScopeListable(false)))
	assert.Equal(t, []string{"draft-post", "public-post"}, anon)

	admin := slugsOf(t, db.Scopes(ScopeListable(true)))
	assert.Len(t, admin, 4)
}

func TestScopeViewable(t *testing.T) {
	db := scopeTestDB(t)

	anon := slugsOf(t, db.Scopes(ScopeViewable(false)))
	assert.NotContains(t, anon, "private-post")
	assert.Contains(t, anon, "unlisted-post")

	admin := slugsOf(t, db.Scopes(ScopeViewable(true)))
	assert.Contains(t, admin, "private-post")
}

func TestScopePublished(t *testing.T) {
	db := scopeTestDB(t)

	published := slugsOf(t, db.Scopes(ScopePublished))
	assert.NotContains(t, published, "draft-post")
	assert.Len(t, published, 3)
}

func TestValidAccessLevel(t *testing.T) {
	assert.True(t, ValidAccessLevel("public"))
	assert.True(t, ValidAccessLevel("unlisted"))
	assert.True(t, ValidAccessLevel("private"))
	assert.False(t, ValidAccessLevel(""))
	assert.False(t, ValidAccessLevel("Public"))
	assert.False(t, ValidAccessLevel("hidden"))
}

func TestIsDraft(t *testing.T) {
	content := ""
	assert.True(t, (&Post{}).IsDraft())
	assert.False(t, (&Post{Content: &content}).IsDraft())
}
