package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devlog/models"
)

func newCategoryAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
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

	cc := NewCategoryController(db)

	r := gin.New()
	admin := r.Group("/api/v1/admin")
	admin.GET("/categories", cc.List)
	admin.POST("/categories", cc.Create)
	admin.DELETE("/categories/:name", cc.Delete)
	return r, db
}

func doDelete(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestDeleteCategoryDetachesPosts(t *testing.T) {
	r, db := newCategoryAPI(t)

	category := models.Category{Name: "golang"}
	require.NoError(t, db.Create(&category).Error)

	content := "body"
	for _, slug := range []string{"first-post", "second-post"} {
		require.NoError(t, db.Create(&models.Post{
			Slug:        slug,
			Title:       slug,
			AccessLevel: models.AccessPublic,
			Content:     &content,
			CategoryID:  &category.ID,
		}).Error)
	}

	w := doDelete(r, "/api/v1/admin/categories/golang")
	require.Equal(t, http.StatusOK, w.Code)

	// The category is gone, the posts are not.
	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Zero(t, categories)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.Nil(t, post.CategoryID, "post %s should be detached", post.Slug)
	}
}

func TestDeleteCategoryNotFound(t *testing.T) {
	r, _ := newCategoryAPI(t)

	w := doDelete(r, "/api/v1/admin/categories/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
