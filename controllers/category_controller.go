package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devlog/models"
	"devlog/utils"
)

// CategoryController serves the public category listing and the admin CRUD.
type CategoryController struct {
	db *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// List returns all categories ordered by name.
func (c *CategoryController) List(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.Order("name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"categories": categories})
}

// Create adds a new category. Names are unique.
func (c *CategoryController) Create(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=32"`
		Description string `json:"description" binding:"max=256"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "name cannot be empty")
		return
	}

	category := models.Category{Name: name, Description: req.Description}
	if err := c.db.Create(&category).Error; err != nil {
		if isDuplicateErr(err) {
			utils.Error(ctx, http.StatusConflict, 40930, "category already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create category")
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// Update renames a category or changes its description.
func (c *CategoryController) Update(ctx *gin.Context) {
	var req struct {
		Name        *string `json:"name" binding:"omitempty,max=32"`
		Description *string `json:"description" binding:"omitempty,max=256"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	var category models.Category
	if err := c.db.Where("name = ?", ctx.Param("name")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load category")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "name cannot be empty")
			return
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := c.db.Save(&category).Error; err != nil {
		if isDuplicateErr(err) {
			utils.Error(ctx, http.StatusConflict, 40930, "category already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to update category")
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// Delete removes a category and detaches its posts. Posts survive with no
// category; deletion never cascades to them.
func (c *CategoryController) Delete(ctx *gin.Context) {
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("name = ?", ctx.Param("name")).First(&category).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to delete category")
		return
	}
	utils.Success(ctx, nil)
}
