package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devlog/middleware"
	"devlog/models"
	"devlog/utils"
)

const sessionDuration = 24 * time.Hour

// SessionController manages the admin session lifecycle.
type SessionController struct {
	db *gorm.DB
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{db: db}
}

// Login verifies admin credentials and issues a bearer token.
func (s *SessionController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	var admin models.Admin
	if err := s.db.Where("username = ?", req.Username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load account")
		return
	}

	if !utils.CheckPassword(admin.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(admin.ID, admin.Username, sessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":    token,
		"username": admin.Username,
	})
}

// Probe confirms the bearer token is still valid.
func (s *SessionController) Probe(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"username": ctx.GetString(middleware.ContextUsernameKey),
	})
}

// Logout acknowledges a logout. Sessions are stateless bearer tokens; the
// client discards the token.
func (s *SessionController) Logout(ctx *gin.Context) {
	utils.Success(ctx, nil)
}
