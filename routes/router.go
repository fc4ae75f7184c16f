package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devlog/config"
	"devlog/controllers"
	"devlog/markdown"
	"devlog/middleware"
	"devlog/search"
	"devlog/ssr"
	"devlog/storage"
	"devlog/utils"
)

// Deps are the shared components the controllers are wired with.
type Deps struct {
	DB          *gorm.DB
	Index       search.Index
	Syncer      *search.Syncer
	Pipeline    *markdown.Pipeline
	Store       storage.Store
	Analyzer    storage.Analyzer
	SSRCache    *ssr.Cache
	SSRRenderer ssr.Renderer
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.GinLogger())
	r.Use(utils.GinRecovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	sessionController := controllers.NewSessionController(deps.DB)
	categoryController := controllers.NewCategoryController(deps.DB)
	postController := controllers.NewPostController(deps.DB, deps.Index)
	adminPostController := controllers.NewAdminPostController(deps.DB, deps.Pipeline, deps.Syncer, deps.Store)
	mediaController := controllers.NewMediaController(deps.DB, deps.Store, deps.Analyzer)
	sitemapController := controllers.NewSitemapController(deps.DB)
	ssrController := controllers.NewSSRController(deps.SSRCache, deps.SSRRenderer,
		time.Duration(cfg.SSRTimeoutMS)*time.Millisecond)

	r.GET("/sitemaps", sitemapController.Index)
	r.GET("/sitemaps/:page", sitemapController.Page)
	r.GET("/ssr/*path", ssrController.Get)

	api := r.Group("/api/v1")

	public := api.Group("")
	public.Use(middleware.AuthOptional())
	public.GET("/posts", postController.List)
	public.GET("/posts/:slug", postController.Get)
	public.GET("/categories", categoryController.List)

	api.POST("/admin/session", middleware.RateLimitMiddleware(), sessionController.Login)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired())
	admin.GET("/session", sessionController.Probe)
	admin.DELETE("/session", sessionController.Logout)

	admin.GET("/categories", categoryController.List)
	admin.POST("/categories", categoryController.Create)
	admin.PATCH("/categories/:name", categoryController.Update)
	admin.DELETE("/categories/:name", categoryController.Delete)

	admin.GET("/posts", adminPostController.List)
	admin.POST("/posts", adminPostController.Create)
	admin.POST("/posts/regenerate", adminPostController.Regenerate)
	admin.PATCH("/posts/:slug", adminPostController.Update)
	admin.PUT("/posts/:slug/content", adminPostController.UpdateContent)
	admin.DELETE("/posts/:slug", adminPostController.Delete)

	admin.POST("/posts/:slug/images", mediaController.UploadImages)
	admin.POST("/posts/:slug/videos", mediaController.UploadVideos)
	admin.DELETE("/posts/:slug/images/:index", mediaController.DeleteImage)
	admin.DELETE("/posts/:slug/videos/:index", mediaController.DeleteVideo)
	admin.PUT("/posts/:slug/thumbnail", mediaController.ReplaceThumbnail)

	admin.PATCH("/ssr", ssrController.Purge)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
