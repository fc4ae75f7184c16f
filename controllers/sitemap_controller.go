package controllers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devlog/config"
	"devlog/models"
	"devlog/utils"
)

// sitemapPageSize is the URL ceiling per sitemap file from the protocol.
const sitemapPageSize = 50000

// SitemapController serves the crawler-facing XML sitemap over public,
// non-draft posts.
type SitemapController struct {
	db *gorm.DB
}

func NewSitemapController(db *gorm.DB) *SitemapController {
	return &SitemapController{db: db}
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

const sitemapXmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Index lists the sitemap pages.
func (s *SitemapController) Index(ctx *gin.Context) {
	var total int64
	if err := s.scoped().Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to count posts")
		return
	}

	base := strings.TrimSuffix(config.Get().SiteBaseURL, "/")
	pages := int((total + sitemapPageSize - 1) / sitemapPageSize)
	if pages == 0 {
		pages = 1
	}

	index := sitemapIndex{Xmlns: sitemapXmlns}
	for page := 1; page <= pages; page++ {
		index.Sitemaps = append(index.Sitemaps, sitemapRef{
			Loc: fmt.Sprintf("%s/sitemaps/%d", base, page),
		})
	}
	writeXML(ctx, index)
}

// Page serves one sitemap page of post URLs, oldest first so page numbering
// stays stable as new posts arrive.
func (s *SitemapController) Page(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.Param("page"))
	if err != nil || page < 1 {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid sitemap page")
		return
	}

	var posts []models.Post
	err = s.scoped().
		Select("slug", "modified_at").
		Order("created_at ASC").
		Offset((page - 1) * sitemapPageSize).
		Limit(sitemapPageSize).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to list posts")
		return
	}

	base := strings.TrimSuffix(config.Get().SiteBaseURL, "/")
	set := urlSet{Xmlns: sitemapXmlns}
	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/posts/%s", base, post.Slug),
			LastMod: post.ModifiedAt.Format(time.RFC3339),
		})
	}
	writeXML(ctx, set)
}

func (s *SitemapController) scoped() *gorm.DB {
	return s.db.Model(&models.Post{}).
		Scopes(models.ScopePublished, models.ScopeListable(false))
}

func writeXML(ctx *gin.Context, v interface{}) {
	body, err := xml.Marshal(v)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to encode sitemap")
		return
	}
	ctx.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}
