package pagination

import (
	"errors"

	"gorm.io/gorm"

	"devlog/models"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 20

// Client-visible failures of a listing request, matched at the controller
// boundary and translated into responses there.
var (
	ErrBothCursors      = errors.New("before and after cannot coexist")
	ErrCategoryNotFound = errors.New("category not exists")
	ErrAnchorNotFound   = errors.New("anchor not exists")
)

// Query is one stateless listing request. Before and After each name a post
// by slug and act as an exclusive cursor boundary on createdAt; they are
// mutually exclusive. Listings display newest-first, so After continues past
// the end of the current page (older posts) and Before pages back toward the
// top (newer posts).
type Query struct {
	Category string
	Before   string
	After    string
	Authed   bool
}

// Page is one listing result, always in descending createdAt order. The
// flags report whether rows exist before the first row / after the last row
// of this page in display order.
type Page struct {
	Posts     []models.Post `json:"posts"`
	HasBefore bool          `json:"hasBefore"`
	HasAfter  bool          `json:"hasAfter"`
}

// Pager translates listing queries into bounded range queries over the post
// store. It holds no per-request state.
type Pager struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Pager {
	return &Pager{db: db}
}

// List resolves the category, anchors the cursor, runs the bounded range
// query and computes the has-more flags. The anchor lookup applies the same
// category and visibility filters as the main query so a cursor cannot leak
// the existence of a post outside the viewer's visibility.
func (p *Pager) List(q Query) (*Page, error) {
	if q.Before != "" && q.After != "" {
		return nil, ErrBothCursors
	}

	page := &Page{Posts: []models.Post{}}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var categoryID *uint
		if q.Category != "" {
			var category models.Category
			if err := tx.Select("id").Where("name = ?", q.Category).First(&category).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCategoryNotFound
				}
				return err
			}
			categoryID = &category.ID
		}

		scoped := func() *gorm.DB {
			db := tx.Model(&models.Post{}).
				Scopes(models.ScopePublished, models.ScopeListable(q.Authed))
			if categoryID != nil {
				db = db.Where("category_id = ?", *categoryID)
			}
			return db
		}

		var anchor *models.Post
		if cursor := q.Before + q.After; cursor != "" {
			anchor = &models.Post{}
			if err := scoped().Select("created_at").Where("slug = ?", cursor).First(anchor).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAnchorNotFound
				}
				return err
			}
		}

		query := scoped().Preload("Category")
		switch {
		case q.Before != "":
			// Page back toward newer posts: take the rows nearest the anchor
			// ascending, then reverse to restore descending display order.
			query = query.Where("created_at > ?", anchor.CreatedAt).Order("created_at ASC")
		case q.After != "":
			query = query.Where("created_at < ?", anchor.CreatedAt).Order("created_at DESC")
		default:
			query = query.Order("created_at DESC")
		}

		if err := query.Limit(PageSize).Find(&page.Posts).Error; err != nil {
			return err
		}

		if q.Before != "" {
			for i, j := 0, len(page.Posts)-1; i < j; i, j = i+1, j-1 {
				page.Posts[i], page.Posts[j] = page.Posts[j], page.Posts[i]
			}
		}

		// Has-more flags come from existence counts bounded by the page
		// edges, independent of the main query's own cursor, so they stay
		// correct at both ends of the result set.
		if len(page.Posts) == 0 {
			if anchor == nil {
				return nil
			}
			// Empty page but a valid anchor: the anchor itself still sits on
			// the other side of the boundary and determines the one flag.
			var n int64
			if q.Before != "" {
				if err := scoped().Where("created_at <= ?", anchor.CreatedAt).Count(&n).Error; err != nil {
					return err
				}
				page.HasAfter = n > 0
				return nil
			}
			if err := scoped().Where("created_at >= ?", anchor.CreatedAt).Count(&n).Error; err != nil {
				return err
			}
			page.HasBefore = n > 0
			return nil
		}

		newest := page.Posts[0].CreatedAt
		oldest := page.Posts[len(page.Posts)-1].CreatedAt

		var n int64
		if err := scoped().Where("created_at > ?", newest).Count(&n).Error; err != nil {
			return err
		}
		page.HasBefore = n > 0

		if err := scoped().Where("created_at < ?", oldest).Count(&n).Error; err != nil {
			return err
		}
		page.HasAfter = n > 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
