package models

import "gorm.io/gorm"

// The access-level filter is applied at every read boundary: listing, detail
// and search all go through one of these scopes so visibility rules cannot
// drift between paths.

// ScopeListable restricts a post query to what the viewer may see in listings
// and search results. Admins see everything; anonymous viewers only see
// public posts. Unlisted posts never appear here.
func ScopeListable(authed bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if authed {
			return db
		}
		return db.Where("access_level = ?", AccessPublic)
	}
}

// ScopeViewable restricts a post query to what the viewer may fetch directly
// by slug. Unlisted posts are reachable here (discoverable only via direct
// link); private posts require an admin session.
func ScopeViewable(authed bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if authed {
			return db
		}
		return db.Where("access_level <> ?", AccessPrivate)
	}
}

// ScopePublished excludes drafts. A post without content must not leak
// through any public path, including search sync.
func ScopePublished(db *gorm.DB) *gorm.DB {
	return db.Where("content IS NOT NULL")
}
