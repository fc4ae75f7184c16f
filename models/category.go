package models

import "time"

// Category groups posts. Deleting a category detaches its posts (their
// category becomes NULL); it never cascades to the posts themselves.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Name        string    `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:256" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `gorm:"autoUpdateTime" json:"modifiedAt"`
}
