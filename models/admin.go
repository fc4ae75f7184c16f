package models

import "time"

// Admin is a backend administrator account. There is no public registration;
// accounts are provisioned with the -create-admin bootstrap flag.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
