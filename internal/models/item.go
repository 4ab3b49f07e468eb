package models

import (
	"time"
)

// Item is a catalog entry. Every item belongs to exactly one category and
// is owned by exactly one user; the owner reference is set at creation and
// immutable thereafter. Image holds the generated upload filename, empty
// when no image is associated.
//
// Created is set once. Updated is refreshed only through an explicit edit
// of the item's mutable fields, so Updated >= Created always holds.
type Item struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:120;not null"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"size:256"`

	CategoryID uint64 `gorm:"not null;index"`
	Category   Category

	Created time.Time `gorm:"not null"`
	Updated time.Time `gorm:"not null;index"`

	UserID uint64 `gorm:"not null;index"`
	User   User
}

// TableName overrides the table name for Item
func (Item) TableName() string {
	return "items"
}
