// catalog.go
//
// A community catalog web application with Google sign-in
// Copyright (c) 2026 Curio contributors
//
// This file is part of curio.
// curio is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// curio is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with curio.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"errors"
	"time"

	"github.com/curioapp/curio/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound signals a fetch-by-id that matched no row. A collection
// query with zero matches is not an error.
var ErrNotFound = errors.New("not found")

// LatestItemsLimit is the number of most-recently-updated items shown on
// the catalog home page.
const LatestItemsLimit = 10

// Categories returns all categories ordered by name.
func Categories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryByID fetches a single category.
func CategoryByID(db *gorm.DB, id uint64) (models.Category, error) {
	var category models.Category
	err := db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return category, ErrNotFound
	}
	return category, err
}

// Items returns all items ordered alphabetically by name.
func Items(db *gorm.DB) ([]models.Item, error) {
	var items []models.Item
	if err := db.Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// LatestItems returns the most recently updated items, newest first.
func LatestItems(db *gorm.DB, limit int) ([]models.Item, error) {
	var items []models.Item
	err := db.Preload("Category").Preload("User").
		Order("updated desc").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ItemsByCategory returns a category's items ordered by name.
func ItemsByCategory(db *gorm.DB, categoryID uint64) ([]models.Item, error) {
	var items []models.Item
	err := db.Where("category_id = ?", categoryID).Order("name").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ItemsByUser returns a user's items ordered by name.
func ItemsByUser(db *gorm.DB, userID uint64) ([]models.Item, error) {
	var items []models.Item
	err := db.Where("user_id = ?", userID).Order("name").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ItemByID fetches a single item with its category and owner loaded.
func ItemByID(db *gorm.DB, id uint64) (models.Item, error) {
	var item models.Item
	err := db.Preload("Category").Preload("User").First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	return item, err
}

// CreateItem persists a new item owned by userID. Created and Updated are
// both set to now.
func CreateItem(db *gorm.DB, name, description string, categoryID, userID uint64, image string) (models.Item, error) {
	now := time.Now()
	item := models.Item{
		Name:        name,
		Description: description,
		Image:       image,
		CategoryID:  categoryID,
		UserID:      userID,
		Created:     now,
		Updated:     now,
	}
	if err := db.Create(&item).Error; err != nil {
		return item, err
	}
	return item, nil
}

// UpdateItem applies an edit to an item's mutable fields. The image is
// replaced only when a new filename is supplied; Created and the owner are
// never touched. Updated is refreshed to now.
func UpdateItem(db *gorm.DB, item *models.Item, name, description string, categoryID uint64, image string) error {
	item.Name = name
	item.Description = description
	item.CategoryID = categoryID
	if image != "" {
		item.Image = image
	}
	item.Updated = time.Now()
	return db.Model(item).Select("name", "description", "category_id", "image", "updated").Updates(item).Error
}

// DeleteItem removes an item permanently.
func DeleteItem(db *gorm.DB, item *models.Item) error {
	return db.Delete(item).Error
}
