package services

import (
	"errors"

	"github.com/curioapp/curio/internal/models"
	"gorm.io/gorm"
)

// EnsureUser resolves an authenticated third-party identity to a local
// user id, creating the user record on first sign-in. Calling it twice
// with the same email never yields two distinct ids: the email lookup is
// retried after a create that lost a race to a unique-index violation.
func EnsureUser(db *gorm.DB, name, email, picture string) (uint64, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	user = models.User{Name: name, Email: email, Picture: picture}
	if createErr := db.Create(&user).Error; createErr != nil {
		// Concurrent first sign-in with the same email; the row exists now.
		if lookupErr := db.Where("email = ?", email).First(&user).Error; lookupErr != nil {
			return 0, createErr
		}
	}
	return user.ID, nil
}

// Users returns all users.
func Users(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserByID fetches a single user.
func UserByID(db *gorm.DB, id uint64) (models.User, error) {
	var user models.User
	err := db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}
