// main.go
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

package main

import (
	"encoding/json"
	"log"

	"github.com/curioapp/curio/data"
	"github.com/curioapp/curio/internal/config"
	"github.com/curioapp/curio/internal/database"
	"github.com/curioapp/curio/internal/models"
	"github.com/curioapp/curio/internal/services"
)

type seedItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type seedCategory struct {
	Name  string     `json:"name"`
	Items []seedItem `json:"items"`
}

type seedFile struct {
	User struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	} `json:"user"`
	Categories []seedCategory `json:"categories"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data.SeedCatalog, &seed); err != nil {
		log.Fatalf("Failed to parse embedded seed data: %v", err)
	}

	userID, err := services.EnsureUser(db, seed.User.Name, seed.User.Email, seed.User.Picture)
	if err != nil {
		log.Fatalf("Failed to create sample user: %v", err)
	}

	itemCount := 0
	for _, sc := range seed.Categories {
		category := models.Category{Name: sc.Name}
		if err := db.Create(&category).Error; err != nil {
			log.Fatalf("Failed to create category %q: %v", sc.Name, err)
		}
		for _, si := range sc.Items {
			if _, err := services.CreateItem(db, si.Name, si.Description, category.ID, userID, ""); err != nil {
				log.Fatalf("Failed to create item %q: %v", si.Name, err)
			}
			itemCount++
		}
	}

	log.Printf("Seeded %d categories and %d items for user %q", len(seed.Categories), itemCount, seed.User.Email)
}
