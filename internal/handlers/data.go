// data.go
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

package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/curioapp/curio/internal/services"
	"github.com/curioapp/curio/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/feeds"
	"gorm.io/gorm"
)

// FeedItemsLimit is the number of items included in the Atom feed.
const FeedItemsLimit = 5

// DataHandler serves the JSON representations and the Atom feed.
type DataHandler struct {
	DB *gorm.DB
}

// CatalogJSON handles GET /catalog.json
func (h *DataHandler) CatalogJSON(c *fiber.Ctx) error {
	categories, err := services.Categories(h.DB)
	if err != nil {
		return err
	}
	items, err := services.Items(h.DB)
	if err != nil {
		return err
	}

	categoryList := make([]fiber.Map, 0, len(categories))
	for _, category := range categories {
		categoryList = append(categoryList, categoryWire(category))
	}
	itemList := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		itemList = append(itemList, itemWire(item))
	}

	return c.JSON(fiber.Map{
		"categories": categoryList,
		"items":      itemList,
	})
}

// CategoryJSON handles GET /catalog/category-:id.json
func (h *DataHandler) CategoryJSON(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.NotFoundResponse(c, "Category not found")
	}
	category, err := services.CategoryByID(h.DB, id)
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Category %d not found", id))
	}
	if err != nil {
		return err
	}
	items, err := services.ItemsByCategory(h.DB, category.ID)
	if err != nil {
		return err
	}

	itemList := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		itemList = append(itemList, itemWire(item))
	}

	return c.JSON(fiber.Map{
		"category": categoryWire(category),
		"items":    itemList,
	})
}

// ItemJSON handles GET /catalog/item-:id.json
func (h *DataHandler) ItemJSON(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.NotFoundResponse(c, "Item not found")
	}
	item, err := services.ItemByID(h.DB, id)
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Item %d not found", id))
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"item": itemWire(item)})
}

// UsersJSON handles GET /users.json. Debug surface: registered only when
// EXPOSE_USERS_JSON is set, and login-gated even then.
func (h *DataHandler) UsersJSON(c *fiber.Ctx) error {
	users, err := services.Users(h.DB)
	if err != nil {
		return err
	}
	userList := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		userList = append(userList, userWire(user))
	}
	return c.JSON(fiber.Map{"users": userList})
}

// RecentAtom handles GET /recent.atom: the most recently updated items,
// newest first.
func (h *DataHandler) RecentAtom(c *fiber.Ctx) error {
	items, err := services.LatestItems(h.DB, FeedItemsLimit)
	if err != nil {
		return err
	}

	feed := &feeds.Feed{
		Title:   "Latest Items",
		Link:    &feeds.Link{Href: c.BaseURL() + "/"},
		Updated: time.Now(),
	}

	for _, item := range items {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:   item.Name,
			Link:    &feeds.Link{Href: fmt.Sprintf("%s/catalog/item/%d/", c.BaseURL(), item.ID)},
			Author:  &feeds.Author{Name: item.User.Name},
			Content: fmt.Sprintf("%s (%s): %s", item.Name, item.Category.Name, item.Description),
			Created: item.Created,
			Updated: item.Updated,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/atom+xml; charset=utf-8")
	return c.SendString(atom)
}
