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

package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/curioapp/curio/internal/models"
	"github.com/curioapp/curio/internal/services"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/uploads"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CatalogHandler serves the catalog HTML pages and the item CRUD forms.
type CatalogHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Uploads  *uploads.Store
}

// Home handles GET / and GET /catalog/
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	categories, err := services.Categories(h.DB)
	if err != nil {
		return err
	}
	items, err := services.Items(h.DB)
	if err != nil {
		return err
	}
	latest, err := services.LatestItems(h.DB, services.LatestItemsLimit)
	if err != nil {
		return err
	}
	return renderPage(c, h.Sessions, "catalog", fiber.Map{
		"Categories":  categories,
		"Items":       items,
		"LatestItems": latest,
	})
}

// ViewCategory handles GET /catalog/category/:id/
func (h *CatalogHandler) ViewCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return renderNotFound(c, h.Sessions)
	}
	category, err := services.CategoryByID(h.DB, id)
	if errors.Is(err, services.ErrNotFound) {
		return renderNotFound(c, h.Sessions)
	}
	if err != nil {
		return err
	}
	items, err := services.ItemsByCategory(h.DB, category.ID)
	if err != nil {
		return err
	}
	return renderPage(c, h.Sessions, "category", fiber.Map{
		"Category": category,
		"Items":    items,
	})
}

// ViewItem handles GET /catalog/item/:id/
func (h *CatalogHandler) ViewItem(c *fiber.Ctx) error {
	item, err := h.itemFromRoute(c)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return renderNotFound(c, h.Sessions)
		}
		return err
	}
	return renderPage(c, h.Sessions, "item", fiber.Map{"Item": item})
}

// NewItem handles GET and POST /catalog/item/new/
func (h *CatalogHandler) NewItem(c *fiber.Ctx) error {
	state, err := h.Sessions.State(c)
	if err != nil {
		return err
	}
	categories, err := services.Categories(h.DB)
	if err != nil {
		return err
	}

	if c.Method() != fiber.MethodPost {
		form := &ItemForm{Errors: make(map[string]string)}
		return renderPage(c, h.Sessions, "item_new", fiber.Map{
			"Form":       form,
			"Categories": categories,
		})
	}

	form := parseItemForm(c, categories)
	file := formFile(c)
	if file != nil && !h.Uploads.Allowed(file.Filename) {
		form.Errors["image"] = "Invalid file extension."
	}
	if !form.Valid() {
		return renderPage(c, h.Sessions, "item_new", fiber.Map{
			"Form":       form,
			"Categories": categories,
		})
	}

	// The file write completes before the database row referencing it.
	image := ""
	if file != nil {
		image = h.Uploads.GenerateFilename(file.Filename)
		path, err := h.Uploads.Path(image)
		if err != nil {
			return err
		}
		if err := c.SaveFile(file, path); err != nil {
			return err
		}
	}

	item, err := services.CreateItem(h.DB, form.Name, form.Description, form.CategoryID, state.UserID, image)
	if err != nil {
		return err
	}

	_ = h.Sessions.AddFlash(c, "success", "Item successfully created")
	return c.Redirect(fmt.Sprintf("/catalog/item/%d/", item.ID))
}

// EditItem handles GET and POST /catalog/item/:id/edit/
func (h *CatalogHandler) EditItem(c *fiber.Ctx) error {
	state, err := h.Sessions.State(c)
	if err != nil {
		return err
	}
	item, err := h.itemFromRoute(c)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return renderNotFound(c, h.Sessions)
		}
		return err
	}

	// Only the owner may edit; everyone else gets the read view with a
	// denial notice.
	if item.UserID != state.UserID {
		_ = h.Sessions.AddFlash(c, "error", "You are not allowed to update this item")
		return renderPage(c, h.Sessions, "item", fiber.Map{"Item": item})
	}

	categories, err := services.Categories(h.DB)
	if err != nil {
		return err
	}

	if c.Method() != fiber.MethodPost {
		return renderPage(c, h.Sessions, "item_edit", fiber.Map{
			"Form":       itemFormFromModel(&item),
			"Item":       item,
			"Categories": categories,
		})
	}

	form := parseItemForm(c, categories)
	file := formFile(c)
	if file != nil && !h.Uploads.Allowed(file.Filename) {
		form.Errors["image"] = "Invalid file extension."
	}
	if !form.Valid() {
		return renderPage(c, h.Sessions, "item_edit", fiber.Map{
			"Form":       form,
			"Item":       item,
			"Categories": categories,
		})
	}

	// Replace the image only when a new file was supplied.
	image := ""
	if file != nil {
		image = h.Uploads.GenerateFilename(file.Filename)
		path, err := h.Uploads.Path(image)
		if err != nil {
			return err
		}
		if err := c.SaveFile(file, path); err != nil {
			return err
		}
	}

	if err := services.UpdateItem(h.DB, &item, form.Name, form.Description, form.CategoryID, image); err != nil {
		return err
	}

	_ = h.Sessions.AddFlash(c, "success", "Item successfully updated")
	return c.Redirect(fmt.Sprintf("/catalog/item/%d/", item.ID))
}

// DeleteItem handles GET and POST /catalog/item/:id/delete/. A bare GET
// shows the confirmation form; only the confirmed POST performs the
// delete, so link-following can never remove an item.
func (h *CatalogHandler) DeleteItem(c *fiber.Ctx) error {
	state, err := h.Sessions.State(c)
	if err != nil {
		return err
	}
	item, err := h.itemFromRoute(c)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return renderNotFound(c, h.Sessions)
		}
		return err
	}

	if item.UserID != state.UserID {
		_ = h.Sessions.AddFlash(c, "error", "You are not allowed to remove this item")
		return renderPage(c, h.Sessions, "item", fiber.Map{"Item": item})
	}

	if c.Method() != fiber.MethodPost {
		return renderPage(c, h.Sessions, "item_delete", fiber.Map{"Item": item})
	}

	if err := services.DeleteItem(h.DB, &item); err != nil {
		return err
	}

	_ = h.Sessions.AddFlash(c, "success", "Item successfully removed")
	return c.Redirect("/catalog/")
}

// UserProfile handles GET /user/profile/
func (h *CatalogHandler) UserProfile(c *fiber.Ctx) error {
	state, err := h.Sessions.State(c)
	if err != nil {
		return err
	}
	user, err := services.UserByID(h.DB, state.UserID)
	if err != nil {
		return err
	}
	items, err := services.ItemsByUser(h.DB, user.ID)
	if err != nil {
		return err
	}
	return renderPage(c, h.Sessions, "user", fiber.Map{
		"User":  user,
		"Items": items,
	})
}

func (h *CatalogHandler) itemFromRoute(c *fiber.Ctx) (models.Item, error) {
	id, perr := strconv.ParseUint(c.Params("id"), 10, 64)
	if perr != nil {
		return models.Item{}, services.ErrNotFound
	}
	return services.ItemByID(h.DB, id)
}
