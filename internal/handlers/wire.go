package handlers

import (
	"github.com/curioapp/curio/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Wire mappings for the JSON API. Entities serialize to flat field maps
// with foreign keys as ids, never nested objects.

func userWire(u models.User) fiber.Map {
	return fiber.Map{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"picture": nullable(u.Picture),
	}
}

func categoryWire(c models.Category) fiber.Map {
	return fiber.Map{
		"id":   c.ID,
		"name": c.Name,
	}
}

func itemWire(i models.Item) fiber.Map {
	return fiber.Map{
		"id":          i.ID,
		"name":        i.Name,
		"description": i.Description,
		"image":       nullable(i.Image),
		"category_id": i.CategoryID,
		"user_id":     i.UserID,
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
