package handlers

import (
	"mime/multipart"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/curioapp/curio/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	itemNameMinLen        = 5
	itemNameMaxLen        = 120
	itemDescriptionMinLen = 10
)

// ItemForm carries the submitted (or prefilled) fields of the item
// create/edit form plus field-level validation errors keyed by field name.
type ItemForm struct {
	Name        string
	Description string
	CategoryID  uint64
	Errors      map[string]string
}

// Valid reports whether the form passed validation.
func (f *ItemForm) Valid() bool {
	return len(f.Errors) == 0
}

// itemFormFromModel prefills the form with an item's current values for
// the edit page.
func itemFormFromModel(item *models.Item) *ItemForm {
	return &ItemForm{
		Name:        item.Name,
		Description: item.Description,
		CategoryID:  item.CategoryID,
		Errors:      make(map[string]string),
	}
}

// parseItemForm reads and validates the item form fields. Violating inputs
// never reach persistence: callers must check Valid before writing.
func parseItemForm(c *fiber.Ctx, categories []models.Category) *ItemForm {
	form := &ItemForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Errors:      make(map[string]string),
	}
	form.CategoryID, _ = strconv.ParseUint(c.FormValue("category_id"), 10, 64)

	// Length bounds count characters, not bytes.
	if form.Name == "" {
		form.Errors["name"] = "This field is required."
	} else if n := utf8.RuneCountInString(form.Name); n < itemNameMinLen || n > itemNameMaxLen {
		form.Errors["name"] = "Field must be between 5 and 120 characters long."
	}

	if form.Description == "" {
		form.Errors["description"] = "This field is required."
	} else if utf8.RuneCountInString(form.Description) < itemDescriptionMinLen {
		form.Errors["description"] = "Field must be at least 10 characters long."
	}

	if !categoryExists(categories, form.CategoryID) {
		form.Errors["category_id"] = "Not a valid choice."
	}

	return form
}

func categoryExists(categories []models.Category, id uint64) bool {
	for _, category := range categories {
		if category.ID == id {
			return true
		}
	}
	return false
}

// formFile returns the uploaded image file header, or nil when the form
// carried no file.
func formFile(c *fiber.Ctx) *multipart.FileHeader {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Filename == "" {
		return nil
	}
	return fh
}
