package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/curioapp/curio/internal/models"
	"github.com/curioapp/curio/internal/services"
)

func TestHomeListsCategoriesAndItems(t *testing.T) {
	ta := newTestApp(t, nil)
	user := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	seedItem(t, ta.db, "Rosemary", category.ID, user.ID)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/catalog/", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	body := readBody(t, resp)
	if !strings.Contains(body, "Herbs") {
		t.Error("Expected category name on the home page")
	}
	if !strings.Contains(body, "Rosemary") {
		t.Error("Expected item name on the home page")
	}
}

func TestViewItemNotFound(t *testing.T) {
	ta := newTestApp(t, nil)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/catalog/item/999999/", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	resp = ta.do(t, httptest.NewRequest(http.MethodGet, "/catalog/category/999999/", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404 for missing category, got %d", resp.StatusCode)
	}
}

func TestNewItemRequiresLogin(t *testing.T) {
	ta := newTestApp(t, nil)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/catalog/item/new/", nil))
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("Expected redirect, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/login/?next=") {
		t.Errorf("Expected redirect to login with next target, got %q", location)
	}
}

func TestNewItemCreates(t *testing.T) {
	ta := newTestApp(t, nil)
	user := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	ta.loginAs(t, user.ID)

	req := itemFormRequest(t, "/catalog/item/new/", "Rosemary", "A woody, perennial herb.", category.ID, "", nil)
	resp := ta.do(t, req)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("Expected redirect after create, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var item models.Item
	if err := ta.db.Where("name = ?", "Rosemary").First(&item).Error; err != nil {
		t.Fatalf("Item was not persisted: %v", err)
	}
	if item.UserID != user.ID {
		t.Errorf("Expected owner %d, got %d", user.ID, item.UserID)
	}
	if item.Image != "" {
		t.Errorf("Expected no image, got %q", item.Image)
	}
	if location, want := resp.Header.Get("Location"), fmt.Sprintf("/catalog/item/%d/", item.ID); location != want {
		t.Errorf("Expected redirect to %q, got %q", want, location)
	}
}

func TestNewItemStoresUpload(t *testing.T) {
	ta := newTestApp(t, nil)
	user := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	ta.loginAs(t, user.ID)

	req := itemFormRequest(t, "/catalog/item/new/", "Rosemary", "A woody, perennial herb.", category.ID, "rosemary.jpg", []byte("not-really-a-jpeg"))
	resp := ta.do(t, req)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("Expected redirect after create, got %d", resp.StatusCode)
	}

	var item models.Item
	if err := ta.db.Where("name = ?", "Rosemary").First(&item).Error; err != nil {
		t.Fatalf("Item was not persisted: %v", err)
	}
	if item.Image == "" {
		t.Fatal("Expected a generated image filename")
	}
	if _, err := os.Stat(filepath.Join(ta.uploads.Dir, item.Image)); err != nil {
		t.Errorf("Uploaded file missing on disk: %v", err)
	}
}

func TestNewItemRejectsShortName(t *testing.T) {
	ta := newTestApp(t, nil)
	user := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	ta.loginAs(t, user.ID)

	// Both names are one character short of the minimum; the Cyrillic one
	// is 8 bytes long, so the bound must count characters, not bytes.
	for _, name := range []string{"Kale", "кейл"} {
		req := itemFormRequest(t, "/catalog/item/new/", name, "One of the healthiest foods on the planet.", category.ID, "", nil)
		resp := ta.do(t, req)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("Expected form redisplay for %q, got %d", name, resp.StatusCode)
		}

		body := readBody(t, resp)
		if !strings.Contains(body, "Field must be between 5 and 120 characters long.") {
			t.Errorf("Expected the name length validation message for %q", name)
		}
	}
	if count := ta.itemCount(t); count != 0 {
		t.Errorf("Expected no item created, found %d", count)
	}
}

func TestNewItemAcceptsLongMultibyteName(t *testing.T) {
	ta := newTestApp(t, nil)
	user := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	ta.loginAs(t, user.ID)

	// 120 CJK characters, well over 120 bytes, sits exactly on the limit.
	name := strings.Repeat("香", 120)
	req := itemFormRequest(t, "/catalog/item/new/", name, "A fragrant herb from far away.", category.ID, "", nil)
	resp := ta.do(t, req)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("Expected redirect after create, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if count := ta.itemCount(t); count != 1 {
		t.Errorf("Expected item created, count = %d", count)
	}

	// One character past the limit is still rejected.
	req = itemFormRequest(t, "/catalog/item/new/", name+"草", "A fragrant herb from far away.", category.ID, "", nil)
	resp = ta.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected form redisplay, got %d", resp.StatusCode)
	}
	if count := ta.itemCount(t); count != 1 {
		t.Errorf("Expected no further item created, count = %d", count)
	}
}

func TestNewItemRejectsBadExtension(t *testing.T) {
	ta := newTestApp(t, nil)
	user := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	ta.loginAs(t, user.ID)

	req := itemFormRequest(t, "/catalog/item/new/", "Rosemary", "A woody, perennial herb.", category.ID, "photo.exe", []byte("MZ"))
	resp := ta.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected form redisplay, got %d", resp.StatusCode)
	}

	body := readBody(t, resp)
	if !strings.Contains(body, "Invalid file extension.") {
		t.Error("Expected the file extension validation message")
	}
	if count := ta.itemCount(t); count != 0 {
		t.Errorf("Expected no item created, found %d", count)
	}
	entries, err := os.ReadDir(ta.uploads.Dir)
	if err != nil {
		t.Fatalf("Failed to list upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no stored file for a rejected upload, found %d", len(entries))
	}
}

func TestEditItemNonOwnerDenied(t *testing.T) {
	ta := newTestApp(t, nil)
	owner := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	intruder := seedUser(t, ta.db, "Charles Babbage", "charles@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	item := seedItem(t, ta.db, "Rosemary", category.ID, owner.ID)
	ta.loginAs(t, intruder.ID)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/catalog/item/%d/edit/", item.ID), nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "You are not allowed to update this item") {
		t.Error("Expected the denial notice for a non-owner")
	}

	// A forged POST must not change anything either.
	req := itemFormRequest(t, fmt.Sprintf("/catalog/item/%d/edit/", item.ID), "Hijacked name", "A rewritten description entirely.", category.ID, "", nil)
	resp = ta.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	reloaded, err := services.ItemByID(ta.db, item.ID)
	if err != nil {
		t.Fatalf("Failed to reload item: %v", err)
	}
	if reloaded.Name != "Rosemary" {
		t.Errorf("Non-owner edit changed the item name to %q", reloaded.Name)
	}
}

func TestEditItemOwner(t *testing.T) {
	ta := newTestApp(t, nil)
	owner := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	other := seedCategory(t, ta.db, "Vegetables")
	item := seedItem(t, ta.db, "Rosemary", category.ID, owner.ID)
	ta.loginAs(t, owner.ID)

	req := itemFormRequest(t, fmt.Sprintf("/catalog/item/%d/edit/", item.ID), "Rosemary (fresh)", "A woody, perennial herb, freshly cut.", other.ID, "", nil)
	resp := ta.do(t, req)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("Expected redirect after edit, got %d", resp.StatusCode)
	}

	reloaded, err := services.ItemByID(ta.db, item.ID)
	if err != nil {
		t.Fatalf("Failed to reload item: %v", err)
	}
	if reloaded.Name != "Rosemary (fresh)" {
		t.Errorf("Expected updated name, got %q", reloaded.Name)
	}
	if reloaded.CategoryID != other.ID {
		t.Errorf("Expected category %d, got %d", other.ID, reloaded.CategoryID)
	}
}

func TestDeleteItemConfirmation(t *testing.T) {
	ta := newTestApp(t, nil)
	owner := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	item := seedItem(t, ta.db, "Rosemary", category.ID, owner.ID)
	ta.loginAs(t, owner.ID)

	// GET only shows the confirmation page; the item survives.
	resp := ta.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/catalog/item/%d/delete/", item.ID), nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if count := ta.itemCount(t); count != 1 {
		t.Fatalf("GET must not delete, item count = %d", count)
	}

	// The confirmed POST removes it.
	resp = ta.do(t, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/catalog/item/%d/delete/", item.ID), nil))
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("Expected redirect after delete, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/catalog/" {
		t.Errorf("Expected redirect to /catalog/, got %q", location)
	}
	if count := ta.itemCount(t); count != 0 {
		t.Errorf("Expected item removed, count = %d", count)
	}
}

func TestDeleteItemNonOwnerDenied(t *testing.T) {
	ta := newTestApp(t, nil)
	owner := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	intruder := seedUser(t, ta.db, "Charles Babbage", "charles@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	item := seedItem(t, ta.db, "Rosemary", category.ID, owner.ID)
	ta.loginAs(t, intruder.ID)

	resp := ta.do(t, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/catalog/item/%d/delete/", item.ID), nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "You are not allowed to remove this item") {
		t.Error("Expected the denial notice for a non-owner")
	}
	if count := ta.itemCount(t); count != 1 {
		t.Errorf("Non-owner delete removed the item, count = %d", count)
	}
}

func TestUserProfileListsOwnItems(t *testing.T) {
	ta := newTestApp(t, nil)
	owner := seedUser(t, ta.db, "Ada Lovelace", "ada@example.org")
	other := seedUser(t, ta.db, "Charles Babbage", "charles@example.org")
	category := seedCategory(t, ta.db, "Herbs")
	seedItem(t, ta.db, "Rosemary", category.ID, owner.ID)
	seedItem(t, ta.db, "Thyme sprigs", category.ID, other.ID)
	ta.loginAs(t, owner.ID)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/user/profile/", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Rosemary") {
		t.Error("Expected the owner's item on the profile page")
	}
	if strings.Contains(body, "Thyme sprigs") {
		t.Error("Profile page must not list other users' items")
	}
}

func TestViewImageTraversalRejected(t *testing.T) {
	ta := newTestApp(t, nil)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/image/%2e%2e%2fsecret.jpg/", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404 for a traversal name, got %d", resp.StatusCode)
	}

	resp = ta.do(t, httptest.NewRequest(http.MethodGet, "/image/missing.jpg/", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404 for a missing image, got %d", resp.StatusCode)
	}
}
