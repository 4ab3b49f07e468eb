package handlers_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/curioapp/curio/internal/handlers"
	"github.com/curioapp/curio/internal/middleware"
	"github.com/curioapp/curio/internal/models"
	"github.com/curioapp/curio/internal/services"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/uploads"
	"github.com/curioapp/curio/views"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access underlying connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Item{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// testApp wires the handlers into a Fiber app the way the server does,
// minus the CSRF and metrics middleware, and carries session cookies
// between requests like a browser would.
type testApp struct {
	app      *fiber.App
	db       *gorm.DB
	sessions *session.Manager
	uploads  *uploads.Store
	cookies  map[string]*http.Cookie
}

func newTestApp(t *testing.T, google *services.Google) *testApp {
	db := setupTestDB(t)
	sessions := session.NewManager(time.Hour)
	store := uploads.New(t.TempDir(), []string{"jpg", "jpeg", "png", "gif"})

	app := fiber.New(fiber.Config{
		Views:       views.NewEngine(),
		ViewsLayout: "layouts/main",
	})

	catalogHandler := &handlers.CatalogHandler{DB: db, Sessions: sessions, Uploads: store}
	dataHandler := &handlers.DataHandler{DB: db}
	imageHandler := &handlers.ImageHandler{Sessions: sessions, Uploads: store}
	requireLogin := middleware.RequireLogin(sessions)

	app.Get("/catalog/", catalogHandler.Home)
	app.Get("/catalog/item/new/", requireLogin, catalogHandler.NewItem)
	app.Post("/catalog/item/new/", requireLogin, catalogHandler.NewItem)
	app.Get("/catalog/item/:id/edit/", requireLogin, catalogHandler.EditItem)
	app.Post("/catalog/item/:id/edit/", requireLogin, catalogHandler.EditItem)
	app.Get("/catalog/item/:id/delete/", requireLogin, catalogHandler.DeleteItem)
	app.Post("/catalog/item/:id/delete/", requireLogin, catalogHandler.DeleteItem)
	app.Get("/catalog/item/:id/", catalogHandler.ViewItem)
	app.Get("/catalog/category/:id/", catalogHandler.ViewCategory)
	app.Get("/user/profile/", requireLogin, catalogHandler.UserProfile)
	app.Get("/image/:filename/", imageHandler.ViewImage)

	app.Get("/catalog.json", dataHandler.CatalogJSON)
	app.Get("/catalog/category-:id.json", dataHandler.CategoryJSON)
	app.Get("/catalog/item-:id.json", dataHandler.ItemJSON)
	app.Get("/recent.atom", dataHandler.RecentAtom)
	app.Get("/users.json", requireLogin, dataHandler.UsersJSON)

	if google != nil {
		authHandler := &handlers.AuthHandler{DB: db, Sessions: sessions, Google: google}
		app.Get("/login/", authHandler.Login)
		app.Get("/logout/", authHandler.Logout)
		app.Post("/google_connect", authHandler.GoogleConnect)
		app.Get("/google_disconnect", authHandler.GoogleDisconnect)
	}

	// Test-only sign-in shortcut: establishes a session for an existing
	// user without walking the provider flow.
	app.Post("/testlogin/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return err
		}
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			return err
		}
		return sessions.SetState(c, &session.State{
			Provider:    "google",
			AccessToken: "test-access-token",
			SubjectID:   "test-subject-" + c.Params("id"),
			Username:    user.Name,
			Email:       user.Email,
			Picture:     user.Picture,
			UserID:      user.ID,
		})
	})

	return &testApp{
		app:      app,
		db:       db,
		sessions: sessions,
		uploads:  store,
		cookies:  make(map[string]*http.Cookie),
	}
}

// do executes a request against the app, replaying stored cookies and
// capturing any new ones.
func (ta *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	for _, ck := range ta.cookies {
		req.AddCookie(ck)
	}
	resp, err := ta.app.Test(req, 10000)
	if err != nil {
		t.Fatalf("Failed to execute request %s %s: %v", req.Method, req.URL, err)
	}
	for _, ck := range resp.Cookies() {
		ta.cookies[ck.Name] = ck
	}
	return resp
}

func (ta *testApp) loginAs(t *testing.T, userID uint64) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/testlogin/%d", userID), nil)
	resp := ta.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Test login failed with status %d", resp.StatusCode)
	}
}

func (ta *testApp) itemCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := ta.db.Model(&models.Item{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	return count
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	id, err := services.EnsureUser(db, name, email, "")
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", email, err)
	}
	user, err := services.UserByID(db, id)
	if err != nil {
		t.Fatalf("Failed to reload user %q: %v", email, err)
	}
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category %q: %v", name, err)
	}
	return category
}

func seedItem(t *testing.T, db *gorm.DB, name string, categoryID, userID uint64) models.Item {
	t.Helper()
	item, err := services.CreateItem(db, name, "Seeded description for "+name+".", categoryID, userID, "")
	if err != nil {
		t.Fatalf("Failed to create item %q: %v", name, err)
	}
	return item
}

// itemFormRequest builds the multipart POST an item form submission sends.
// An empty filename means no file part.
func itemFormRequest(t *testing.T, target, name, description string, categoryID uint64, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.WriteField("name", name)
	_ = w.WriteField("description", description)
	_ = w.WriteField("category_id", strconv.FormatUint(categoryID, 10))
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("Failed to build multipart body: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("Failed to write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish multipart body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(data)
}
