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
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/curioapp/curio/internal/config"
	"github.com/curioapp/curio/internal/database"
	"github.com/curioapp/curio/internal/handlers"
	"github.com/curioapp/curio/internal/middleware"
	"github.com/curioapp/curio/internal/services"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/types"
	"github.com/curioapp/curio/internal/uploads"
	"github.com/curioapp/curio/internal/utils"
	"github.com/curioapp/curio/views"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Upload directory must exist before the first image is saved
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	sessions := session.NewManager(cfg.SessionExpiration)
	google := services.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret)
	uploadStore := uploads.New(cfg.UploadDir, cfg.AllowedImageExtensions)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		Views:        views.NewEngine(),
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("curio")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Static assets
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(views.StaticFS()),
	}))

	// Create handlers
	catalogHandler := &handlers.CatalogHandler{DB: db, Sessions: sessions, Uploads: uploadStore}
	authHandler := &handlers.AuthHandler{DB: db, Sessions: sessions, Google: google}
	dataHandler := &handlers.DataHandler{DB: db}
	imageHandler := &handlers.ImageHandler{Sessions: sessions, Uploads: uploadStore}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db, Google: google}

	requireLogin := middleware.RequireLogin(sessions)
	csrfProtect := csrf.New(csrf.Config{
		KeyLookup:      "form:csrf_token",
		ContextKey:     "csrf",
		CookieName:     "curio_csrf",
		CookieSameSite: "Lax",
		Expiration:     cfg.SessionExpiration,
	})

	// Catalog pages (the /new/ route must precede the parameterized ones)
	app.Get("/", catalogHandler.Home)
	app.Get("/catalog/", catalogHandler.Home)
	app.Get("/catalog/item/new/", csrfProtect, requireLogin, catalogHandler.NewItem)
	app.Post("/catalog/item/new/", csrfProtect, requireLogin, catalogHandler.NewItem)
	app.Get("/catalog/item/:id/edit/", csrfProtect, requireLogin, catalogHandler.EditItem)
	app.Post("/catalog/item/:id/edit/", csrfProtect, requireLogin, catalogHandler.EditItem)
	app.Get("/catalog/item/:id/delete/", csrfProtect, requireLogin, catalogHandler.DeleteItem)
	app.Post("/catalog/item/:id/delete/", csrfProtect, requireLogin, catalogHandler.DeleteItem)
	app.Get("/catalog/item/:id/", catalogHandler.ViewItem)
	app.Get("/catalog/category/:id/", catalogHandler.ViewCategory)
	app.Get("/user/profile/", requireLogin, catalogHandler.UserProfile)

	// Uploaded images
	app.Get("/image/:filename/", imageHandler.ViewImage)

	// Authentication
	app.Get("/login/", authHandler.Login)
	app.Get("/logout/", authHandler.Logout)
	app.Post("/google_connect", authHandler.GoogleConnect)
	app.Get("/google_disconnect", authHandler.GoogleDisconnect)

	// JSON and Atom representations
	app.Get("/catalog.json", dataHandler.CatalogJSON)
	app.Get("/catalog/category-:id.json", dataHandler.CategoryJSON)
	app.Get("/catalog/item-:id.json", dataHandler.ItemJSON)
	app.Get("/recent.atom", dataHandler.RecentAtom)
	if cfg.ExposeUsersJSON {
		log.Println("Debug users listing enabled at /users.json")
		app.Get("/users.json", requireLogin, dataHandler.UsersJSON)
	}

	// Health
	app.Get("/health", healthHandler.Health)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return &types.CustomError{
			Code:    fiber.StatusNotFound,
			Message: "Resource Not Found",
			Type:    "notfound",
		}
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// errorHandler maps unhandled errors to a JSON envelope for data routes
// and to the HTML error pages for everything else.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	errorType := "unknown"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	}

	if code == fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s: %v", c.OriginalURL(), err)
	}

	if wantsJSON(c.Path()) {
		return utils.ErrorResponse(c, message, code, errorType)
	}

	c.Status(code)
	if code == fiber.StatusNotFound {
		return c.Render("404", fiber.Map{})
	}
	return c.Render("500", fiber.Map{})
}

// wantsJSON reports whether a route belongs to the data/API surface and
// should receive JSON errors instead of an HTML error page.
func wantsJSON(path string) bool {
	return strings.HasSuffix(path, ".json") ||
		strings.HasSuffix(path, ".atom") ||
		strings.HasPrefix(path, "/google_") ||
		path == "/health" ||
		path == "/metrics"
}
