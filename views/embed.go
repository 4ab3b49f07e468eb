package views

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/curioapp/curio/internal/uploads"
	"github.com/gofiber/template/html/v2"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the static file system.
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-filesystem: %v", err)
	}
	return sub
}

// TemplatesFS returns the templates file system.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		log.Fatalf("failed to create templates sub-filesystem: %v", err)
	}
	return sub
}

// NewEngine builds the HTML view engine over the embedded templates with
// the template helpers registered.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(TemplatesFS()), ".html")
	engine.AddFunc("imageURL", uploads.ImageURL)
	engine.AddFunc("datetime", func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	})
	return engine
}
