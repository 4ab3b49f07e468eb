package handlers

import (
	"github.com/curioapp/curio/internal/session"
	"github.com/gofiber/fiber/v2"
)

// renderPage renders an HTML template with the ambient page context:
// current session identity, pending flash notices, and the CSRF token when
// the route carries one.
func renderPage(c *fiber.Ctx, sessions *session.Manager, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	state, err := sessions.State(c)
	if err != nil {
		return err
	}
	flashes, err := sessions.PopFlashes(c)
	if err != nil {
		return err
	}
	data["CurrentUser"] = state
	data["Flashes"] = flashes
	data["CSRF"] = ""
	if token := c.Locals("csrf"); token != nil {
		data["CSRF"] = token
	}
	return c.Render(name, data)
}

// renderNotFound renders the HTML 404 page.
func renderNotFound(c *fiber.Ctx, sessions *session.Manager) error {
	c.Status(fiber.StatusNotFound)
	return renderPage(c, sessions, "404", nil)
}
