package middleware

import (
	"net/url"

	"github.com/curioapp/curio/internal/session"
	"github.com/gofiber/fiber/v2"
)

// RequireLogin guards routes that need an authenticated actor. Anonymous
// requests are redirected to the login page with the originally requested
// URL attached as the post-login return target; the wrapped handler never
// runs for them.
func RequireLogin(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := sessions.State(c)
		if err != nil {
			return err
		}
		if state == nil {
			_ = sessions.AddFlash(c, "info", "You are not authorized to access this page. Please login.")
			return c.Redirect("/login/?next=" + url.QueryEscape(c.OriginalURL()))
		}
		return c.Next()
	}
}
