// auth.go
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
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/curioapp/curio/internal/services"
	"github.com/curioapp/curio/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler serves the login page and the Google connect/disconnect flow.
type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Google   *services.Google
}

// Login handles GET /login/. The optional ?next= argument is the URL to
// return to after sign-in; it defaults to the catalog home.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	next := c.Query("next")
	if next == "" {
		next = "/catalog/"
	}
	return renderPage(c, h.Sessions, "login", fiber.Map{
		"Next":           next,
		"GoogleClientID": h.Google.ClientID,
	})
}

// Logout handles GET /logout/. For now this just disconnects from Google.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.Redirect("/google_disconnect")
}

// GoogleConnect handles POST /google_connect: the single pass of the
// authentication flow. The request body is the one-time authorization code
// posted by the sign-in callback.
func (h *AuthHandler) GoogleConnect(c *fiber.Ctx) error {
	ctx := c.UserContext()
	code := strings.TrimSpace(string(c.Body()))

	// Upgrade the authorization code into credentials.
	creds, err := h.Google.Exchange(ctx, code)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON("Failed to upgrade authorization code.")
	}

	// Check that the access token is valid. Abort on a provider-reported
	// token error.
	info, err := h.Google.Introspect(ctx, creds.AccessToken)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON("Failed to verify access token.")
	}
	if info.ErrorMsg != "" {
		return c.Status(fiber.StatusInternalServerError).JSON(info.ErrorMsg)
	}

	// Verify that the access token is used for the intended user.
	if info.UserID != creds.Subject {
		return c.Status(fiber.StatusUnauthorized).JSON("Token's user ID does not match given user ID.")
	}

	// Verify that the access token is valid for this app.
	if info.Audience != h.Google.ClientID {
		return c.Status(fiber.StatusUnauthorized).JSON("Token's client ID does not match app's client ID.")
	}

	// Duplicate connect calls are idempotent.
	state, err := h.Sessions.State(c)
	if err != nil {
		return err
	}
	if state != nil && state.AccessToken != "" && state.SubjectID == creds.Subject {
		return c.Status(fiber.StatusOK).JSON("Current user is already connected.")
	}

	profile, err := h.Google.FetchProfile(ctx, creds.AccessToken)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON("Failed to fetch user info.")
	}

	userID, err := services.EnsureUser(h.DB, profile.Name, profile.Email, profile.Picture)
	if err != nil {
		return err
	}

	if err := h.Sessions.SetState(c, &session.State{
		Provider:    "google",
		AccessToken: creds.AccessToken,
		SubjectID:   creds.Subject,
		Username:    profile.Name,
		Email:       profile.Email,
		Picture:     profile.Picture,
		UserID:      userID,
	}); err != nil {
		return err
	}

	_ = h.Sessions.AddFlash(c, "success", fmt.Sprintf("You are now logged in as %s", profile.Name))

	c.Type("html")
	return c.SendString(fmt.Sprintf(
		`<h1>Welcome, %s!</h1><p>%s</p><img src="%s" class="img-circle" width="200">`,
		html.EscapeString(profile.Name),
		html.EscapeString(profile.Email),
		html.EscapeString(profile.Picture),
	))
}

// GoogleDisconnect handles GET /google_disconnect: revoke the access token
// and clear the session. A failed revoke is reported but never blocks the
// logout; once a token was present the user always ends up signed out.
func (h *AuthHandler) GoogleDisconnect(c *fiber.Ctx) error {
	state, err := h.Sessions.State(c)
	if err != nil {
		return err
	}
	if state == nil || state.AccessToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON("Current user not connected.")
	}

	if err := h.Google.Revoke(c.UserContext(), state.AccessToken); err != nil {
		log.Printf("Failed to revoke access token (user logged out anyway): %v", err)
	}

	if err := h.Sessions.Clear(c); err != nil {
		return err
	}

	_ = h.Sessions.AddFlash(c, "success", "You are now logged out.")
	return c.Redirect("/catalog/")
}
