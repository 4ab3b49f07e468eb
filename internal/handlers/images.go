// images.go
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
	"os"

	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/uploads"
	"github.com/gofiber/fiber/v2"
)

// ImageHandler serves uploaded images back by their stored filename.
type ImageHandler struct {
	Sessions *session.Manager
	Uploads  *uploads.Store
}

// ViewImage handles GET /image/:filename/
func (h *ImageHandler) ViewImage(c *fiber.Ctx) error {
	path, err := h.Uploads.Path(c.Params("filename"))
	if err != nil {
		return renderNotFound(c, h.Sessions)
	}
	if _, err := os.Stat(path); err != nil {
		return renderNotFound(c, h.Sessions)
	}
	return c.SendFile(path)
}
