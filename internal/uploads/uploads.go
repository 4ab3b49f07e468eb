package uploads

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceholderURL is rendered in place of items that have no image.
const PlaceholderURL = "https://placehold.it/300x300.png?text=No+image"

// Store manages the upload directory and the filename policy for stored
// images. Extension checking is name-based only; file content is not
// inspected.
type Store struct {
	Dir string

	extensions map[string]struct{}
}

// New creates a Store for the given directory and allowed extensions
// (without leading dots, e.g. "jpg").
func New(dir string, extensions []string) *Store {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Store{Dir: dir, extensions: allowed}
}

// Allowed reports whether the original filename carries an allowed
// image extension.
func (s *Store) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := s.extensions[ext]
	return ok
}

// GenerateFilename builds a storage name for an upload: current timestamp
// with microsecond precision, a random token, and the original extension
// lowercased. Two uploads in the same microsecond still differ through the
// random token.
func (s *Store) GenerateFilename(original string) string {
	now := time.Now()
	stamp := fmt.Sprintf("%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)

	u := uuid.New()
	token := hex.EncodeToString(u[:])

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(original)))
	return stamp + "_" + token + ext
}

// Path resolves a stored filename to its filesystem path. Names carrying
// path separators or traversal segments are rejected.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid image filename: %q", filename)
	}
	return filepath.Join(s.Dir, filename), nil
}

// ImageURL returns the serving URL for a stored image filename, or the
// placeholder URL when the item has no image.
func ImageURL(filename string) string {
	if filename == "" {
		return PlaceholderURL
	}
	return "/image/" + filename + "/"
}
