package session

import (
	"encoding/gob"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

const (
	stateKey   = "auth_state"
	flashesKey = "flashes"
)

// State is the authenticated identity carried by a session. All fields are
// populated together by the sign-in flow; a session without a State is
// anonymous.
type State struct {
	Provider    string
	AccessToken string
	SubjectID   string
	Username    string
	Email       string
	Picture     string
	UserID      uint64
}

// Flash is a one-shot notice displayed on the next rendered page.
// Category is one of "success", "error", "info".
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(State{})
	gob.Register([]Flash{})
}

// Manager wraps fiber's session store behind typed accessors so handlers
// never touch raw session keys.
type Manager struct {
	store *fibersession.Store
}

// NewManager creates a session manager with in-memory storage.
func NewManager(expiration time.Duration) *Manager {
	store := fibersession.New(fibersession.Config{
		Expiration:     expiration,
		KeyLookup:      "cookie:curio_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	return &Manager{store: store}
}

// State returns the authenticated identity for the request, or nil when the
// session is anonymous.
func (m *Manager) State(c *fiber.Ctx) (*State, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, err
	}
	v := sess.Get(stateKey)
	if v == nil {
		return nil, nil
	}
	st, ok := v.(State)
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// SetState stores the authenticated identity in the session.
func (m *Manager) SetState(c *fiber.Ctx, st *State) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(stateKey, *st)
	return sess.Save()
}

// Clear destroys the session entirely (identity and pending flashes).
func (m *Manager) Clear(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// AddFlash queues a one-shot notice for the next rendered page.
func (m *Manager) AddFlash(c *fiber.Ctx, category, message string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	flashes, _ := sess.Get(flashesKey).([]Flash)
	flashes = append(flashes, Flash{Category: category, Message: message})
	sess.Set(flashesKey, flashes)
	return sess.Save()
}

// PopFlashes returns the queued notices and removes them from the session.
func (m *Manager) PopFlashes(c *fiber.Ctx) ([]Flash, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, err
	}
	flashes, _ := sess.Get(flashesKey).([]Flash)
	if len(flashes) > 0 {
		sess.Delete(flashesKey)
		if err := sess.Save(); err != nil {
			return nil, err
		}
	}
	return flashes, nil
}
