// Package session holds per-visitor state: the page being viewed and the
// cart being assembled.
//
// Sessions are created and destroyed explicitly, or expire after a TTL of
// inactivity. A Manager hands out copies; callers mutate the copy and Save
// it back. Concurrent requests for one session are serialized with Locks.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/foodsheet/internal/cart"
	"github.com/roach88/foodsheet/internal/model"
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 12 * time.Hour

// ErrSessionNotFound indicates an unknown, deleted or expired session id.
var ErrSessionNotFound = errors.New("session not found")

// Page is the view a session is on.
type Page string

const (
	PageOrders          Page = "orders"
	PageProducts        Page = "products"
	PageOrderManagement Page = "order_management"
)

// Pages lists every page in sidebar order.
var Pages = []Page{PageOrders, PageProducts, PageOrderManagement}

// ParsePage parses a page name.
func ParsePage(s string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Pages {
		if p == v {
			return v, nil
		}
	}
	return "", model.NewValidationError(model.ErrCodeInvalidInput, "page", fmt.Sprintf("unknown page %q", s))
}

// Session is one visitor's state.
type Session struct {
	ID        string     `json:"id"`
	Page      Page       `json:"page"`
	Cart      *cart.Cart `json:"cart"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	cp := *s
	if s.Cart != nil {
		cp.Cart = s.Cart.Clone()
	} else {
		cp.Cart = cart.New()
	}
	return &cp
}

// Manager stores sessions.
type Manager interface {
	// Create starts a session on the orders page with an empty cart.
	Create(ctx context.Context) (*Session, error)

	// Get returns a copy of the session. Returns ErrSessionNotFound for
	// unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)

	// Save writes s back and refreshes its TTL. Returns ErrSessionNotFound
	// if the session no longer exists.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases background resources.
	Close() error
}

// Config configures a Manager.
type Config struct {
	TTL time.Duration

	// CleanupInterval is how often the memory manager sweeps expired
	// sessions. Default: TTL/4, at least one second.
	CleanupInterval time.Duration

	Clock model.Clock
	IDs   model.IDGenerator
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = c.TTL / 4
		if c.CleanupInterval < time.Second {
			c.CleanupInterval = time.Second
		}
	}
	if c.Clock == nil {
		c.Clock = model.SystemClock{}
	}
	if c.IDs == nil {
		c.IDs = uuidGenerator{}
	}
	return c
}

func newSession(cfg Config) *Session {
	now := cfg.Clock.Now()
	return &Session{
		ID:        cfg.IDs.Generate(),
		Page:      PageOrders,
		Cart:      cart.New(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(cfg.TTL),
	}
}
