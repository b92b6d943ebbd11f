package http

import (
	"time"

	"github.com/mrlokans/booksearch/internal/sessions"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Sessions binds each client session to its own state store
	Sessions *sessions.Manager

	// FetchTimeout bounds a single search or detail request served by the API.
	// Zero means the request context alone governs it.
	FetchTimeout time.Duration

	// Version is reported by the health endpoint
	Version string
}
