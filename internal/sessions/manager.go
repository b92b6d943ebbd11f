package sessions

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/booksearch/internal/config"
	"github.com/mrlokans/booksearch/internal/logger"
	"github.com/mrlokans/booksearch/internal/state"
)

const (
	// SessionKeyStoreID is the session value naming the session's state store.
	SessionKeyStoreID = "store_id"

	// ContextKeyManager is the gin context key holding the *Manager that
	// loaded the request's session.
	ContextKeyManager = "session_manager"

	// ContextKeyStore caches the request's *state.Store once it is resolved.
	ContextKeyStore = "state_store"
)

// Manager wraps scs.SessionManager and binds each session to a state store.
type Manager struct {
	*scs.SessionManager
	registry *Registry
}

// NewManager creates a manager backed by an in-memory session store.
func NewManager(registry *Registry, cfg config.Session) *Manager {
	sm := scs.New()
	sm.Store = memstore.New()

	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.Lifetime / 2

	sm.Cookie.Name = "booksearch_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm, registry: registry}
}

// Registry returns the registry the manager resolves stores from.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// StoreFor returns the state store bound to the session in r, binding a new
// one if the session has none yet.
func (m *Manager) StoreFor(r *http.Request) *state.Store {
	ctx := r.Context()
	id := m.GetString(ctx, SessionKeyStoreID)
	if id == "" {
		id = uuid.NewString()
		m.Put(ctx, SessionKeyStoreID, id)
		logger.For(ctx).WithField("store_id", id).Debug("bound new state store to session")
	}
	return m.registry.Get(id)
}

// LookupStore returns the state store already bound to the session in r, if any.
func (m *Manager) LookupStore(r *http.Request) (*state.Store, bool) {
	id := m.GetString(r.Context(), SessionKeyStoreID)
	if id == "" {
		return nil, false
	}
	return m.registry.Lookup(id)
}

// StoreFrom returns the request session's store, creating and binding one on
// first use. It returns nil when Middleware did not run.
func StoreFrom(c *gin.Context) *state.Store {
	if v, ok := c.Get(ContextKeyStore); ok {
		store, _ := v.(*state.Store)
		return store
	}
	m := managerFrom(c)
	if m == nil {
		return nil
	}
	store := m.StoreFor(c.Request)
	c.Set(ContextKeyStore, store)
	return store
}

// LookupStoreFrom returns the request session's store without creating one.
// Read-only handlers use it so that anonymous reads hold no memory.
func LookupStoreFrom(c *gin.Context) (*state.Store, bool) {
	if v, ok := c.Get(ContextKeyStore); ok {
		store, _ := v.(*state.Store)
		return store, store != nil
	}
	m := managerFrom(c)
	if m == nil {
		return nil, false
	}
	store, ok := m.LookupStore(c.Request)
	if ok {
		c.Set(ContextKeyStore, store)
	}
	return store, ok
}

func managerFrom(c *gin.Context) *Manager {
	v, ok := c.Get(ContextKeyManager)
	if !ok {
		return nil
	}
	m, _ := v.(*Manager)
	return m
}
