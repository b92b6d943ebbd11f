package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booksearch/internal/logger"
	"github.com/mrlokans/booksearch/internal/sessions"
	"github.com/mrlokans/booksearch/internal/state"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondValidationError sends a 400 response carrying the binding error as details.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid request",
		Code:    "validation_failed",
		Details: err.Error(),
	})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, message string) {
	logger.For(c.Request.Context()).Errorf("Internal error: %s", message)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Store Access ---

// requireStore returns the session's state store, binding one on first use,
// or responds with a 500 and returns nil, false.
func requireStore(c *gin.Context) (*state.Store, bool) {
	store := sessions.StoreFrom(c)
	if store == nil {
		respondInternalError(c, "no state store bound to request")
		return nil, false
	}
	return store, true
}

// snapshotFor returns the session store's state. Sessions that never
// dispatched an action read the initial state, and no store is created.
func snapshotFor(c *gin.Context) (state.RootState, bool) {
	if _, ok := c.Get(sessions.ContextKeyManager); !ok {
		respondInternalError(c, "no session bound to request")
		return state.RootState{}, false
	}
	if store, ok := sessions.LookupStoreFrom(c); ok {
		return store.Snapshot(), true
	}
	return state.InitialState(), true
}
