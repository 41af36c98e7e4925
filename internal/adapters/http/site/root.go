// Package site serves the welcome document at the service root.
package site

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RootHandler answers GET / with a fixed welcome message.
type RootHandler struct {
	message string
}

// NewRootHandler creates a root handler for message.
func NewRootHandler(message string) *RootHandler {
	return &RootHandler{message: message}
}

// Register attaches the root route to r.
func Register(_ context.Context, r chi.Router, message string) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", NewRootHandler(message).HandleRoot)
}

// HandleRoot writes {"message": ...}.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": h.message})
}
