// internal/app/features/errors/render.go
package errors

import "net/http"

// Handler serves the fallback routes of the API.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusNotFound, Body{Error: "not found"})
}

// MethodNotAllowed answers known paths called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusMethodNotAllowed, Body{Error: "method not allowed"})
}
