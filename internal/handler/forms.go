package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/athens-bank/athens/internal/forms"
)

// FormsHandler serves the auth form schemas the client renders.
type FormsHandler struct{}

// NewFormsHandler creates a new FormsHandler.
func NewFormsHandler() *FormsHandler {
	return &FormsHandler{}
}

// Schema handles GET /api/v1/forms/{mode}. Unknown modes fall back to the
// sign-in schema.
func (h *FormsHandler) Schema(w http.ResponseWriter, r *http.Request) {
	mode := forms.Mode(chi.URLParam(r, "mode"))
	if mode != forms.ModeSignUp {
		mode = forms.ModeSignIn
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   mode,
		"fields": forms.Schema(mode),
	})
}
