package handler

import (
	"net/http"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/form"
)

type FormHandler struct{}

func NewFormHandler() *FormHandler {
	return &FormHandler{}
}

// Get returns the questionnaire layout for client rendering.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sections": form.Sections()})
}
