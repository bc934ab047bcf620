package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/service"
)

type DiagnosticHandler struct {
	svc *service.ApplicationService
	log *zap.Logger
}

func NewDiagnosticHandler(svc *service.ApplicationService, log *zap.Logger) *DiagnosticHandler {
	return &DiagnosticHandler{svc: svc, log: log}
}

func (h *DiagnosticHandler) Test(w http.ResponseWriter, r *http.Request) {
	count, docs, err := h.svc.Diagnostics(r.Context())
	if err != nil {
		h.log.Error("diagnostics failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": count,
		"docs":  docs,
	})
}
