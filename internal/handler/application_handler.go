package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/service"
)

type ApplicationHandler struct {
	svc *service.ApplicationService
	log *zap.Logger
	dev bool
}

// NewApplicationHandler builds the ingestion handler. In development mode
// internal error details are included in 500 responses.
func NewApplicationHandler(svc *service.ApplicationService, log *zap.Logger, dev bool) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, log: log, dev: dev}
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var (
		raw   map[string]any
		photo *service.StagedPhoto
	)

	// Parse multipart; anything else is treated as a JSON body.
	if err := r.ParseMultipartForm(8 << 20); err == nil {
		defer r.MultipartForm.RemoveAll()

		raw = make(map[string]any, len(r.MultipartForm.Value))
		for k, v := range r.MultipartForm.Value {
			raw[k] = v
		}
		if files := r.MultipartForm.File[models.PhotoField]; len(files) > 0 {
			if len(files) > 1 {
				writeError(w, http.StatusBadRequest, "only one photo may be uploaded")
				return
			}
			fh := files[0]
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "failed to read photo")
				return
			}
			photo, err = h.svc.StagePhoto(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
			f.Close()
			if err != nil {
				h.fail(w, err)
				return
			}
			defer func() {
				if err := photo.Remove(); err != nil {
					h.log.Warn("staged photo not removed", zap.String("path", photo.Path), zap.Error(err))
				}
			}()
		}
	} else if err := readJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if raw == nil {
		raw = map[string]any{}
	}

	app, err := h.svc.Submit(r.Context(), raw, photo)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"message":       "Application submitted successfully",
		"applicationId": app.ID,
		"data":          app,
	})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	app, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) fail(w http.ResponseWriter, err error) {
	var (
		ve *models.ValidationError
		ue *models.UploadError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Validation failed",
			"details": ve.Fields,
		})
	case errors.As(err, &ue):
		writeError(w, http.StatusBadRequest, ue.Error())
	default:
		h.log.Error("save application failed", zap.Error(err))
		body := map[string]any{"success": false, "error": "Failed to save application"}
		if h.dev {
			body["details"] = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}
