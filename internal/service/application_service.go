package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/form"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/repository"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/storage"
)

// DiagnosticSampleSize is how many records the diagnostic endpoint returns.
const DiagnosticSampleSize = 5

type Options struct {
	UploadDir    string
	VerifyWrites bool
}

type ApplicationService struct {
	apps    repository.Applications
	archive storage.Archive
	log     *zap.Logger
	opts    Options
	now     func() time.Time
}

// NewApplicationService wires the service. archive may be nil.
func NewApplicationService(apps repository.Applications, archive storage.Archive, log *zap.Logger, opts Options) *ApplicationService {
	return &ApplicationService{
		apps:    apps,
		archive: archive,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

// Submit validates, stamps and persists one questionnaire. photo is the staged
// multipart upload, if any; a data URI sent in the "photo" value is accepted
// as-is after validation.
func (s *ApplicationService) Submit(ctx context.Context, raw map[string]any, photo *StagedPhoto) (*models.Application, error) {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = v
	}
	inline := fields[models.PhotoField]
	delete(fields, models.PhotoField)
	delete(fields, "submittedAt")
	delete(fields, "_id")

	if missing := form.Validate(fields); len(missing) > 0 {
		return nil, &models.ValidationError{Fields: missing}
	}
	values, errs := form.Coerce(fields)
	if len(errs) > 0 {
		return nil, &models.ValidationError{Fields: errs}
	}

	var (
		photoType string
		photoData []byte
	)
	switch {
	case photo != nil:
		data, err := photo.read()
		if err != nil {
			return nil, fmt.Errorf("read staged photo: %w", err)
		}
		photoType, photoData = photo.ContentType, data
		values[models.PhotoField] = models.DataURI(photo.ContentType, data)
	case inline != nil:
		uri, err := inlinePhoto(inline)
		if err != nil {
			return nil, err
		}
		if uri != "" {
			decoded, err := models.DecodeDataURI(uri)
			if err != nil {
				return nil, err
			}
			values[models.PhotoField] = uri
			photoType, photoData = decoded.ContentType, decoded.Data
		}
	}

	values["submittedAt"] = s.now().UTC().Format(time.RFC3339)

	app, err := toApplication(values)
	if err != nil {
		return nil, err
	}
	id, err := s.apps.Insert(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	app.ID = id

	if s.opts.VerifyWrites {
		saved, err := s.apps.FindByID(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFoundAfterWrite
		}
		if err != nil {
			return nil, fmt.Errorf("verify application %s: %w", id, err)
		}
		app = saved
	}

	s.log.Info("application saved",
		zap.String("id", id),
		zap.Int("fields", len(values)),
		zap.Bool("photo", photoData != nil),
	)

	if photoData != nil {
		s.archivePhoto(ctx, id, photoType, photoData)
	}
	return app, nil
}

func (s *ApplicationService) archivePhoto(ctx context.Context, id, contentType string, data []byte) {
	if s.archive == nil {
		return
	}
	key := storage.PhotoKey(id, models.AllowedPhotoTypes[strings.ToLower(contentType)])
	if err := s.archive.Put(ctx, key, data, contentType); err != nil {
		s.log.Warn("photo archive failed", zap.String("id", id), zap.String("key", key), zap.Error(err))
	}
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	return s.apps.FindByID(ctx, id)
}

// Diagnostics reports the total number of stored records and a small sample.
func (s *ApplicationService) Diagnostics(ctx context.Context) (int, []models.Application, error) {
	return s.apps.CountAndSample(ctx, DiagnosticSampleSize)
}

func inlinePhoto(v any) (string, error) {
	var uri string
	switch t := v.(type) {
	case string:
		uri = t
	case []string:
		if len(t) != 1 {
			return "", &models.ValidationError{Fields: map[string]string{models.PhotoField: "expected a single value"}}
		}
		uri = t[0]
	default:
		return "", &models.ValidationError{Fields: map[string]string{models.PhotoField: "must be a data URI"}}
	}
	return strings.TrimSpace(uri), nil
}

func toApplication(values map[string]any) (*models.Application, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal application: %w", err)
	}
	var app models.Application
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("unmarshal application: %w", err)
	}
	return &app, nil
}
