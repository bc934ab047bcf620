package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

// MemoryApplicationRepo keeps documents in process memory. Records go through
// the same document conversion as the real stores.
type MemoryApplicationRepo struct {
	mu   sync.RWMutex
	docs []map[string]any
}

func NewMemoryApplicationRepo() *MemoryApplicationRepo {
	return &MemoryApplicationRepo{}
}

func (r *MemoryApplicationRepo) EnsureIndexes(context.Context) error { return nil }

func (r *MemoryApplicationRepo) Insert(ctx context.Context, app *models.Application) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, err := applicationToDoc(app)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc["_id"] = id

	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()
	return id, nil
}

func (r *MemoryApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.docs {
		if d["_id"] == id {
			return docToApplication(copyDoc(d))
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryApplicationRepo) CountAndSample(ctx context.Context, limit int) (int, []models.Application, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := min(limit, len(r.docs))
	docs := make([]map[string]any, 0, n)
	for _, d := range r.docs[:n] {
		docs = append(docs, copyDoc(d))
	}
	apps, err := docsToApplications(docs)
	if err != nil {
		return 0, nil, err
	}
	return len(r.docs), apps, nil
}

func copyDoc(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
