package repository

import (
	"context"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

// ApplicationsCollection is the collection every backend writes to.
const ApplicationsCollection = "applications"

// Applications persists submitted questionnaires. Records are append-only:
// there is no update or delete.
type Applications interface {
	// Insert stores one record and returns the store-assigned id.
	Insert(ctx context.Context, app *models.Application) (string, error)
	// FindByID returns models.ErrNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (*models.Application, error)
	// CountAndSample returns the total count and up to limit records.
	CountAndSample(ctx context.Context, limit int) (int, []models.Application, error)
	EnsureIndexes(ctx context.Context) error
}

var (
	_ Applications = (*ApplicationRepo)(nil)
	_ Applications = (*MongoApplicationRepo)(nil)
	_ Applications = (*MemoryApplicationRepo)(nil)
)
