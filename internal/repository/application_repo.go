package repository

import (
	"context"
	"errors"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/db"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/oxidb"
)

// ApplicationRepo stores applications in OxiDB.
type ApplicationRepo struct {
	pool *db.Pool
}

func NewApplicationRepo(pool *db.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

func (r *ApplicationRepo) EnsureIndexes(ctx context.Context) error {
	c, release := r.pool.Acquire()
	defer release()
	if err := c.CreateIndex(ctx, ApplicationsCollection, "submittedAt"); err != nil {
		return err
	}
	return c.CreateIndex(ctx, ApplicationsCollection, "phone")
}

func (r *ApplicationRepo) Insert(ctx context.Context, app *models.Application) (string, error) {
	doc, err := applicationToDoc(app)
	if err != nil {
		return "", err
	}
	c, release := r.pool.Acquire()
	defer release()
	result, err := c.Insert(ctx, ApplicationsCollection, doc)
	if err != nil {
		return "", err
	}
	id := extractID(result)
	if id == "" {
		return "", errors.New("oxidb: insert response carried no id")
	}
	return id, nil
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	c, release := r.pool.Acquire()
	defer release()
	doc, err := c.FindOne(ctx, ApplicationsCollection, map[string]any{"_id": toNumericID(id)})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, models.ErrNotFound
	}
	return docToApplication(doc)
}

func (r *ApplicationRepo) CountAndSample(ctx context.Context, limit int) (int, []models.Application, error) {
	c, release := r.pool.Acquire()
	defer release()
	total, err := c.Count(ctx, ApplicationsCollection, map[string]any{})
	if err != nil {
		return 0, nil, err
	}
	docs, err := c.Find(ctx, ApplicationsCollection, map[string]any{}, &oxidb.FindOptions{Limit: &limit})
	if err != nil {
		return 0, nil, err
	}
	apps, err := docsToApplications(docs)
	if err != nil {
		return 0, nil, err
	}
	return total, apps, nil
}
