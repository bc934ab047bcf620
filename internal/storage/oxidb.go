package storage

import (
	"context"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/db"
)

// PhotoBucket is the OxiDB bucket holding archived photos.
const PhotoBucket = "anketa_photos"

// OxiArchive writes blobs into an OxiDB bucket.
type OxiArchive struct {
	pool   *db.Pool
	bucket string
}

func NewOxiArchive(pool *db.Pool, bucket string) *OxiArchive {
	if bucket == "" {
		bucket = PhotoBucket
	}
	return &OxiArchive{pool: pool, bucket: bucket}
}

func (a *OxiArchive) EnsureBucket(ctx context.Context) error {
	c, release := a.pool.Acquire()
	defer release()
	return c.CreateBucket(ctx, a.bucket)
}

func (a *OxiArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	c, release := a.pool.Acquire()
	defer release()
	return c.PutObject(ctx, a.bucket, key, data, contentType)
}
