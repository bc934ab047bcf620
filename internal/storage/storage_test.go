package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/db"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/oxidb/oxidbtest"
)

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "42/photo.jpg", PhotoKey("42", ".jpg"))
	assert.Equal(t, "65f0c1/photo.png", PhotoKey("65f0c1", ".png"))
}

func TestOxiArchive_Put(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	pool, err := db.NewPool(srv.Host(), srv.Port(), 1, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	archive := NewOxiArchive(pool, "")
	require.NoError(t, archive.EnsureBucket(ctx))
	require.NoError(t, archive.Put(ctx, PhotoKey("1", ".png"), []byte("png-bytes"), "image/png"))

	data, ct, ok := srv.Object(PhotoBucket, "1/photo.png")
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", ct)
}

func TestOxiArchive_MissingBucket(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	pool, err := db.NewPool(srv.Host(), srv.Port(), 1, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	err = NewOxiArchive(pool, "nowhere").Put(context.Background(), "k", []byte("x"), "image/gif")
	assert.ErrorContains(t, err, "bucket not found")
}

func TestS3Archive_Put(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	archive, err := NewS3Archive(context.Background(), S3Options{
		Endpoint:  ts.URL,
		Region:    "us-east-1",
		Bucket:    "photos",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	require.NoError(t, archive.Put(context.Background(), PhotoKey("7", ".jpg"), []byte("jpeg"), "image/jpeg"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/photos/7/photo.jpg", path)
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
