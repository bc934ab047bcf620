package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.HTTP.CORSOrigin)
	assert.Equal(t, "oxidb", cfg.Store.Driver)
	assert.True(t, cfg.Store.VerifyWrites)
	assert.True(t, cfg.Development())
	assert.Empty(t, cfg.Archive.Driver)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anketa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
http:
  addr: ":8080"
  shutdown_timeout: 3s
store:
  driver: mongo
  verify_writes: false
mongo:
  uri: mongodb://db:27017/anketa_db
archive:
  driver: s3
  bucket: photos
`), 0o600))

	t.Setenv("PORT", "9000")
	t.Setenv("MONGODB_DATABASE", "anketa_test")
	t.Setenv("ANKETA_VERIFY_WRITES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.True(t, cfg.Store.VerifyWrites)
	assert.Equal(t, "mongodb://db:27017/anketa_db", cfg.Mongo.URI)
	assert.Equal(t, "anketa_test", cfg.Mongo.Database)
	assert.Equal(t, "photos", cfg.Archive.Bucket)
	assert.Equal(t, 4444, cfg.OxiDB.Port)
}

func TestLoad_NodeEnvAccepted(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Production())

	t.Setenv("ANKETA_ENV", "development")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Development())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("ANKETA_STORE", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "store.driver")

	t.Setenv("ANKETA_STORE", "memory")
	t.Setenv("ANKETA_ARCHIVE", "oxidb")
	_, err = Load("")
	assert.ErrorContains(t, err, "requires the oxidb store")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("ANKETA_POOL_SIZE", "8")
	assert.Equal(t, 8, getEnvInt("ANKETA_POOL_SIZE", 3))
	t.Setenv("ANKETA_POOL_SIZE", "eight")
	assert.Equal(t, 3, getEnvInt("ANKETA_POOL_SIZE", 3))
}
