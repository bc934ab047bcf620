package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/config"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/oxidb/oxidbtest"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/storage"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = driver
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.HTTP.UploadDir = t.TempDir()
	cfg.HTTP.ShutdownTimeout = 2 * time.Second
	cfg.Store.Timeout = 2 * time.Second
	return cfg
}

// startServer runs serve until the test ends and returns its base URL.
func startServer(t *testing.T, cfg *config.Config) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, cfg, zap.NewNop(), ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-errc:
		cancel()
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not start")
	}
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errc)
	})
	return "http://" + addr
}

func TestServe_MemoryStore(t *testing.T) {
	url := startServer(t, testConfig(t, "memory"))

	resp, err := http.Get(url + "/api/test")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 0, body["count"])
}

func TestServe_StoreUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := testConfig(t, "oxidb")
	cfg.OxiDB.Host = "127.0.0.1"
	cfg.OxiDB.Port = port

	err = serve(context.Background(), cfg, zap.NewNop(), nil)
	assert.ErrorContains(t, err, "connect to OxiDB")
}

func TestSubmitCommand_OxiDBWithArchive(t *testing.T) {
	db := oxidbtest.NewServer(t)
	cfg := testConfig(t, "oxidb")
	cfg.OxiDB.Host = db.Host()
	cfg.OxiDB.Port = db.Port()
	cfg.OxiDB.PoolSize = 1
	cfg.Archive.Driver = "oxidb"
	url := startServer(t, cfg)

	dir := t.TempDir()
	answers := filepath.Join(dir, "answers.yaml")
	require.NoError(t, os.WriteFile(answers, []byte(`
fullName: Соколов Дмитрий
phone: "+7 901 222-33-44"
birthDate: 2001-09-01
course: 2
gpa: 4.5
supplierMonitoring: true
skills: [Word, 1С]
`), 0o600))
	photo := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"submit", "--answers", answers, "--photo", photo, "--url", url})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Application submitted: 1")

	docs := db.Docs("applications")
	require.Len(t, docs, 1)
	assert.Equal(t, "Соколов Дмитрий", docs[0]["fullName"])
	assert.Equal(t, "Да", docs[0]["supplierMonitoring"])
	assert.Equal(t, []any{"Word", "1С"}, docs[0]["skills"])
	assert.True(t, strings.HasPrefix(docs[0]["photo"].(string), "data:image/png;base64,"))

	data, ct, ok := db.Object(storage.PhotoBucket, "1/photo.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data)
}

func TestSubmitCommand_Incomplete(t *testing.T) {
	answers := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(answers, []byte("fullName: Соколов Дмитрий\n"), 0o600))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"submit", "--answers", answers, "--url", "http://127.0.0.1:1"})
	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "incomplete")
	assert.Contains(t, out.String(), "phone: Контактный телефон обязателен")
}

func TestLoadAnswers_Rejects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unknown field": "nickname: Дима\n",
		"unknown skill": "skills: [Blender]\n",
		"derived age":   "age: 30\n",
	} {
		p := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		_, err := loadAnswers(p)
		assert.Error(t, err, name)
	}
}

func TestFieldsCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"fields"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "fullName")
	assert.Contains(t, out.String(), "required")
	assert.Contains(t, out.String(), "derived")

	out.Reset()
	cmd = NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"fields", "--json"})
	require.NoError(t, cmd.Execute())
	var sections []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &sections))
	assert.Len(t, sections, 6)
}
