package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/repository"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/storage"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// forgetfulRepo acknowledges writes but never finds them again.
type forgetfulRepo struct {
	*repository.MemoryApplicationRepo
}

func (forgetfulRepo) FindByID(context.Context, string) (*models.Application, error) {
	return nil, models.ErrNotFound
}

type recordingArchive struct {
	mu   sync.Mutex
	puts map[string][]byte
	err  error
}

func (a *recordingArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.puts == nil {
		a.puts = map[string][]byte{}
	}
	a.puts[key] = data
	return nil
}

func newService(t *testing.T, repo repository.Applications, archive *recordingArchive) *ApplicationService {
	t.Helper()
	var arch storage.Archive
	if archive != nil {
		arch = archive
	}
	svc := NewApplicationService(repo, arch, zap.NewNop(), Options{UploadDir: t.TempDir(), VerifyWrites: true})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validAnswers() map[string]any {
	return map[string]any{
		"fullName":  "Иванов Иван Иванович",
		"phone":     "+7 900 123-45-67",
		"birthDate": "2000-06-15",
		"age":       float64(24),
		"course":    "3",
		"skills":    []any{"Word", "Excel"},
	}
}

func TestSubmit_Stores(t *testing.T) {
	repo := repository.NewMemoryApplicationRepo()
	svc := newService(t, repo, nil)

	raw := validAnswers()
	raw["submittedAt"] = "1999-01-01T00:00:00Z"

	app, err := svc.Submit(context.Background(), raw, nil)
	require.NoError(t, err)
	require.NotEmpty(t, app.ID)
	assert.Equal(t, "Иванов Иван Иванович", app.FullName)
	assert.Equal(t, "2024-06-15T10:00:00Z", app.SubmittedAt)
	require.NotNil(t, app.Course)
	assert.Equal(t, 3, *app.Course)
	assert.Equal(t, []string{"Word", "Excel"}, app.Skills)

	total, _, err := svc.Diagnostics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSubmit_MissingRequired(t *testing.T) {
	repo := repository.NewMemoryApplicationRepo()
	svc := newService(t, repo, nil)

	raw := validAnswers()
	raw["phone"] = "   "
	_, err := svc.Submit(context.Background(), raw, nil)

	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "phone")

	total, _, err := svc.Diagnostics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmit_RejectsFieldsOutsideRegistry(t *testing.T) {
	svc := newService(t, repository.NewMemoryApplicationRepo(), nil)
	raw := validAnswers()
	raw["password"] = "hunter2"

	_, err := svc.Submit(context.Background(), raw, nil)
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "unknown field", ve.Fields["password"])
}

func TestSubmit_AgeOutOfRange(t *testing.T) {
	repo := repository.NewMemoryApplicationRepo()
	svc := newService(t, repo, nil)
	raw := validAnswers()
	raw["age"] = float64(1e19)

	_, err := svc.Submit(context.Background(), raw, nil)
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Contains(t, ve.Fields, "age")

	total, _, err := svc.Diagnostics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmit_SkillsShapes(t *testing.T) {
	cases := map[string]struct {
		in   any
		want []string
	}{
		"absent": {in: nil, want: []string{}},
		"single": {in: "1С", want: []string{"1С"}},
		"list":   {in: []string{"Word", "Excel"}, want: []string{"Word", "Excel"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, repository.NewMemoryApplicationRepo(), nil)
			raw := validAnswers()
			delete(raw, "skills")
			if tc.in != nil {
				raw["skills"] = tc.in
			}
			app, err := svc.Submit(context.Background(), raw, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, app.Skills)
		})
	}
}

func TestSubmit_NotFoundAfterWrite(t *testing.T) {
	svc := newService(t, forgetfulRepo{repository.NewMemoryApplicationRepo()}, nil)
	_, err := svc.Submit(context.Background(), validAnswers(), nil)
	assert.ErrorIs(t, err, models.ErrNotFoundAfterWrite)
}

func TestSubmit_SkipsVerification(t *testing.T) {
	svc := newService(t, forgetfulRepo{repository.NewMemoryApplicationRepo()}, nil)
	svc.opts.VerifyWrites = false
	app, err := svc.Submit(context.Background(), validAnswers(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
}

func TestSubmit_StagedPhoto(t *testing.T) {
	archive := &recordingArchive{}
	svc := newService(t, repository.NewMemoryApplicationRepo(), archive)

	photo, err := svc.StagePhoto("me.png", "image/png", 4, bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
	require.NoError(t, err)
	defer photo.Remove()
	assert.True(t, strings.HasPrefix(filepath.Base(photo.Path), "photo-"))
	assert.Equal(t, ".png", filepath.Ext(photo.Path))

	app, err := svc.Submit(context.Background(), validAnswers(), photo)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw==", app.Photo)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, archive.puts[app.ID+"/photo.png"])

	require.NoError(t, photo.Remove())
	_, err = os.Stat(photo.Path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, photo.Remove())
}

func TestSubmit_InlinePhoto(t *testing.T) {
	archive := &recordingArchive{}
	svc := newService(t, repository.NewMemoryApplicationRepo(), archive)

	raw := validAnswers()
	raw["photo"] = "data:image/jpeg;base64,/9j/4A=="
	app, err := svc.Submit(context.Background(), raw, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(app.Photo, "data:image/jpeg;base64,"))
	assert.Contains(t, archive.puts, app.ID+"/photo.jpg")

	for _, bad := range []string{"/uploads/me.jpg", "data:image/png;base64,!!!!not-base64!!!!"} {
		raw["photo"] = bad
		_, err = svc.Submit(context.Background(), raw, nil)
		var ue *models.UploadError
		assert.True(t, errors.As(err, &ue), "%s: got %v", bad, err)
	}

	total, _, err := svc.Diagnostics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, archive.puts, 1)
}

func TestSubmit_ArchiveFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	archive := &recordingArchive{err: errors.New("bucket offline")}
	svc := newService(t, repository.NewMemoryApplicationRepo(), archive)
	svc.log = zap.New(core)

	raw := validAnswers()
	raw["photo"] = "data:image/gif;base64,R0lGOA=="
	app, err := svc.Submit(context.Background(), raw, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, app.Photo)
	assert.Equal(t, 1, logs.FilterMessage("photo archive failed").Len())
}

func TestStagePhoto_Rejects(t *testing.T) {
	svc := newService(t, repository.NewMemoryApplicationRepo(), nil)

	_, err := svc.StagePhoto("cv.pdf", "application/pdf", 10, strings.NewReader("%PDF"))
	var ue *models.UploadError
	assert.True(t, errors.As(err, &ue))

	big := bytes.NewReader(make([]byte, models.MaxPhotoBytes+1))
	_, err = svc.StagePhoto("big.jpg", "image/jpeg", 1, big)
	assert.True(t, errors.As(err, &ue))

	entries, err := os.ReadDir(svc.opts.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweepStaged(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "photo-1-a.jpg")
	fresh := filepath.Join(dir, "photo-2-b.jpg")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
	require.NoError(t, os.Chtimes(old, fixedNow.Add(-2*time.Hour), fixedNow.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(fresh, fixedNow, fixedNow))
	require.NoError(t, os.Chtimes(other, fixedNow.Add(-2*time.Hour), fixedNow.Add(-2*time.Hour)))

	n, err := sweepStaged(dir, time.Hour, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}
