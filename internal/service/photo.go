package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

// StagedPhoto is an uploaded photo written to the upload directory and
// waiting to be inlined into a record. Callers must Remove it.
type StagedPhoto struct {
	Path        string
	ContentType string

	once sync.Once
	err  error
}

// StagePhoto checks the upload and writes it to a uniquely named file.
// size is the declared size; the body is still capped while copying.
func (s *ApplicationService) StagePhoto(fileName, contentType string, size int64, r io.Reader) (*StagedPhoto, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if err := models.CheckPhoto(fileName, contentType, size); err != nil {
		return nil, err
	}

	dir := s.opts.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("photo-%d-%s%s", s.now().UnixNano(), uuid.NewString(), models.AllowedPhotoTypes[contentType])
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged photo: %w", err)
	}
	p := &StagedPhoto{Path: path, ContentType: contentType}

	n, err := io.Copy(f, io.LimitReader(r, models.MaxPhotoBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		p.Remove()
		return nil, fmt.Errorf("write staged photo: %w", err)
	}
	if err := models.CheckPhoto(fileName, contentType, n); err != nil {
		p.Remove()
		return nil, err
	}
	return p, nil
}

func (p *StagedPhoto) read() ([]byte, error) {
	return os.ReadFile(p.Path)
}

// Remove deletes the staged file. It is safe to call more than once.
func (p *StagedPhoto) Remove() error {
	if p == nil {
		return nil
	}
	p.once.Do(func() {
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.err = err
		}
	})
	return p.err
}

// sweepStaged removes staged photos older than maxAge, left behind by a crash.
func sweepStaged(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "photo-") {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed, nil
}

// SweepUploads removes stale staged photos from the upload directory.
func (s *ApplicationService) SweepUploads(maxAge time.Duration) {
	if s.opts.UploadDir == "" {
		return
	}
	n, err := sweepStaged(s.opts.UploadDir, maxAge, s.now())
	if err != nil {
		s.log.Warn("upload sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("removed stale uploads", zap.Int("count", n))
	}
}
