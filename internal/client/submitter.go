package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/form"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

// BannerDuration is how long the success banner stays up.
const BannerDuration = 3 * time.Second

var ErrSubmitting = errors.New("a submission is already in flight")

// Submitter drives one form session: it gates on validation, sends the
// snapshot, and tracks the in-flight flag and success banner.
type Submitter struct {
	client *Client
	log    *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	submitting  bool
	bannerUntil time.Time
}

func NewSubmitter(c *Client, log *zap.Logger) *Submitter {
	return &Submitter{client: c, log: log, now: time.Now}
}

// Submit validates the state and, if it passes, sends it. Validation
// failures come back as *models.ValidationError without a request being made.
// Transport failures are logged and returned; the state is left untouched.
func (s *Submitter) Submit(ctx context.Context, state *form.State) (*Result, error) {
	snap := state.Snapshot(s.now())
	if errs := form.Validate(snap.Values); len(errs) > 0 {
		return nil, &models.ValidationError{Fields: errs}
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitting
	}
	s.submitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	res, err := s.client.Submit(ctx, snap)
	if err != nil {
		s.log.Error("submit application failed", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.bannerUntil = s.now().Add(BannerDuration)
	s.mu.Unlock()
	s.log.Info("application submitted", zap.String("id", res.ApplicationID))
	return res, nil
}

func (s *Submitter) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// BannerVisible reports whether the success banner is showing at now.
func (s *Submitter) BannerVisible(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.bannerUntil)
}
