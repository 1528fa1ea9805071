package diff

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
)

// DefaultRemoteTimeout bounds how long a remote snapshot may take
const DefaultRemoteTimeout = 2 * time.Minute

// LocalSource loads the desired configuration
type LocalSource interface {
	Load(ctx context.Context) (*models.Configuration, error)
}

// RemoteSource retrieves the observed configuration without persisting it
type RemoteSource interface {
	RetrieveWithoutSaving(ctx context.Context) (*models.Configuration, error)
}

// Comparison is a diff together with the snapshots it was computed from
type Comparison struct {
	Local   *models.Configuration
	Remote  *models.Configuration
	Summary *models.DiffSummary
}

// Service loads both sides of a comparison and diffs them
type Service struct {
	local   LocalSource
	remote  RemoteSource
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a diff service. A non-positive timeout uses
// DefaultRemoteTimeout.
func NewService(local LocalSource, remote RemoteSource, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{local: local, remote: remote, timeout: timeout, logger: logger}
}

// Compare returns the diff summary of local against remote
func (s *Service) Compare(ctx context.Context) (*models.DiffSummary, error) {
	cmp, err := s.Diff(ctx)
	if err != nil {
		return nil, err
	}
	return cmp.Summary, nil
}

// Diff loads both snapshots and compares them
func (s *Service) Diff(ctx context.Context) (*Comparison, error) {
	local, err := s.local.Load(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindLocalConfig) {
			return nil, err
		}
		return nil, apperr.LocalConfig("", err)
	}
	if local == nil {
		local = models.Empty()
	}

	start := time.Now()
	remote, err := s.retrieveRemote(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("retrieved remote configuration", "duration", time.Since(start))

	summary, err := Compare(local, remote)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("computed diff",
		"total", summary.TotalChanges,
		"creates", summary.Creates,
		"updates", summary.Updates,
		"deletes", summary.Deletes)

	return &Comparison{Local: local, Remote: remote, Summary: summary}, nil
}

type retrieval struct {
	cfg *models.Configuration
	err error
}

// retrieveRemote races the remote fetch against the configured timeout
func (s *Service) retrieveRemote(ctx context.Context) (*models.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan retrieval, 1)
	go func() {
		cfg, err := s.remote.RetrieveWithoutSaving(ctx)
		done <- retrieval{cfg: cfg, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, apperr.RemoteTimeout(s.timeout)
			}
			if apperr.Is(r.err, apperr.KindRemoteConfig) {
				return nil, r.err
			}
			return nil, apperr.RemoteConfig(r.err)
		}
		if r.cfg == nil {
			return models.Empty(), nil
		}
		return r.cfg, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.RemoteTimeout(s.timeout)
		}
		return nil, apperr.RemoteConfig(ctx.Err())
	}
}
