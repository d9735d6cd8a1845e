package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/store"
)

// HousekeepingService periodically purges expired one-time tokens and
// revoked-token denylist entries so those tables do not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds the purge worker. A non-positive interval
// defaults to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop shuts the worker down, blocking until any in-progress purge finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Purge(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Purge(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Purge deletes expired records. Each deletion is independent; a failure in
// one does not stop the others.
func (s *HousekeepingService) Purge(ctx context.Context) {
	for _, typ := range []domain.TokenType{
		domain.TokenTypeEmailConfirmation,
		domain.TokenTypeResetPassword,
		domain.TokenTypeRefreshToken,
	} {
		if err := s.Store.Tokens().DeleteExpiredTokens(ctx, typ); err != nil {
			s.Logger.Error("expired token purge failed",
				slog.String("token_type", string(typ)),
				slog.Any("err", err),
			)
		}
	}

	if err := s.Store.RevokedTokens().DeleteExpiredRevokedTokens(ctx); err != nil {
		s.Logger.Error("revoked token purge failed", slog.Any("err", err))
	}

	s.Logger.Debug("housekeeping purge completed")
}
