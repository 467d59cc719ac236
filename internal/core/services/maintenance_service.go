package services

import (
	"context"
	"fmt"
	"time"

	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MaintenanceService runs background housekeeping on a cron schedule.
// It only touches session data, never domain records.
type MaintenanceService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	log              *zap.Logger
	cron             *cron.Cron
	timeout          time.Duration
}

func NewMaintenanceService(refreshTokenRepo repositories.RefreshTokenRepository, log *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		refreshTokenRepo: refreshTokenRepo,
		log:              log,
		cron:             cron.New(),
		timeout:          time.Minute,
	}
}

// Start schedules the token cleanup using five-field cron syntax.
func (s *MaintenanceService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.PurgeRefreshTokens(ctx)
	}); err != nil {
		return fmt.Errorf("invalid token cleanup schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.log.Info("🚀 Maintenance scheduler started", zap.String("token_cleanup", schedule))
	return nil
}

// Stop waits for a running job to finish.
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("🛑 Maintenance scheduler stopped")
}

// PurgeRefreshTokens deletes expired and revoked refresh tokens.
func (s *MaintenanceService) PurgeRefreshTokens(ctx context.Context) int64 {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		s.log.Error("❌ Refresh token cleanup failed", zap.Error(err))
		return 0
	}
	metrics.RecordRefreshTokensPurged(n)
	if n > 0 {
		s.log.Info("🗑️ Purged refresh tokens", zap.Int64("count", n))
	}
	return n
}
