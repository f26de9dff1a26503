package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/pkg/config"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

// DashboardRepository loads the entity counters.
type DashboardRepository interface {
	Counts(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardAttendanceSource provides the day's attendance rate.
type DashboardAttendanceSource interface {
	RateForDate(ctx context.Context, date time.Time) (float64, error)
}

// DashboardFeeSource provides the term's fee collection total.
type DashboardFeeSource interface {
	CollectedForTerm(ctx context.Context, term string, year int) (float64, error)
}

// DashboardCache stores computed stats between requests.
type DashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService assembles the admin landing page statistics, serving from
// cache when enabled.
type DashboardService struct {
	dashboard  DashboardRepository
	attendance DashboardAttendanceSource
	fees       DashboardFeeSource
	cache      DashboardCache
	cfg        config.DashboardConfig
	logger     *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(
	dashboard DashboardRepository,
	attendance DashboardAttendanceSource,
	fees DashboardFeeSource,
	cache DashboardCache,
	cfg config.DashboardConfig,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		dashboard:  dashboard,
		attendance: attendance,
		fees:       fees,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
	}
}

// Stats returns the school-wide aggregates for the given term. The
// aggregation runs under its own deadline and a cache hit skips the database
// entirely.
func (s *DashboardService) Stats(ctx context.Context, term string, year int) (*models.DashboardStats, error) {
	if s.cfg.CacheEnabled && s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	stats, err := s.dashboard.Counts(ctx)
	if err != nil {
		return nil, s.dashboardError(ctx, err, "could not load dashboard counts")
	}
	rate, err := s.attendance.RateForDate(ctx, time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, s.dashboardError(ctx, err, "could not compute attendance rate")
	}
	stats.AttendanceRateToday = rate

	collected, err := s.fees.CollectedForTerm(ctx, term, year)
	if err != nil {
		return nil, s.dashboardError(ctx, err, "could not sum fee collections")
	}
	stats.FeesCollectedTerm = collected

	if s.cfg.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *DashboardService) dashboardError(ctx context.Context, err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("dashboard query timed out", zap.Error(err))
		return appErrors.ErrTimeout
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
