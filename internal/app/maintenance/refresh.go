package maintenance

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/userdeck/userdeck/internal/directory"
	"github.com/userdeck/userdeck/internal/models"
	"github.com/userdeck/userdeck/pkg/logger"
	"github.com/userdeck/userdeck/pkg/metrics"
)

const defaultRefreshSpec = "@every 1m"

// Refresher keeps the per-role account gauges in sync with the directory by
// sampling Stats on a schedule.
type Refresher struct {
	dir  directory.Directory
	cron *cron.Cron
	log  *zap.Logger

	schedule string
}

// Option customises the Refresher.
type Option func(*Refresher)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(r *Refresher) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the gauge refresh.
func WithSchedule(spec string) Option {
	return func(r *Refresher) {
		if spec != "" {
			r.schedule = spec
		}
	}
}

// NewRefresher constructs a Refresher with sensible defaults.
func NewRefresher(dir directory.Directory, opts ...Option) *Refresher {
	r := &Refresher{
		dir:      dir,
		schedule: defaultRefreshSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cron == nil {
		r.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return r
}

// Start registers the refresh job with the cron scheduler and launches it.
func (r *Refresher) Start() error {
	if r.dir == nil {
		return errors.New("maintenance: directory is required")
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			r.log.Warn("gauge refresh failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (r *Refresher) Stop() context.Context {
	if r.cron == nil {
		return context.Background()
	}
	return r.cron.Stop()
}

// RunOnce samples the directory once and publishes the per-role gauges.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := r.dir.Stats(ctx)
	if err != nil {
		return err
	}

	metrics.DirectoryAccounts.WithLabelValues(string(models.RoleUser)).Set(float64(stats.ByRole.User))
	metrics.DirectoryAccounts.WithLabelValues(string(models.RoleAdmin)).Set(float64(stats.ByRole.Admin))
	metrics.DirectoryAccounts.WithLabelValues(string(models.RoleSuperadmin)).Set(float64(stats.ByRole.Superadmin))

	return nil
}
