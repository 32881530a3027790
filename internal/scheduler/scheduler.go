// Package scheduler runs periodic jobs on a cron schedule.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pnl-dashboard/internal/dashboard"
	"pnl-dashboard/internal/observability"
)

// Runner wraps a seconds-enabled cron and hands every job the base context.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New creates a runner. Jobs receive baseCtx, so cancelling it stops in-flight work.
func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules job on spec (six fields, seconds first, or a descriptor like "@every 1m").
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

// Start runs the scheduler in its own goroutine.
func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}

// SheetsRefresher is the part of the dashboard service the refresh job needs.
type SheetsRefresher interface {
	SheetsStrategies() []string
	RefreshFromSheets(ctx context.Context, id, token string) (dashboard.Mutation, error)
}

// RefreshResult counts the outcome of one refresh pass.
type RefreshResult struct {
	Refreshed int
	Failed    int
}

// RefreshSheets re-fetches every sheets-backed strategy with token.
// A failing strategy is logged and skipped.
func RefreshSheets(ctx context.Context, svc SheetsRefresher, token string, logger *zap.Logger) RefreshResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res RefreshResult
	for _, id := range svc.SheetsStrategies() {
		if ctx.Err() != nil {
			break
		}
		m, err := svc.RefreshFromSheets(ctx, id, token)
		if err != nil {
			res.Failed++
			observability.RecordScheduledRefresh("failed")
			logger.Warn("scheduled sheets refresh failed", zap.String("strategy_id", id), zap.Error(err))
			continue
		}
		res.Refreshed++
		observability.RecordScheduledRefresh("ok")
		if m.Warning != "" {
			logger.Warn("scheduled sheets refresh not saved", zap.String("strategy_id", id), zap.String("warning", m.Warning))
		}
	}
	if res.Refreshed+res.Failed > 0 {
		logger.Info("scheduled sheets refresh done",
			zap.Int("refreshed", res.Refreshed),
			zap.Int("failed", res.Failed),
		)
	}
	return res
}

// AddSheetsRefresh schedules RefreshSheets on spec.
func (r *Runner) AddSheetsRefresh(spec string, svc SheetsRefresher, token string) (cron.EntryID, error) {
	return r.Add(spec, func(ctx context.Context) {
		RefreshSheets(ctx, svc, token, r.logger)
	})
}
