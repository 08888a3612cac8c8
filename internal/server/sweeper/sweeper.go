// Package sweeper periodically removes sessions whose token has expired.
package sweeper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/tripauth/internal/logging"
)

// SessionSweeper is implemented by services.AuthService.
type SessionSweeper interface {
	SweepExpiredSessions(ctx context.Context) (int, error)
}

// Five-field expressions in UTC plus descriptors such as "@every 1h".
var scheduleParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// ParseSchedule validates expr.
func ParseSchedule(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("sweep schedule is required")
	}
	if strings.Contains(strings.ToUpper(clean), "TZ=") {
		return nil, fmt.Errorf("sweep schedule must be UTC-only (timezone prefixes are not allowed)")
	}
	s, err := scheduleParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule: %w", err)
	}
	return s, nil
}

type Sweeper struct {
	schedule cron.Schedule
	target   SessionSweeper
	logger   logging.Logger
}

func New(expr string, target SessionSweeper, l logging.Logger) (*Sweeper, error) {
	s, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{schedule: s, target: target, logger: l.With("module", "sweeper")}, nil
}

// Run schedules the sweep and blocks until ctx is cancelled and any
// running sweep has finished.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.sweep(ctx) }))

	s.logger.Info(ctx, "Starting session sweeper")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info(context.Background(), "Session sweeper stopped")
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.target.SweepExpiredSessions(ctx)
	if err != nil {
		s.logger.Error(ctx, "session sweep failed", "error", err)
		return
	}
	s.logger.Info(ctx, "session sweep done", "removed", n)
}
