package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes idle sessions.
type Janitor struct {
	cron    *cron.Cron
	manager *Manager
	ttl     time.Duration
}

// NewJanitor schedules idle-session cleanup on a standard five-field cron spec
// (or a descriptor such as "@every 5m").
func NewJanitor(manager *Manager, schedule string, ttl time.Duration) (*Janitor, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	j := &Janitor{
		cron:    cron.New(),
		manager: manager,
		ttl:     ttl,
	}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start runs the schedule in the background.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (j *Janitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := j.manager.ExpireIdle(ctx, j.ttl)
	if err != nil {
		slog.Error("Session sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Expired idle sessions", "count", n, "ttl", j.ttl)
	}
}
