package cache

import (
	"context"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Stats is the statistics mirror the rest of the app talks to.
type Stats interface {
	Publish(ctx context.Context, votable models.Votable) error
	Snapshot(ctx context.Context, votableID int) (models.Statistics, bool, error)
	Close() error
}

// New returns a Redis-backed mirror, or Nop when addr is empty.
func New(ctx context.Context, addr, password, channel string, log *logger.Logger) (Stats, error) {
	if addr == "" {
		log.Info("REDIS_ADDR not set, statistics cache disabled")
		return Nop{}, nil
	}
	r, err := NewRedisStats(ctx, addr, password, channel, log)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Nop is used when no Redis is configured. Snapshots always miss.
type Nop struct{}

func (Nop) Publish(context.Context, models.Votable) error { return nil }

func (Nop) Snapshot(context.Context, int) (models.Statistics, bool, error) {
	return models.Statistics{}, false, nil
}

func (Nop) Close() error { return nil }
