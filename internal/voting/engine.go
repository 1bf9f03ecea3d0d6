package voting

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
	"github.com/emilythestrangee/votables/backend/internal/stats"
)

// UserCounter reports how many users exist.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Engine recomputes the cached statistics of a votable from its votes.
type Engine struct {
	db    *gorm.DB
	store *Store
	users UserCounter
	log   *logger.Logger
}

func NewEngine(db *gorm.DB, store *Store, users UserCounter, log *logger.Logger) *Engine {
	return &Engine{db: db, store: store, users: users, log: log.With("service", "AggregationEngine")}
}

// Recompute rebuilds every derived field of the votable from the current vote
// set and persists them in a single update. Concurrent recomputes are not
// serialized; whichever writes last is what readers see.
func (e *Engine) Recompute(ctx context.Context, votableID int) (models.Statistics, error) {
	var votable models.Votable
	err := e.db.WithContext(ctx).Select("id").First(&votable, votableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Statistics{}, ErrNotFound
	}
	if err != nil {
		return models.Statistics{}, fmt.Errorf("load votable: %w", err)
	}

	var (
		positive, negative int
		totalUsers         int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		positive, negative, err = e.store.Tally(gctx, votableID)
		return err
	})
	g.Go(func() error {
		var err error
		totalUsers, err = e.users.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Statistics{}, err
	}

	s := stats.Aggregate(positive, negative, totalUsers)

	if err := e.db.WithContext(ctx).
		Model(&models.Votable{}).
		Where("id = ?", votableID).
		Updates(map[string]interface{}{
			"total_votes":              s.TotalVotes,
			"positive_votes":           s.PositiveVotes,
			"negative_votes":           s.NegativeVotes,
			"participation_percentage": s.ParticipationPercentage,
			"positive_percentage":      s.PositivePercentage,
			"negative_percentage":      s.NegativePercentage,
			"wilson_score":             s.WilsonScore,
		}).Error; err != nil {
		return models.Statistics{}, fmt.Errorf("persist statistics: %w", err)
	}

	e.log.Debug("Recomputed votable statistics",
		"votable_id", votableID,
		"total_votes", s.TotalVotes,
		"wilson_score", s.WilsonScore,
	)
	return s, nil
}
