package voting

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Publisher is told about every votable whose statistics changed.
type Publisher interface {
	Publish(ctx context.Context, votable models.Votable) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.Votable) error { return nil }

// Service is what the HTTP layer talks to.
type Service struct {
	Store    *Store
	Engine   *Engine
	Ranker   *Ranker
	Registry *Registry

	publisher Publisher
	tracer    trace.Tracer
	log       *logger.Logger
}

func NewService(db *gorm.DB, users UserCounter, publisher Publisher, log *logger.Logger) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	store := NewStore(db, log)
	return &Service{
		Store:     store,
		Engine:    NewEngine(db, store, users, log),
		Ranker:    NewRanker(db),
		Registry:  NewRegistry(db, store),
		publisher: publisher,
		tracer:    otel.Tracer("github.com/emilythestrangee/votables/backend/internal/voting"),
		log:       log.With("service", "VotingService"),
	}
}

func (s *Service) CreateVotable(ctx context.Context, creatorID int, title, text string, votableType models.VotableType) (models.Votable, error) {
	v, err := s.Registry.Create(ctx, creatorID, title, text, votableType)
	if err != nil {
		return models.Votable{}, err
	}
	s.log.Info("Votable created", "votable_id", v.ID, "creator_id", creatorID, "votable_type", v.VotableType)
	return v, nil
}

func (s *Service) GetVotable(ctx context.Context, id int) (models.Votable, error) {
	return s.Registry.GetVotable(ctx, id)
}

// CastVote records the user's vote, recomputes the votable's statistics and
// returns the refreshed votable.
func (s *Service) CastVote(ctx context.Context, userID, votableID int, value models.VoteType) (models.Votable, error) {
	ctx, span := s.tracer.Start(ctx, "voting.CastVote", trace.WithAttributes(
		attribute.Int("votable.id", votableID),
		attribute.Int("vote.value", int(value)),
	))
	defer span.End()

	if _, err := s.Store.UpsertVote(ctx, userID, votableID, value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert vote")
		return models.Votable{}, err
	}

	votable, err := s.Recompute(ctx, votableID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recompute")
		return models.Votable{}, err
	}
	return votable, nil
}

// Recompute refreshes a votable's statistics and publishes the result.
func (s *Service) Recompute(ctx context.Context, votableID int) (models.Votable, error) {
	if _, err := s.Engine.Recompute(ctx, votableID); err != nil {
		return models.Votable{}, err
	}
	votable, err := s.Registry.GetVotable(ctx, votableID)
	if err != nil {
		return models.Votable{}, err
	}

	if err := s.publisher.Publish(ctx, votable); err != nil {
		s.log.Warn("Publishing votable statistics failed", "votable_id", votableID, "error", err)
	}
	return votable, nil
}

func (s *Service) Rank(ctx context.Context, order Order) ([]models.Votable, error) {
	return s.Ranker.Rank(ctx, order)
}

func (s *Service) UserVoteLabel(ctx context.Context, votable models.Votable, userID int) (models.VoteLabel, error) {
	return s.Registry.UserVoteLabel(ctx, votable, userID)
}

func (s *Service) UserVoteLabels(ctx context.Context, votables []models.Votable, userID int) (map[int]models.VoteLabel, error) {
	return s.Registry.UserVoteLabels(ctx, votables, userID)
}
