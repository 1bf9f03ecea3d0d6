package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Store keeps one vote per (user, votable).
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log.With("repo", "VoteStore")}
}

// UpsertVote records value as userID's vote on votableID, overwriting any
// earlier vote. Concurrent calls for the same pair collapse onto the unique
// index, the last committed write wins.
func (s *Store) UpsertVote(ctx context.Context, userID, votableID int, value models.VoteType) (models.Vote, error) {
	if !value.Valid() {
		return models.Vote{}, ErrInvalidVoteValue
	}
	if err := s.ensureVotable(ctx, votableID); err != nil {
		return models.Vote{}, err
	}

	now := time.Now().UTC()
	vote := models.Vote{
		UserID:    userID,
		VotableID: votableID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "votable_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&vote).Error
	if err != nil {
		return models.Vote{}, fmt.Errorf("upsert vote: %w", err)
	}

	stored, ok, err := s.GetVote(ctx, userID, votableID)
	if err != nil {
		return models.Vote{}, err
	}
	if !ok {
		return models.Vote{}, fmt.Errorf("upsert vote: row for user %d votable %d vanished", userID, votableID)
	}
	return stored, nil
}

// GetVote returns the user's vote on the votable, if any.
func (s *Store) GetVote(ctx context.Context, userID, votableID int) (models.Vote, bool, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND votable_id = ?", userID, votableID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("get vote: %w", err)
	}
	return vote, true, nil
}

func (s *Store) GetVotesFor(ctx context.Context, votableID int) ([]models.Vote, error) {
	votes := []models.Vote{}
	if err := s.db.WithContext(ctx).
		Where("votable_id = ?", votableID).
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("get votes: %w", err)
	}
	return votes, nil
}

// GetUserVotes returns the user's votes on the given votables keyed by votable id.
func (s *Store) GetUserVotes(ctx context.Context, userID int, votableIDs []int) (map[int]models.VoteType, error) {
	out := make(map[int]models.VoteType, len(votableIDs))
	if len(votableIDs) == 0 {
		return out, nil
	}

	var votes []models.Vote
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND votable_id IN ?", userID, votableIDs).
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("get user votes: %w", err)
	}
	for _, v := range votes {
		out[v.VotableID] = v.Value
	}
	return out, nil
}

// Tally counts the positive and negative votes on a votable. Zero-valued
// votes are in neither count.
func (s *Store) Tally(ctx context.Context, votableID int) (positive, negative int, err error) {
	var rows []struct {
		Value models.VoteType
		Count int
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("value, COUNT(*) AS count").
		Where("votable_id = ? AND value IN ?", votableID, []models.VoteType{models.VotePositive, models.VoteNegative}).
		Group("value").
		Scan(&rows).Error; err != nil {
		return 0, 0, fmt.Errorf("tally votes: %w", err)
	}

	for _, r := range rows {
		switch r.Value {
		case models.VotePositive:
			positive = r.Count
		case models.VoteNegative:
			negative = r.Count
		}
	}
	return positive, negative, nil
}

func (s *Store) ensureVotable(ctx context.Context, votableID int) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Votable{}).
		Where("id = ?", votableID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check votable: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
