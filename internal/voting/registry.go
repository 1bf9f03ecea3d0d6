package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Registry creates votables and reads them back together with a user's vote.
type Registry struct {
	db    *gorm.DB
	store *Store
}

func NewRegistry(db *gorm.DB, store *Store) *Registry {
	return &Registry{db: db, store: store}
}

// Create stores a new votable with all statistics at zero.
func (r *Registry) Create(ctx context.Context, creatorID int, title, text string, votableType models.VotableType) (models.Votable, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if title == "" || text == "" {
		return models.Votable{}, ErrEmptyField
	}
	if !votableType.Valid() {
		return models.Votable{}, ErrInvalidVotableType
	}

	votable := models.Votable{
		CreatorID:   creatorID,
		Title:       title,
		Text:        text,
		VotableType: votableType,
	}
	if err := r.db.WithContext(ctx).Create(&votable).Error; err != nil {
		return models.Votable{}, fmt.Errorf("create votable: %w", err)
	}
	return votable, nil
}

func (r *Registry) GetVotable(ctx context.Context, id int) (models.Votable, error) {
	var votable models.Votable
	err := r.db.WithContext(ctx).First(&votable, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Votable{}, ErrNotFound
	}
	if err != nil {
		return models.Votable{}, fmt.Errorf("get votable: %w", err)
	}
	return votable, nil
}

// UserVoteLabel reports how userID currently votes on the votable. Not having
// voted and having a 0 vote both read as NoVote; there is no separate
// "retracted" state.
func (r *Registry) UserVoteLabel(ctx context.Context, votable models.Votable, userID int) (models.VoteLabel, error) {
	vote, ok, err := r.store.GetVote(ctx, userID, votable.ID)
	if err != nil {
		return "", err
	}
	if !ok {
		return models.LabelNoVote, nil
	}
	return models.LabelFor(vote.Value), nil
}

// UserVoteLabels is UserVoteLabel for many votables in one query.
func (r *Registry) UserVoteLabels(ctx context.Context, votables []models.Votable, userID int) (map[int]models.VoteLabel, error) {
	ids := make([]int, 0, len(votables))
	for _, v := range votables {
		ids = append(ids, v.ID)
	}
	values, err := r.store.GetUserVotes(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	labels := make(map[int]models.VoteLabel, len(votables))
	for _, id := range ids {
		labels[id] = models.LabelFor(values[id])
	}
	return labels, nil
}
