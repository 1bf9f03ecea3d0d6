package voting

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/emilythestrangee/votables/backend/internal/models"
)

// Order is one of the listing orders over votables.
type Order string

const (
	OrderRecency    Order = "created_at"
	OrderVolume     Order = "votes"
	OrderConsensus  Order = "consensus"
	OrderPopularity Order = "popularity"
)

// ParseOrder maps an order_by query value to an Order. An empty value means
// most recent first.
func ParseOrder(raw string) (Order, error) {
	switch o := Order(raw); o {
	case "":
		return OrderRecency, nil
	case OrderRecency, OrderVolume, OrderConsensus, OrderPopularity:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, raw)
	}
}

// SortVotables orders vs in place. vs must already be in creation order so
// that the stable sort breaks ties by it.
func SortVotables(vs []models.Votable, order Order) error {
	var less func(a, b models.Votable) bool
	switch order {
	case OrderRecency:
		less = func(a, b models.Votable) bool { return a.CreatedAt.After(b.CreatedAt) }
	case OrderVolume:
		less = func(a, b models.Votable) bool { return a.TotalVotes > b.TotalVotes }
	case OrderConsensus:
		less = func(a, b models.Votable) bool {
			if a.Agreement() != b.Agreement() {
				return a.Agreement() > b.Agreement()
			}
			return a.TotalVotes > b.TotalVotes
		}
	case OrderPopularity:
		less = func(a, b models.Votable) bool { return a.WilsonScore > b.WilsonScore }
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}

	sort.SliceStable(vs, func(i, j int) bool { return less(vs[i], vs[j]) })
	return nil
}

// Ranker lists votables by their persisted statistics. It never recomputes.
type Ranker struct {
	db *gorm.DB
}

func NewRanker(db *gorm.DB) *Ranker {
	return &Ranker{db: db}
}

func (r *Ranker) Rank(ctx context.Context, order Order) ([]models.Votable, error) {
	votables := []models.Votable{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&votables).Error; err != nil {
		return nil, fmt.Errorf("list votables: %w", err)
	}
	if err := SortVotables(votables, order); err != nil {
		return nil, err
	}
	return votables, nil
}
