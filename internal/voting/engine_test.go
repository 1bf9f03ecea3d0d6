package voting

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
	"github.com/emilythestrangee/votables/backend/internal/testutil"
	"github.com/emilythestrangee/votables/backend/internal/users"
)

type fixedCounter struct {
	n   int64
	err error
}

func (f fixedCounter) Count(context.Context) (int64, error) { return f.n, f.err }

func TestRecomputeExample(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	store := NewStore(db, log)
	engine := NewEngine(db, store, users.NewStore(db, log), log)

	people := testutil.SeedUsers(t, ctx, db, 10)
	v := testutil.SeedVotable(t, ctx, db, people[0].ID, "q")
	for i, value := range []models.VoteType{1, 1, 1, -1} {
		if _, err := store.UpsertVote(ctx, people[i].ID, v.ID, value); err != nil {
			t.Fatalf("UpsertVote: %v", err)
		}
	}

	got, err := engine.Recompute(ctx, v.ID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if got.TotalVotes != 4 || got.ParticipationPercentage != 40 ||
		got.PositivePercentage != 75 || got.NegativePercentage != 25 {
		t.Fatalf("unexpected statistics: %+v", got)
	}
	if math.Abs(got.WilsonScore-0.3006) > 1e-4 {
		t.Fatalf("wilson: got=%v want≈0.3006", got.WilsonScore)
	}

	var stored models.Votable
	if err := db.First(&stored, v.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Statistics != got {
		t.Fatalf("persisted statistics differ: stored=%+v returned=%+v", stored.Statistics, got)
	}
}

func TestRecomputeZeroVotes(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	engine := NewEngine(db, NewStore(db, log), fixedCounter{n: 5}, log)

	u := testutil.SeedUser(t, ctx, db, "alice")
	v := testutil.SeedVotable(t, ctx, db, u.ID, "q")
	testutil.SeedVote(t, ctx, db, u.ID, v.ID, models.NoVote)

	got, err := engine.Recompute(ctx, v.ID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if got != (models.Statistics{}) {
		t.Fatalf("expected all-zero statistics, got %+v", got)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	store := NewStore(db, log)
	engine := NewEngine(db, store, users.NewStore(db, log), log)

	people := testutil.SeedUsers(t, ctx, db, 7)
	v := testutil.SeedVotable(t, ctx, db, people[0].ID, "q")
	for i, value := range []models.VoteType{1, -1, -1, 1, 1, 0} {
		testutil.SeedVote(t, ctx, db, people[i].ID, v.ID, value)
	}

	first, err := engine.Recompute(ctx, v.ID)
	if err != nil {
		t.Fatalf("first Recompute: %v", err)
	}
	second, err := engine.Recompute(ctx, v.ID)
	if err != nil {
		t.Fatalf("second Recompute: %v", err)
	}
	if first != second {
		t.Fatalf("recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestRecomputeUnknownVotable(t *testing.T) {
	db := testutil.DB(t)
	log := logger.Nop()
	engine := NewEngine(db, NewStore(db, log), fixedCounter{n: 1}, log)

	if _, err := engine.Recompute(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecomputeUserCountFailure(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	boom := errors.New("identity provider down")
	engine := NewEngine(db, NewStore(db, log), fixedCounter{err: boom}, log)

	u := testutil.SeedUser(t, ctx, db, "alice")
	v := testutil.SeedVotable(t, ctx, db, u.ID, "q")

	if _, err := engine.Recompute(ctx, v.ID); !errors.Is(err, boom) {
		t.Fatalf("expected identity error, got %v", err)
	}
}
