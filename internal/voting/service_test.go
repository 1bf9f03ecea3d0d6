package voting

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
	"github.com/emilythestrangee/votables/backend/internal/testutil"
	"github.com/emilythestrangee/votables/backend/internal/users"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []models.Votable
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, v models.Votable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, v)
	return p.err
}

func TestServiceCastVote(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	pub := &recordingPublisher{}
	svc := NewService(db, users.NewStore(db, log), pub, log)

	people := testutil.SeedUsers(t, ctx, db, 4)
	v, err := svc.CreateVotable(ctx, people[0].ID, "Tabs or spaces?", "Pick one.", models.VotableStatement)
	if err != nil {
		t.Fatalf("CreateVotable: %v", err)
	}

	got, err := svc.CastVote(ctx, people[1].ID, v.ID, models.VotePositive)
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if got.TotalVotes != 1 || got.ParticipationPercentage != 25 || got.PositivePercentage != 100 {
		t.Fatalf("unexpected statistics after first vote: %+v", got.Statistics)
	}

	// the same user flips their vote
	got, err = svc.CastVote(ctx, people[1].ID, v.ID, models.VoteNegative)
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if got.TotalVotes != 1 || got.NegativeVotes != 1 || got.PositiveVotes != 0 {
		t.Fatalf("revote must replace, not add: %+v", got.Statistics)
	}

	// and then clears it
	got, err = svc.CastVote(ctx, people[1].ID, v.ID, models.NoVote)
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if got.Statistics != (models.Statistics{}) {
		t.Fatalf("cleared vote should leave zero statistics: %+v", got.Statistics)
	}

	if len(pub.published) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(pub.published))
	}
	label, err := svc.UserVoteLabel(ctx, got, people[1].ID)
	if err != nil {
		t.Fatalf("UserVoteLabel: %v", err)
	}
	if label != models.LabelNoVote {
		t.Fatalf("label: got=%q want=%q", label, models.LabelNoVote)
	}
}

func TestServiceCastVoteErrors(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	pub := &recordingPublisher{}
	svc := NewService(db, users.NewStore(db, log), pub, log)

	u := testutil.SeedUser(t, ctx, db, "alice")
	v := testutil.SeedVotable(t, ctx, db, u.ID, "q")

	if _, err := svc.CastVote(ctx, u.ID, v.ID, 5); !errors.Is(err, ErrInvalidVoteValue) {
		t.Fatalf("expected ErrInvalidVoteValue, got %v", err)
	}
	if _, err := svc.CastVote(ctx, u.ID, v.ID+100, models.VotePositive); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("failed votes must not publish, got %d", len(pub.published))
	}
}

func TestServicePublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	pub := &recordingPublisher{err: errors.New("redis unavailable")}
	svc := NewService(db, users.NewStore(db, log), pub, log)

	u := testutil.SeedUser(t, ctx, db, "alice")
	v := testutil.SeedVotable(t, ctx, db, u.ID, "q")

	got, err := svc.CastVote(ctx, u.ID, v.ID, models.VotePositive)
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if got.TotalVotes != 1 {
		t.Fatalf("unexpected statistics: %+v", got.Statistics)
	}
}

func TestServiceNilPublisher(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	svc := NewService(db, users.NewStore(db, log), nil, log)

	u := testutil.SeedUser(t, ctx, db, "alice")
	v := testutil.SeedVotable(t, ctx, db, u.ID, "q")
	if _, err := svc.CastVote(ctx, u.ID, v.ID, models.VotePositive); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	ranked, err := svc.Rank(ctx, OrderPopularity)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 1 || ranked[0].WilsonScore <= 0 {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
}
