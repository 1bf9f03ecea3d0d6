package cache

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

func redisAddr(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}

	addr, err := ctr.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	return addr
}

func TestRedisStatsRoundTrip(t *testing.T) {
	addr := redisAddr(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, err := NewRedisStats(ctx, addr, "", "votables-test", logger.Nop())
	if err != nil {
		t.Fatalf("NewRedisStats: %v", err)
	}
	defer r.Close()

	events := make(chan StatsEvent, 1)
	subCtx, stop := context.WithCancel(ctx)
	defer stop()
	subscribed := make(chan error, 1)
	go func() {
		subscribed <- r.Subscribe(subCtx, func(ev StatsEvent) { events <- ev })
	}()
	// give the subscription a moment to register before publishing
	time.Sleep(200 * time.Millisecond)

	v := models.Votable{ID: 9, Statistics: models.Statistics{
		TotalVotes: 4, PositiveVotes: 3, NegativeVotes: 1,
		ParticipationPercentage: 40, PositivePercentage: 75, NegativePercentage: 25,
		WilsonScore: 0.30063605,
	}}
	if err := r.Publish(ctx, v); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, ok, err := r.Snapshot(ctx, v.ID)
	if err != nil || !ok {
		t.Fatalf("Snapshot: ok=%v err=%v", ok, err)
	}
	if got != v.Statistics {
		t.Fatalf("snapshot mismatch: got=%+v want=%+v", got, v.Statistics)
	}

	select {
	case ev := <-events:
		if ev.VotableID != v.ID || ev.Statistics != v.Statistics {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case err := <-subscribed:
		t.Fatalf("subscription ended early: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for stats event")
	}

	if _, ok, err := r.Snapshot(ctx, 404); ok || err != nil {
		t.Fatalf("expected miss for unknown votable, got ok=%v err=%v", ok, err)
	}
}
