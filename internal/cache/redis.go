// Package cache mirrors votable statistics into Redis: a hash per votable for
// cheap reads and a pub/sub channel that announces every recompute.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

// StatsTTL bounds how long a snapshot outlives its last refresh.
const StatsTTL = 24 * time.Hour

// StatsEvent is the message published after a recompute.
type StatsEvent struct {
	VotableID  int               `json:"votable_id"`
	Statistics models.Statistics `json:"statistics"`
	At         time.Time         `json:"at"`
}

type RedisStats struct {
	rdb     *goredis.Client
	channel string
	log     *logger.Logger
}

// NewRedisStats connects to addr and verifies the connection.
func NewRedisStats(ctx context.Context, addr, password, channel string, log *logger.Logger) (*RedisStats, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          0,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("Redis connected", "addr", addr, "channel", channel)
	return NewRedisStatsFromClient(rdb, channel, log), nil
}

func NewRedisStatsFromClient(rdb *goredis.Client, channel string, log *logger.Logger) *RedisStats {
	return &RedisStats{rdb: rdb, channel: channel, log: log.With("service", "RedisStats")}
}

func statsKey(votableID int) string {
	return "votable:" + strconv.Itoa(votableID) + ":stats"
}

// Publish stores the votable's statistics and announces them on the channel.
func (r *RedisStats) Publish(ctx context.Context, votable models.Votable) error {
	s := votable.Statistics
	key := statsKey(votable.ID)

	raw, err := json.Marshal(StatsEvent{VotableID: votable.ID, Statistics: s, At: time.Now().UTC()})
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"total_votes":              s.TotalVotes,
		"positive_votes":           s.PositiveVotes,
		"negative_votes":           s.NegativeVotes,
		"participation_percentage": s.ParticipationPercentage,
		"positive_percentage":      s.PositivePercentage,
		"negative_percentage":      s.NegativePercentage,
		"wilson_score":             strconv.FormatFloat(s.WilsonScore, 'f', -1, 64),
	})
	pipe.Expire(ctx, key, StatsTTL)
	pipe.Publish(ctx, r.channel, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish stats: %w", err)
	}
	return nil
}

// Snapshot returns the cached statistics for a votable, if present.
func (r *RedisStats) Snapshot(ctx context.Context, votableID int) (models.Statistics, bool, error) {
	data, err := r.rdb.HGetAll(ctx, statsKey(votableID)).Result()
	if err != nil {
		return models.Statistics{}, false, fmt.Errorf("read stats: %w", err)
	}
	if len(data) == 0 {
		return models.Statistics{}, false, nil
	}

	s, err := decodeStats(data)
	if err != nil {
		return models.Statistics{}, false, err
	}
	return s, true, nil
}

// Subscribe forwards stats events until ctx is done.
func (r *RedisStats) Subscribe(ctx context.Context, onEvent func(StatsEvent)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev StatsEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.Warn("Dropping malformed stats event", "error", err)
				continue
			}
			onEvent(ev)
		}
	}
}

func (r *RedisStats) Close() error {
	return r.rdb.Close()
}

// decodeStats turns the string-valued Redis hash back into Statistics.
func decodeStats(data map[string]string) (models.Statistics, error) {
	var s models.Statistics
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return models.Statistics{}, err
	}
	if err := dec.Decode(data); err != nil {
		return models.Statistics{}, fmt.Errorf("decode stats: %w", err)
	}
	return s, nil
}
