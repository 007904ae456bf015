package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps the per-user session indexes and removes
// members whose session record has been evicted by its own TTL. It never
// touches live sessions and tolerates races with concurrent adds and
// revokes: a member that reappears between the read and the delete was
// already re-added under a new token id, and deleting a set member is
// idempotent either way.
type Janitor struct {
	client *redis.Client
	cron   *cron.Cron
}

// NewJanitor creates a Janitor sweeping through the provided Redis client
func NewJanitor(client *redis.Client) *Janitor {
	return &Janitor{
		client: client,
		cron:   cron.New(),
	}
}

// Start registers the sweep under the given cron schedule and starts it
func (j *Janitor) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := j.Sweep(ctx); err != nil {
			slog.Warn("Session index sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	return nil
}

// Stop stops the schedule and waits for a running sweep to finish
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// Sweep scans every user index and prunes members with no backing record
func (j *Janitor) Sweep(ctx context.Context) error {
	var cursor uint64
	pruned := 0

	for {
		keys, next, err := j.client.Scan(ctx, cursor, userSessionsKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}

		for _, key := range keys {
			n, err := j.sweepIndex(ctx, key)
			if err != nil {
				slog.Debug("Failed to sweep session index", "key", key, "error", err)
				continue
			}
			pruned += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if pruned > 0 {
		slog.Info("Pruned stale session index entries", "count", pruned)
	}
	return nil
}

func (j *Janitor) sweepIndex(ctx context.Context, indexKey string) (int, error) {
	tokenIDs, err := j.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, err
	}

	var stale []interface{}
	for _, tokenID := range tokenIDs {
		err := j.client.Get(ctx, sessionKey(tokenID)).Err()
		if errors.Is(err, redis.Nil) {
			stale = append(stale, tokenID)
			continue
		}
		if err != nil {
			return 0, err
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}

	if err := j.client.SRem(ctx, indexKey, stale...).Err(); err != nil {
		return 0, err
	}

	slog.Debug("Pruned session index",
		"user_id", strings.TrimPrefix(indexKey, userSessionsKeyPrefix),
		"pruned", len(stale))

	return len(stale), nil
}
