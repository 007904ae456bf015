package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix      = "session:"
	userSessionsKeyPrefix = "user_sessions:"
)

// Store owns the persistence of session records and the per-user index of
// live token ids. Record and index mutations for one call are applied as a
// single atomic unit; across calls no ordering is guaranteed.
type Store interface {
	Add(ctx context.Context, sess *Session) error
	Get(ctx context.Context, tokenID string) (*Session, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeAll(ctx context.Context, userID string) error
	IsActive(ctx context.Context, tokenID string) (bool, error)
}

// redisStore implements Store on top of a shared Redis client
type redisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a Store backed by the provided Redis client.
// An optional clock may be supplied for tests; nil means time.Now.
func NewRedisStore(client *redis.Client, clock func() time.Time) Store {
	if clock == nil {
		clock = time.Now
	}
	return &redisStore{client: client, now: clock}
}

func sessionKey(tokenID string) string {
	return sessionKeyPrefix + tokenID
}

func userSessionsKey(userID string) string {
	return userSessionsKeyPrefix + userID
}

// Add writes the session record and registers its token id in the owner's
// index inside one transactional pipeline. The record key gets a TTL equal
// to the remaining lifetime; the index TTL is raised to at least that value
// (EXPIRE NX seeds a fresh set, EXPIRE GT only ever extends) so the index
// never dies before its longest-lived member.
func (s *redisStore) Add(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := sess.Remaining(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s is already expired", sess.TokenID)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.TokenID), data, ttl)
	pipe.SAdd(ctx, userSessionsKey(sess.UserID), sess.TokenID)
	pipe.ExpireNX(ctx, userSessionsKey(sess.UserID), ttl)
	pipe.ExpireGT(ctx, userSessionsKey(sess.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get returns the session record for a token id, or ErrSessionNotFound
func (s *redisStore) Get(ctx context.Context, tokenID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(tokenID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", tokenID, err)
	}

	return &sess, nil
}

// ListByUser resolves the user's index and fetches every member's record.
// The index and record keys expire independently, so a member whose record
// has already been evicted is pruned from the index and skipped rather than
// surfaced as an error.
func (s *redisStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	tokenIDs, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user sessions: %w", err)
	}

	sessions := make([]Session, 0, len(tokenIDs))
	var stale []interface{}

	for _, tokenID := range tokenIDs {
		sess, err := s.Get(ctx, tokenID)
		if errors.Is(err, ErrSessionNotFound) {
			stale = append(stale, tokenID)
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, userSessionsKey(userID), stale...).Err(); err != nil {
			slog.Debug("Failed to prune stale session index entries", "user_id", userID, "error", err)
		}
	}

	return sessions, nil
}

// Revoke deletes the session record and removes its token id from the
// owner's index in one transactional pipeline. Revoking an absent or
// already-revoked token is a no-op.
func (s *redisStore) Revoke(ctx context.Context, tokenID string) error {
	sess, err := s.Get(ctx, tokenID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(tokenID))
	pipe.SRem(ctx, userSessionsKey(sess.UserID), tokenID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// RevokeAll deletes every session recorded in the user's index along with
// the index itself. The member snapshot is taken before the deletes, so a
// token added concurrently may survive this call; the next RevokeAll picks
// it up.
func (s *redisStore) RevokeAll(ctx context.Context, userID string) error {
	tokenIDs, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokenIDs)+1)
	for _, tokenID := range tokenIDs {
		keys = append(keys, sessionKey(tokenID))
	}
	keys = append(keys, userSessionsKey(userID))

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	return nil
}

// IsActive reports whether a live session record exists for the token id.
// Absence is not an error; transient store failures are.
func (s *redisStore) IsActive(ctx context.Context, tokenID string) (bool, error) {
	sess, err := s.Get(ctx, tokenID)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return sess.Active(s.now()), nil
}
