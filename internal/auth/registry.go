package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry tracks issued tokens in Redis so operators can list and
// revoke them. Session keys expire with the token; the per-user index is
// trimmed by the prune job.
type SessionRegistry struct {
	client *redis.Client
}

// NewSessionRegistry constructs a SessionRegistry.
func NewSessionRegistry(client *redis.Client) *SessionRegistry {
	return &SessionRegistry{client: client}
}

func sessionKey(tokenID string) string {
	return "gatehouse:session:" + tokenID
}

func userIndexKey(userID int64) string {
	return "gatehouse:user_sessions:" + strconv.FormatInt(userID, 10)
}

// Record stores a session until its token expires.
func (r *SessionRegistry) Record(ctx context.Context, sess Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("auth: session for token %s already expired", sess.TokenID)
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(sess.TokenID), payload, ttl).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, userIndexKey(sess.UserID), sess.TokenID).Err()
}

// Revoke removes a session record. Missing records are not an error so
// logout stays idempotent.
func (r *SessionRegistry) Revoke(ctx context.Context, userID int64, tokenID string) error {
	if err := r.client.Del(ctx, sessionKey(tokenID)).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, userIndexKey(userID), tokenID).Err()
}

// ListByUser returns the live sessions of a user.
func (r *SessionRegistry) ListByUser(ctx context.Context, userID int64) ([]Session, error) {
	ids, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Token expired; the index entry lingers until pruned.
				continue
			}
			return nil, err
		}
		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// PruneUserIndex drops index entries whose session key has expired and
// returns how many were removed.
func (r *SessionRegistry) PruneUserIndex(ctx context.Context, userID int64) (int, error) {
	ids, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		exists, err := r.client.Exists(ctx, sessionKey(id)).Result()
		if err != nil {
			return removed, err
		}
		if exists == 0 {
			if err := r.client.SRem(ctx, userIndexKey(userID), id).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// UserIDs returns every user id that currently has an index entry.
func (r *SessionRegistry) UserIDs(ctx context.Context) ([]int64, error) {
	var (
		cursor uint64
		ids    []int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, "gatehouse:user_sessions:*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			raw := key[len("gatehouse:user_sessions:"):]
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}
