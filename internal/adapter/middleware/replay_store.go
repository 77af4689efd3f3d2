package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimTTL bounds how long an unfinished request holds its key; a crashed
// handler frees the request id after this.
const claimTTL = 60 * time.Second

// storedResponse is what a replay writes back. Pending marks a request
// that is still running.
type storedResponse struct {
	Pending     bool      `json:"pending"`
	Status      int       `json:"status,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	Digest      string    `json:"digest"`
	StoredAt    time.Time `json:"stored_at"`
}

func (r storedResponse) replayable() bool { return !r.Pending && r.Status != 0 }

// replayStore keeps one response per (method, route, actor, request id)
// in Redis.
type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func replayKey(method, route, actorID, requestID string) string {
	return "idemp:circ:" + strings.ToLower(method) + ":" + route + ":" + actorID + ":" + requestID
}

func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// claim records key as pending. It reports false when the key already
// exists, finished or not.
func (s replayStore) claim(ctx context.Context, key, bodyDigest string, now time.Time) (bool, error) {
	raw, err := json.Marshal(storedResponse{Pending: true, Digest: bodyDigest, StoredAt: now})
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, raw, claimTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (storedResponse, error) {
	var r storedResponse
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("decode stored response: %w", err)
	}
	return r, nil
}

// complete replaces the claim with the final response for the store's TTL.
func (s replayStore) complete(ctx context.Context, key string, r storedResponse) error {
	r.Pending = false
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, s.ttl).Err()
}

// release drops a claim so the same request id can be sent again.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
