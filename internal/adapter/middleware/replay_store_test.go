package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, replayStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, replayStore{rdb: rdb, ttl: ttl}
}

func TestReplayKey(t *testing.T) {
	got := replayKey("POST", "/fines/:fine_id/proofs", strings.Repeat("b", 32), strings.Repeat("a", 32))
	want := "idemp:circ:post:/fines/:fine_id/proofs:" + strings.Repeat("b", 32) + ":" + strings.Repeat("a", 32)
	if got != want {
		t.Fatalf("replayKey = %q, want %q", got, want)
	}
}

func TestDigest(t *testing.T) {
	if digest([]byte(`{"a":1}`)) == digest([]byte(`{"a":2}`)) {
		t.Fatal("different bodies share a digest")
	}
	if len(digest(nil)) != 64 {
		t.Fatalf("digest should be hex sha256, got %q", digest(nil))
	}
}

func TestReplayStore_ClaimOnce(t *testing.T) {
	mr, s := newStore(t, time.Minute)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	ok, err := s.claim(ctx, "k", "d1", now)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("k"); ttl != claimTTL {
		t.Fatalf("claim TTL = %v, want %v", ttl, claimTTL)
	}
	ok, err = s.claim(ctx, "k", "d2", now)
	if err != nil || ok {
		t.Fatalf("second claim: ok=%v err=%v", ok, err)
	}

	got, err := s.load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Pending || got.Digest != "d1" || got.replayable() || !got.StoredAt.Equal(now) {
		t.Fatalf("unexpected claim: %+v", got)
	}

	// an abandoned claim frees the id
	mr.FastForward(claimTTL + time.Second)
	if ok, _ := s.claim(ctx, "k", "d3", now); !ok {
		t.Fatal("claim should succeed after the pending entry expired")
	}
}

func TestReplayStore_CompleteAndRelease(t *testing.T) {
	mr, s := newStore(t, 5*time.Second)
	ctx := context.Background()

	if _, err := s.claim(ctx, "k", "d", time.Now()); err != nil {
		t.Fatalf("claim: %v", err)
	}
	err := s.complete(ctx, "k", storedResponse{Pending: true, Status: 201, Body: []byte(`{"ok":true}`), Digest: "d"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != 5*time.Second {
		t.Fatalf("response TTL = %v, want 5s", ttl)
	}
	got, err := s.load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.replayable() || got.Status != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("unexpected response: %+v", got)
	}

	if err := s.release(ctx, "k"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := s.load(ctx, "k"); !errors.Is(err, redis.Nil) {
		t.Fatalf("load after release: want redis.Nil, got %v", err)
	}
}

func TestReplayStore_CorruptEntry(t *testing.T) {
	mr, s := newStore(t, time.Minute)
	mr.Set("k", "not json")
	if _, err := s.load(context.Background(), "k"); err == nil {
		t.Fatal("expected decode error")
	}
}
