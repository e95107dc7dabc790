package roomsession

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(rdb, time.Hour), mr
}

func TestRedisStorePutGetRoundTrip(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	if sess, err := store.Get(ctx, "g1"); err != nil || sess != nil {
		t.Fatalf("empty store should yield nil, nil: %v / %v", sess, err)
	}

	if err := store.Put(ctx, "g1", testSession("g1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sess, err := store.Get(ctx, "g1")
	if err != nil || sess == nil {
		t.Fatalf("Get: %v / %v", sess, err)
	}
	if sess.RoomCode != "ABC123" || sess.Mode != ModeRoast || sess.MaxPlayers != 4 {
		t.Fatalf("unexpected session after round trip: %+v", sess)
	}
	if len(sess.Players) != 1 || sess.Players[0] != "Alice" {
		t.Fatalf("unexpected roster: %v", sess.Players)
	}
}

func TestRedisStoreSetsTTL(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "g1", testSession("g1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL("guild:g1:room"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected TTL in (0, 1h], got %v", ttl)
	}

	// Expiry removes the session entirely
	mr.FastForward(2 * time.Hour)
	if sess, err := store.Get(ctx, "g1"); err != nil || sess != nil {
		t.Fatalf("expired session should be absent: %v / %v", sess, err)
	}
}

func TestRedisStoreAppendPlayer(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	if err := store.AppendPlayer(ctx, "nope", "Bob"); err != nil {
		t.Fatalf("AppendPlayer on absent guild: %v", err)
	}
	if sess, _ := store.Get(ctx, "nope"); sess != nil {
		t.Fatalf("no session should appear, got %+v", sess)
	}

	if err := store.Put(ctx, "g1", testSession("g1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.AppendPlayer(ctx, "g1", "Bob"); err != nil {
		t.Fatalf("AppendPlayer: %v", err)
	}
	if err := store.AppendPlayer(ctx, "g1", "Bob"); err != nil {
		t.Fatalf("AppendPlayer dup: %v", err)
	}

	sess, _ := store.Get(ctx, "g1")
	if len(sess.Players) != 3 {
		t.Fatalf("expected 3 entries, got %v", sess.Players)
	}
}

func TestRedisStoreReplacePlayers(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	if err := store.ReplacePlayers(ctx, "nope", []string{"Bob"}); err != nil {
		t.Fatalf("ReplacePlayers on absent guild: %v", err)
	}

	if err := store.Put(ctx, "g1", testSession("g1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.ReplacePlayers(ctx, "g1", []string{"Alice", "Bob", "Carol"}); err != nil {
		t.Fatalf("ReplacePlayers: %v", err)
	}

	sess, _ := store.Get(ctx, "g1")
	if len(sess.Players) != 3 || sess.Players[2] != "Carol" {
		t.Fatalf("expected replaced roster, got %v", sess.Players)
	}
	if sess.RoomCode != "ABC123" || sess.CreatorID != "u1" {
		t.Fatalf("replace must not clobber the rest of the session: %+v", sess)
	}
}

func TestRedisStoreFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedisStoreFromURL("redis://"+mr.Addr()+"/0", 0)
	if err != nil {
		t.Fatalf("NewRedisStoreFromURL: %v", err)
	}
	ctx := context.Background()
	if err := store.Put(ctx, "g1", testSession("g1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sess, err := store.Get(ctx, "g1")
	if err != nil || sess == nil || sess.RoomCode != "ABC123" {
		t.Fatalf("Get: %v / %v", sess, err)
	}

	if _, err := NewRedisStoreFromURL("not-a-url", 0); err == nil {
		t.Fatalf("expected error for malformed URL")
	}
}
