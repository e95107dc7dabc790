package roomsession

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 24 * time.Hour

// redisStore keeps sessions in Redis so they survive restarts and can be
// shared by multiple bot instances. Mutations go through WATCH on the
// guild key so concurrent appends for the same guild cannot lose writes.
type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &redisStore{rdb: rdb, ttl: ttl}
}

// NewRedisStoreFromURL parses a redis:// URL and returns a connected store.
func NewRedisStoreFromURL(url string, ttl time.Duration) (Store, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, err
	}
	return NewRedisStore(redis.NewClient(opts), ttl), nil
}

func (r *redisStore) key(guildID string) string { return "guild:" + strings.TrimSpace(guildID) + ":room" }

func (r *redisStore) Put(ctx context.Context, guildID string, s *Session) error {
	if strings.TrimSpace(guildID) == "" || s == nil {
		return nil
	}
	cp := s.Clone()
	cp.GuildID = guildID
	raw, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(guildID), raw, r.ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, guildID string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(guildID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *redisStore) AppendPlayer(ctx context.Context, guildID, playerName string) error {
	if strings.TrimSpace(playerName) == "" {
		return nil
	}
	return r.mutate(ctx, guildID, func(s *Session) {
		s.Players = append(s.Players, playerName)
	})
}

func (r *redisStore) ReplacePlayers(ctx context.Context, guildID string, players []string) error {
	return r.mutate(ctx, guildID, func(s *Session) {
		s.Players = append([]string(nil), players...)
	})
}

// mutate loads, applies fn and stores back under WATCH. Absent sessions
// are a silent no-op per the store contract.
func (r *redisStore) mutate(ctx context.Context, guildID string, fn func(*Session)) error {
	key := r.key(guildID)
	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		fn(&s)
		out, err := json.Marshal(&s)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, key, out, r.ttl)
		_, pErr := pipe.Exec(ctx)
		return pErr
	}, key)
}
