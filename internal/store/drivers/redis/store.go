// Package redis keeps the KV in one redis hash, so several clients on
// different hosts can share a session.
package redis

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/forum/internal/store"
	"github.com/redis/go-redis/v9"
)

const hashSuffix = ":session"

type Store struct {
	client redis.UniversalClient
	key    string
	owned  bool
}

var _ store.KV = (*Store)(nil)

// NewStore connects to addr and stores under "<prefix>:session".
func NewStore(addr, prefix string) *Store {
	s := FromClient(redis.NewClient(&redis.Options{Addr: addr}), prefix)
	s.owned = true
	return s
}

// FromClient wraps an existing client. Close leaves it open.
func FromClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "forum"
	}
	return &Store{client: client, key: prefix + hashSuffix}
}

func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.client.HMGet(ctx, s.key, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hmget: %w", err)
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

// Put runs in MULTI/EXEC so readers never see a half-written session.
func (s *Store) Put(ctx context.Context, values map[string]string) error {
	var set []any
	var del []string
	for k, v := range values {
		if v == "" {
			del = append(del, k)
			continue
		}
		set = append(set, k, v)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(set) > 0 {
			pipe.HSet(ctx, s.key, set...)
		}
		if len(del) > 0 {
			pipe.HDel(ctx, s.key, del...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
