package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

// 楽観ロックの再試行回数
const maxUpdateAttempts = 5

var ErrCartBusy = errors.New("cart is being updated concurrently")

type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (model.CartState, error) {
	return s.read(ctx, s.rdb, cartKey(sessionID))
}

// WATCH → 読む → fn → MULTI/EXEC。他で書き換わったらやり直す
func (s *RedisCartStore) Update(ctx context.Context, sessionID string, fn func(model.CartState) (model.CartState, error)) (model.CartState, error) {
	key := cartKey(sessionID)
	var out model.CartState

	txf := func(tx *redis.Tx) error {
		state, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(state)
		if err != nil {
			return err
		}
		b, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, s.ttl)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return model.CartState{}, err
	}
	return model.CartState{}, ErrCartBusy
}

func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

func (s *RedisCartStore) read(ctx context.Context, c redis.Cmdable, key string) (model.CartState, error) {
	b, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CartState{}, nil
	}
	if err != nil {
		return model.CartState{}, err
	}

	var state model.CartState
	if err := json.Unmarshal(b, &state); err != nil {
		return model.CartState{}, fmt.Errorf("decode cart %s: %w", key, err)
	}
	return state, nil
}

var _ repo.CartStore = (*RedisCartStore)(nil)
