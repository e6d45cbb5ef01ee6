package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
)

// stateTTL keeps abandoned item states from living forever. Any item
// still being scanned refreshes its key well inside this window.
const stateTTL = 14 * 24 * time.Hour

// RedisStateStore persists hysteresis state in Redis, one JSON value
// per (item, market). CompareAndSwap uses WATCH so concurrent
// evaluators cannot clobber each other.
type RedisStateStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStateStore(client *redis.Client, prefix string) *RedisStateStore {
	if prefix == "" {
		prefix = "coinsage"
	}
	return &RedisStateStore{client: client, prefix: prefix}
}

var _ repository.StateStore = (*RedisStateStore)(nil)

func (s *RedisStateStore) key(itemID, market string) string {
	return fmt.Sprintf("%s:state:%s:%s", s.prefix, market, itemID)
}

func (s *RedisStateStore) Get(ctx context.Context, itemID, market string) (*models.ItemState, error) {
	data, err := s.client.Get(ctx, s.key(itemID, market)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNoPriorState
	}
	if err != nil {
		return nil, fmt.Errorf("state get: %w", err)
	}
	var st models.ItemState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("state decode: %w", err)
	}
	return &st, nil
}

func (s *RedisStateStore) Put(ctx context.Context, st *models.ItemState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("state encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(st.ItemID, st.Market), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("state put: %w", err)
	}
	return nil
}

// CompareAndSwap writes next only if the stored state still matches
// prev. A nil prev requires the key to be absent.
func (s *RedisStateStore) CompareAndSwap(ctx context.Context, prev, next *models.ItemState) (bool, error) {
	key := s.key(next.ItemID, next.Market)
	data, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("state encode: %w", err)
	}

	swapped := false
	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if prev != nil {
				return nil // somebody deleted it under us
			}
		case err != nil:
			return err
		default:
			if prev == nil {
				return nil // somebody created it first
			}
			var stored models.ItemState
			if err := json.Unmarshal(current, &stored); err != nil {
				return err
			}
			if !statesEqual(&stored, prev) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, stateTTL)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return false, nil
		}
		return false, fmt.Errorf("state cas: %w", err)
	}
	return swapped, nil
}

func statesEqual(a, b *models.ItemState) bool {
	return a.State == b.State &&
		a.Readiness == b.Readiness &&
		a.Score == b.Score &&
		a.Price == b.Price &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}
