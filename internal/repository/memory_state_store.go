package repository

import (
	"context"
	"sync"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
)

// MemoryStateStore is an in-process StateStore, used in tests and when
// running without Redis.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]models.ItemState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]models.ItemState)}
}

var _ repository.StateStore = (*MemoryStateStore)(nil)

func memKey(itemID, market string) string {
	return market + ":" + itemID
}

func (s *MemoryStateStore) Get(_ context.Context, itemID, market string) (*models.ItemState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[memKey(itemID, market)]
	if !ok {
		return nil, models.ErrNoPriorState
	}
	out := st
	return &out, nil
}

func (s *MemoryStateStore) Put(_ context.Context, st *models.ItemState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[memKey(st.ItemID, st.Market)] = *st
	return nil
}

func (s *MemoryStateStore) CompareAndSwap(_ context.Context, prev, next *models.ItemState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memKey(next.ItemID, next.Market)
	stored, exists := s.states[key]
	if prev == nil {
		if exists {
			return false, nil
		}
	} else {
		if !exists || !statesEqual(&stored, prev) {
			return false, nil
		}
	}
	s.states[key] = *next
	return true, nil
}
