package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSage/internal/domain/models"
)

func stateAt(score int, ts time.Time) *models.ItemState {
	return &models.ItemState{
		ItemID:    "158023",
		Market:    "ps",
		State:     models.StateStable,
		Readiness: models.ReadinessReady,
		Score:     score,
		Price:     1000,
		UpdatedAt: ts,
	}
}

func TestMemoryStateStoreGetMissing(t *testing.T) {
	s := NewMemoryStateStore()
	if _, err := s.Get(context.Background(), "158023", "ps"); !errors.Is(err, models.ErrNoPriorState) {
		t.Fatalf("err = %v, want ErrNoPriorState", err)
	}
}

func TestMemoryStateStoreCASCreate(t *testing.T) {
	s := NewMemoryStateStore()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	ok, err := s.CompareAndSwap(context.Background(), nil, stateAt(60, now))
	if err != nil || !ok {
		t.Fatalf("create: ok=%v err=%v", ok, err)
	}

	// nil prev means "must not exist": second create conflicts
	ok, err = s.CompareAndSwap(context.Background(), nil, stateAt(70, now))
	if err != nil {
		t.Fatalf("CompareAndSwap: %v", err)
	}
	if ok {
		t.Fatalf("create over existing state must conflict")
	}
}

func TestMemoryStateStoreCASConflict(t *testing.T) {
	s := NewMemoryStateStore()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	first := stateAt(60, now)
	if err := s.Put(context.Background(), first); err != nil {
		t.Fatalf("put: %v", err)
	}

	stale := stateAt(55, now.Add(-time.Hour))
	ok, err := s.CompareAndSwap(context.Background(), stale, stateAt(80, now))
	if err != nil {
		t.Fatalf("CompareAndSwap: %v", err)
	}
	if ok {
		t.Fatalf("swap with stale prev must conflict")
	}

	ok, err = s.CompareAndSwap(context.Background(), first, stateAt(80, now.Add(time.Hour)))
	if err != nil || !ok {
		t.Fatalf("swap with matching prev: ok=%v err=%v", ok, err)
	}

	st, err := s.Get(context.Background(), "158023", "ps")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.Score != 80 {
		t.Fatalf("score = %d, want 80", st.Score)
	}
}
