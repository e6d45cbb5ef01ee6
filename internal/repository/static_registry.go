package repository

import (
	"context"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
)

// StaticRegistry serves the tracked item list from configuration.
type StaticRegistry struct {
	market string
	items  []models.Item
}

func NewStaticRegistry(market string, itemIDs []string) *StaticRegistry {
	items := make([]models.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		items = append(items, models.Item{ID: id, Market: market})
	}
	return &StaticRegistry{market: market, items: items}
}

var _ repository.ItemRegistry = (*StaticRegistry)(nil)

func (r *StaticRegistry) ActiveItems(_ context.Context, market string) ([]models.Item, error) {
	if market != r.market {
		return nil, nil
	}
	out := make([]models.Item, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *StaticRegistry) Lookup(_ context.Context, itemID, market string) (*models.Item, error) {
	if market == r.market {
		for i := range r.items {
			if r.items[i].ID == itemID {
				item := r.items[i]
				return &item, nil
			}
		}
	}
	return nil, models.ErrItemUnknown
}
