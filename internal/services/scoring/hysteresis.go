package scoring

import (
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
)

// Evaluation is a freshly computed buy-side result entering hysteresis.
type Evaluation struct {
	State     models.MomentumState
	Readiness models.Readiness
	Score     int
	Price     int
}

// Decision is what hysteresis lets through. When Accepted is false the
// prior tuple is re-emitted and the stored state must not change.
type Decision struct {
	State     models.MomentumState
	Readiness models.Readiness
	Score     int
	Accepted  bool
	Sticky    bool
	Reason    string
}

// Hysteresis smooths readiness flapping between consecutive
// evaluations of the same item.
type Hysteresis struct {
	p Params
}

func NewHysteresis(p Params) *Hysteresis {
	if p.UpgradeMargin == 0 && p.DowngradeMargin == 0 {
		p = DefaultParams()
	}
	return &Hysteresis{p: p}
}

// Apply compares a fresh evaluation against the prior stored state.
// Rules, in order:
//   - no prior state: accept.
//   - sticky READY: a recent READY holds through small adverse moves,
//     with the score decaying toward the fresh one.
//   - ladder moves: upgrades need UpgradeMargin of score improvement,
//     downgrades need DowngradeMargin of deterioration; anything less
//     re-emits the prior tuple.
func (h *Hysteresis) Apply(prior *models.ItemState, fresh Evaluation, now time.Time) Decision {
	if prior == nil {
		return Decision{
			State:     fresh.State,
			Readiness: fresh.Readiness,
			Score:     fresh.Score,
			Accepted:  true,
			Reason:    "first evaluation",
		}
	}

	if prior.Readiness == models.ReadinessReady && now.Sub(prior.UpdatedAt) < h.p.StickyWindow {
		change := priceChangePct(prior.Price, fresh.Price)
		if change > -h.p.StickyTolerancePct {
			score := prior.Score - h.p.ScoreDecay
			if fresh.Score > score {
				score = fresh.Score
			}
			return Decision{
				State:     prior.State,
				Readiness: models.ReadinessReady,
				Score:     score,
				Accepted:  true,
				Sticky:    true,
				Reason:    fmt.Sprintf("holding READY, price moved %.1f%%", change),
			}
		}
	}

	diff := fresh.Score - prior.Score
	freshOrd := fresh.Readiness.Ordinal()
	priorOrd := prior.Readiness.Ordinal()

	switch {
	case freshOrd > priorOrd && diff < h.p.UpgradeMargin:
		return Decision{
			State:     prior.State,
			Readiness: prior.Readiness,
			Score:     prior.Score,
			Accepted:  false,
			Reason:    fmt.Sprintf("upgrade needs +%d, got %+d", h.p.UpgradeMargin, diff),
		}
	case freshOrd < priorOrd && diff > -h.p.DowngradeMargin:
		return Decision{
			State:     prior.State,
			Readiness: prior.Readiness,
			Score:     prior.Score,
			Accepted:  false,
			Reason:    fmt.Sprintf("downgrade needs -%d, got %+d", h.p.DowngradeMargin, diff),
		}
	}

	return Decision{
		State:     fresh.State,
		Readiness: fresh.Readiness,
		Score:     fresh.Score,
		Accepted:  true,
		Reason:    "accepted",
	}
}

func priceChangePct(prior, fresh int) float64 {
	if prior <= 0 {
		return 0
	}
	return float64(fresh-prior) / float64(prior) * 100
}
