package scoring

import "time"

// Params carries the tunable knobs of the scoring layer. The defaults
// are the calibrated production values; config may override them.
type Params struct {
	TaxRate            float64       // marketplace cut applied to sale proceeds
	UpgradeMargin      int           // score gain required to climb the readiness ladder
	DowngradeMargin    int           // score loss required to fall down it
	StickyWindow       time.Duration // how long a READY call defends itself
	StickyTolerancePct float64       // max adverse price move before READY is released
	ScoreDecay         int           // per-evaluation decay while sticky
}

func DefaultParams() Params {
	return Params{
		TaxRate:            0.05,
		UpgradeMargin:      10,
		DowngradeMargin:    15,
		StickyWindow:       2 * time.Hour,
		StickyTolerancePct: 3,
		ScoreDecay:         5,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
