package momentum

import (
	"math"
	"time"

	"CoinSage/internal/domain/models"
)

// windowTargets are the lookback horizons, in hours, smallest first.
// A sample binds a target when its age falls in [0.5t, 1.5t]; the
// newest qualifying sample wins.
var windowTargets = []float64{1, 2, 4, 6, 12, 24, 48}

// minSamples is the floor below which no velocity can be computed.
const minSamples = 3

type boundWindow struct {
	price float64
	hours float64
}

// Analyzer computes velocity reports from raw price series.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze normalizes the series and produces a full velocity report.
// Returns models.ErrInsufficientData for series shorter than 3 samples
// and *models.InvalidSeriesError for malformed ones.
func (a *Analyzer) Analyze(series models.PriceSeries, now time.Time) (*models.VelocityReport, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	series = series.Normalize()
	if len(series) < minSamples {
		return nil, models.ErrInsufficientData
	}

	cur := float64(series[0].Price)
	bound := bindWindows(series, now)

	vel := func(t float64) (float64, bool) {
		w, ok := bound[t]
		if !ok || w.hours == 0 {
			return 0, false
		}
		return ((cur - w.price) / w.price * 100) / w.hours, true
	}

	v1, _ := vel(1)
	v2, _ := vel(2)
	v4, _ := vel(4)
	v6, ok6 := vel(6)
	if !ok6 {
		v6 = v2
	}
	v12, _ := vel(12)
	v24, ok24 := vel(24)
	if !ok24 {
		v24 = v6
	}
	v48, _ := vel(48)

	accel, decel, decelHours := acceleration(bound, v1, v2, v6)

	hoursLow := hoursSinceLow(series, now)
	support, bounced := supportLevel(series)
	higherLows := hasHigherLows(series, now)
	trend := trendDays(series)
	variance := variancePct(series.Prices())
	span := series.Span().Hours()

	state, readiness := classify(v1, v2, decel, decelHours, hoursLow, higherLows, bounced)

	confScore := confidenceScore(len(series), span, variance)

	rep := &models.VelocityReport{
		ItemID:          series[0].ItemID,
		Market:          series[0].Market,
		CurrentPrice:    series[0].Price,
		Timestamp:       now,
		V1h:             v1,
		V2h:             v2,
		V4h:             v4,
		V6h:             v6,
		V12h:            v12,
		V24h:            v24,
		V48h:            v48,
		Acceleration:    accel,
		Decelerating:    decel,
		DecelHours:      decelHours,
		HoursSinceLow:   hoursLow,
		DaysInTrend:     trend,
		SupportLevel:    support,
		TimesBounced:    bounced,
		HasHigherLows:   higherLows,
		State:           state,
		Readiness:       readiness,
		Confidence:      confidenceLabel(confScore),
		ConfidenceScore: confScore,
		DataPoints:      len(series),
		SpanHours:       span,
		VariancePct:     variance,
	}
	return rep, nil
}

// bindWindows assigns each target the newest sample whose age fits its
// tolerance band. A sample may bind several targets.
func bindWindows(series models.PriceSeries, now time.Time) map[float64]boundWindow {
	found := make(map[float64]boundWindow, len(windowTargets))
	for _, p := range series {
		age := now.Sub(p.Observed).Hours()
		for _, t := range windowTargets {
			if _, ok := found[t]; ok {
				continue
			}
			if age >= t*0.5 && age <= t*1.5 {
				found[t] = boundWindow{price: float64(p.Price), hours: age}
			}
		}
		if len(found) == len(windowTargets) {
			break
		}
	}
	return found
}

// acceleration compares the recent 2h slope against the slope between
// the 2h and 4h anchors. Positive acceleration while falling means the
// drop is flattening out.
func acceleration(bound map[float64]boundWindow, v1, v2, v6 float64) (accel float64, decel bool, hours int) {
	w2, ok2 := bound[2]
	w4, ok4 := bound[4]
	if !ok2 || !ok4 || w4.hours <= w2.hours {
		return 0, false, 0
	}
	older := ((w2.price - w4.price) / w4.price * 100) / (w4.hours - w2.hours)
	accel = v2 - older
	if v2 < -0.3 && accel > 0.2 {
		decel = true
		if v1 > v2 {
			hours = 1
		}
		if v2 > v6 {
			hours = 2
		}
	}
	return accel, decel, hours
}

// classify runs the momentum state machine. Both directional branches
// require the 1h and 2h rates to agree; a single noisy sample never
// flips the state.
func classify(v1, v2 float64, decel bool, decelHours int, hoursLow float64, higherLows bool, bounced int) (models.MomentumState, models.Readiness) {
	switch {
	case v1 < -0.5 && v2 < -0.3:
		switch {
		case v1 < -2 && v2 < -1.5:
			return models.StateFreefall, models.ReadinessAvoid
		case decel && decelHours >= 2:
			if higherLows || (hoursLow > 12 && bounced >= 2) {
				return models.StateBottoming, models.ReadinessAlmost
			}
			return models.StateDecelerating, models.ReadinessWait
		case decel:
			// slowing for under two hours, not confirmed yet
			return models.StateDecelerating, models.ReadinessWait
		default:
			return models.StateFalling, models.ReadinessAvoid
		}

	case v1 > 0.5 && v2 > 0.3:
		// momentum already moved either way, the bottom is behind us
		if v1 > 2 {
			return models.StateSurging, models.ReadinessWait
		}
		return models.StateRising, models.ReadinessWait

	case math.Abs(v1) < 0.3 && math.Abs(v2) < 0.2:
		switch {
		case hoursLow <= 24, hoursLow <= 48 && higherLows:
			return models.StateStable, models.ReadinessReady
		case hoursLow <= 72:
			return models.StateStable, models.ReadinessAlmost
		default:
			return models.StateStable, models.ReadinessWait
		}
	}
	return models.StateChoppy, models.ReadinessWait
}

// confidenceScore rates the data quality, not the signal itself.
func confidenceScore(points int, spanHours, variance float64) int {
	score := 50
	switch {
	case points >= 100:
		score += 25
	case points >= 50:
		score += 15
	case points >= 20:
		score += 5
	default:
		score -= 15
	}
	switch {
	case spanHours >= 168:
		score += 15
	case spanHours >= 48:
		score += 8
	case spanHours >= 12:
		score += 3
	default:
		score -= 10
	}
	switch {
	case variance < 5:
		score += 10
	case variance < 10:
		score += 5
	case variance > 30:
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func confidenceLabel(score int) models.Confidence {
	switch {
	case score >= 75:
		return models.ConfidenceHigh
	case score >= 50:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func variancePct(prices []int) float64 {
	if len(prices) == 0 {
		return 0
	}
	lo, hi := prices[0], prices[0]
	for _, p := range prices {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo <= 0 {
		return 0
	}
	return float64(hi-lo) / float64(lo) * 100
}
