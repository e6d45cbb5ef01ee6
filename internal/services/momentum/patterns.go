package momentum

import (
	"time"

	"CoinSage/internal/domain/models"
)

// hoursSinceLow returns the age of the cheapest sample. Ties resolve to
// the newest occurrence, which is what matters for "did we just bottom".
func hoursSinceLow(series models.PriceSeries, now time.Time) float64 {
	best := series[0]
	for _, p := range series[1:] {
		if p.Price < best.Price {
			best = p
		}
	}
	return now.Sub(best.Observed).Hours()
}

// localMinima returns the values of samples strictly cheaper than both
// list neighbors, preserving series order (newest first).
func localMinima(prices []int) []int {
	var lows []int
	for i := 1; i < len(prices)-1; i++ {
		if prices[i] < prices[i-1] && prices[i] < prices[i+1] {
			lows = append(lows, prices[i])
		}
	}
	return lows
}

// supportLevel buckets local minima into 2%-of-minimum-wide bands and
// returns the most revisited band and its bounce count. Needs at least
// 20 samples to say anything.
func supportLevel(series models.PriceSeries) (level, bounces int) {
	if len(series) < 20 {
		return 0, 0
	}
	prices := series.Prices()
	lo := prices[0]
	for _, p := range prices {
		if p < lo {
			lo = p
		}
	}
	bucket := int(float64(lo) * 0.02)
	if bucket < 1 {
		bucket = 1
	}
	counts := make(map[int]int)
	var order []int // first-seen bucket order for deterministic ties
	for _, v := range localMinima(prices) {
		b := v / bucket
		if counts[b] == 0 {
			order = append(order, b)
		}
		counts[b]++
	}
	bestBucket, bestCount := 0, 0
	for _, b := range order {
		if counts[b] > bestCount {
			bestBucket, bestCount = b, counts[b]
		}
	}
	if bestCount == 0 {
		return 0, 0
	}
	return bestBucket * bucket, bestCount
}

// hasHigherLows reports whether the local minima of the last 7 days are
// trending upward: the mean of the newer half of minima must exceed the
// mean of the older half by more than 2%.
func hasHigherLows(series models.PriceSeries, now time.Time) bool {
	if len(series) < 10 {
		return false
	}
	window := series.Since(now.Add(-7 * 24 * time.Hour))
	if len(window) < 5 {
		return false
	}
	lows := localMinima(window.Prices())
	if len(lows) < 2 {
		return false
	}
	mid := len(lows) / 2
	newer, older := lows[:mid], lows[mid:]
	return mean(newer) > mean(older)*1.02
}

// trendDays counts consecutive calendar days moving in the current
// direction of daily average prices. Negative while falling.
func trendDays(series models.PriceSeries) int {
	type agg struct {
		sum float64
		n   int
	}
	byDay := make(map[string]*agg)
	var order []string // newest first, series order
	for _, p := range series {
		day := p.Observed.UTC().Format("2006-01-02")
		a, ok := byDay[day]
		if !ok {
			a = &agg{}
			byDay[day] = a
			order = append(order, day)
		}
		a.sum += float64(p.Price)
		a.n++
	}
	if len(order) < 2 {
		return 0
	}
	avgs := make([]float64, len(order))
	for i, day := range order {
		a := byDay[day]
		avgs[i] = a.sum / float64(a.n)
	}
	dir := sign(avgs[0] - avgs[1])
	if dir == 0 {
		return 0
	}
	days := 1
	for i := 1; i < len(avgs)-1; i++ {
		if sign(avgs[i]-avgs[i+1]) != dir {
			break
		}
		days++
	}
	return days * dir
}

func mean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
