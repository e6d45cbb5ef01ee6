package momentum

import (
	"errors"
	"math"
	"testing"
	"time"

	"CoinSage/internal/domain/models"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

// seriesAt builds a newest-first series from (age in hours, price) pairs.
func seriesAt(points ...[2]float64) models.PriceSeries {
	s := make(models.PriceSeries, 0, len(points))
	for _, p := range points {
		s = append(s, models.PriceSample{
			ItemID:   "158023",
			Market:   "ps",
			Price:    int(p[1]),
			Observed: testNow.Add(-time.Duration(p[0] * float64(time.Hour))),
		})
	}
	return s
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("%s = %.4f, want %.4f", name, got, want)
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a := NewAnalyzer()
	_, err := a.Analyze(seriesAt([2]float64{0, 1000}, [2]float64{1, 1010}), testNow)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeInvalidSeries(t *testing.T) {
	a := NewAnalyzer()
	s := seriesAt([2]float64{0, 1000}, [2]float64{1, 1010}, [2]float64{2, 1020})
	s[1].Price = 0
	_, err := a.Analyze(s, testNow)
	var inv *models.InvalidSeriesError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidSeriesError, got %v", err)
	}
}

func TestAnalyzeDeceleration(t *testing.T) {
	// steep fall flattening out over the last two hours
	s := seriesAt(
		[2]float64{0, 1000},
		[2]float64{0.9, 1005},
		[2]float64{1.5, 1010},
		[2]float64{2.8, 1060},
		[2]float64{5.0, 1120},
		[2]float64{7.0, 1180},
		[2]float64{16, 1260},
		[2]float64{30, 1300},
	)
	rep, err := NewAnalyzer().Analyze(s, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "v1h", rep.V1h, -0.5528)
	approx(t, "v2h", rep.V2h, -0.6601)
	if !rep.Decelerating {
		t.Fatalf("expected decelerating, accel=%.3f", rep.Acceleration)
	}
	if rep.DecelHours != 2 {
		t.Fatalf("decel hours = %d, want 2", rep.DecelHours)
	}
	if rep.State != models.StateDecelerating {
		t.Fatalf("state = %s, want DECELERATING", rep.State)
	}
	// slowing but with no higher lows or support bounces to confirm
	if rep.Readiness != models.ReadinessWait {
		t.Fatalf("readiness = %s, want WAIT", rep.Readiness)
	}
}

func TestAnalyzeBottomingOnHigherLows(t *testing.T) {
	// recent decelerating fall on top of a history of rising dips
	s := seriesAt(
		[2]float64{0, 1040},
		[2]float64{0.9, 1045},
		[2]float64{1.5, 1050},
		[2]float64{2.8, 1100},
		[2]float64{5.0, 1160},
		[2]float64{20, 1035},
		[2]float64{30, 1150},
		[2]float64{45, 990},
		[2]float64{60, 1120},
		[2]float64{80, 960},
		[2]float64{100, 1100},
	)
	rep, err := NewAnalyzer().Analyze(s, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Decelerating || rep.DecelHours < 2 {
		t.Fatalf("expected confirmed deceleration, got decel=%v hours=%d",
			rep.Decelerating, rep.DecelHours)
	}
	if !rep.HasHigherLows {
		t.Fatalf("expected higher lows across the dips")
	}
	if rep.State != models.StateBottoming {
		t.Fatalf("state = %s, want BOTTOMING", rep.State)
	}
	if rep.Readiness != models.ReadinessAlmost {
		t.Fatalf("readiness = %s, want ALMOST", rep.Readiness)
	}
}

func TestAnalyzeStates(t *testing.T) {
	cases := []struct {
		name      string
		series    models.PriceSeries
		state     models.MomentumState
		readiness models.Readiness
	}{
		{
			name:      "freefall",
			series:    seriesAt([2]float64{0, 1000}, [2]float64{1, 1030}, [2]float64{2, 1060}),
			state:     models.StateFreefall,
			readiness: models.ReadinessAvoid,
		},
		{
			name:      "falling without slowing",
			series:    seriesAt([2]float64{0, 1000}, [2]float64{1, 1010}, [2]float64{2, 1020}, [2]float64{4, 1040}),
			state:     models.StateFalling,
			readiness: models.ReadinessAvoid,
		},
		{
			// one steep hour against a rising 2h rate is noise, not a fall
			name:      "single steep drop",
			series:    seriesAt([2]float64{0, 1000}, [2]float64{0.9, 1020}, [2]float64{2, 985}),
			state:     models.StateChoppy,
			readiness: models.ReadinessWait,
		},
		{
			name:      "surging",
			series:    seriesAt([2]float64{0, 1000}, [2]float64{1, 970}, [2]float64{2, 940}),
			state:     models.StateSurging,
			readiness: models.ReadinessWait,
		},
		{
			name:      "rising",
			series:    seriesAt([2]float64{0, 1000}, [2]float64{1, 990}, [2]float64{2, 980}),
			state:     models.StateRising,
			readiness: models.ReadinessWait,
		},
		{
			name: "stable with fresh low",
			series: seriesAt(
				[2]float64{0, 1000}, [2]float64{1, 1001}, [2]float64{2, 1002},
				[2]float64{3, 998}, [2]float64{5, 1005}, [2]float64{8, 1010},
				[2]float64{20, 1012},
			),
			state:     models.StateStable,
			readiness: models.ReadinessReady,
		},
		{
			name: "stable with aging low",
			series: seriesAt(
				[2]float64{0, 1000}, [2]float64{0.9, 1001}, [2]float64{1.5, 1002},
				[2]float64{2.8, 1003}, [2]float64{5, 1005}, [2]float64{7, 1008},
				[2]float64{16, 995}, [2]float64{30, 990}, [2]float64{40, 1010},
				[2]float64{60, 1020},
			),
			state:     models.StateStable,
			readiness: models.ReadinessAlmost,
		},
		{
			name: "stable with stale low",
			series: seriesAt(
				[2]float64{0, 1000}, [2]float64{1, 1001}, [2]float64{2, 1002},
				[2]float64{3, 1003}, [2]float64{5, 1005}, [2]float64{8, 1008},
				[2]float64{20, 1010}, [2]float64{50, 1009}, [2]float64{90, 995},
			),
			state:     models.StateStable,
			readiness: models.ReadinessWait,
		},
	}
	a := NewAnalyzer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := a.Analyze(tc.series, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rep.State != tc.state {
				t.Fatalf("state = %s, want %s", rep.State, tc.state)
			}
			if rep.Readiness != tc.readiness {
				t.Fatalf("readiness = %s, want %s", rep.Readiness, tc.readiness)
			}
		})
	}
}

func TestAnalyzeHigherLows(t *testing.T) {
	base := [][2]float64{
		{0, 1048}, {3, 1022}, {6, 1010}, {10, 1036}, {20, 1050},
		{30, 1045}, {40, 1020}, {80, 1040}, {100, 1060},
	}
	build := func(secondLow float64) models.PriceSeries {
		pts := append([][2]float64{}, base[:7]...)
		pts = append(pts, [2]float64{60, secondLow})
		pts = append(pts, base[7:]...)
		return seriesAt(pts...)
	}
	a := NewAnalyzer()

	rep, err := a.Analyze(build(980), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.HasHigherLows {
		t.Fatalf("expected higher lows with dip recovering from 980 to 1010")
	}

	rep, err = a.Analyze(build(1012), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.HasHigherLows {
		t.Fatalf("expected no higher lows when the earlier dip is no deeper")
	}
}

func TestAnalyzeSupportLevel(t *testing.T) {
	pts := make([][2]float64, 0, 21)
	lows := []float64{900, 901, 899, 900, 902, 898, 900, 901, 899, 900}
	for i := 0; i < 21; i++ {
		price := 920.0
		if i%2 == 1 {
			price = lows[i/2]
		}
		pts = append(pts, [2]float64{float64(i), price})
	}
	rep, err := NewAnalyzer().Analyze(seriesAt(pts...), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.TimesBounced != 7 {
		t.Fatalf("bounces = %d, want 7", rep.TimesBounced)
	}
	// bucket width is 2% of the 898 minimum, floored to 17
	if rep.SupportLevel != 884 {
		t.Fatalf("support level = %d, want 884", rep.SupportLevel)
	}
	if rep.ConfidenceScore != 68 {
		t.Fatalf("confidence = %d, want 68", rep.ConfidenceScore)
	}
	if rep.Confidence != models.ConfidenceMedium {
		t.Fatalf("confidence label = %s, want MEDIUM", rep.Confidence)
	}
}

func TestAnalyzeTrendDays(t *testing.T) {
	s := seriesAt(
		[2]float64{0, 900}, [2]float64{24, 950},
		[2]float64{48, 1000}, [2]float64{72, 1050},
	)
	rep, err := NewAnalyzer().Analyze(s, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.DaysInTrend != -3 {
		t.Fatalf("trend days = %d, want -3", rep.DaysInTrend)
	}
}
