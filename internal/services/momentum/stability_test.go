package momentum

import (
	"strings"
	"testing"

	"CoinSage/internal/domain/models"
)

func checkStability(t *testing.T, s models.PriceSeries) *models.StabilityReport {
	t.Helper()
	rep, err := NewStability(StabilityParams{}).Check(s, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rep
}

func TestStabilityInsufficientData(t *testing.T) {
	rep := checkStability(t, seriesAt(
		[2]float64{0, 1000}, [2]float64{2, 1001}, [2]float64{4, 1002},
	))
	if rep.Stable {
		t.Fatalf("expected not stable")
	}
	if rep.Reason != "insufficient recent data" {
		t.Fatalf("unexpected reason %q", rep.Reason)
	}
}

func TestStabilityVolatile(t *testing.T) {
	rep := checkStability(t, seriesAt(
		[2]float64{0, 1000}, [2]float64{1, 960}, [2]float64{2, 1080},
		[2]float64{3, 990}, [2]float64{4, 1050},
	))
	if rep.Stable {
		t.Fatalf("expected not stable")
	}
	if !strings.Contains(rep.Reason, "volatile") {
		t.Fatalf("unexpected reason %q", rep.Reason)
	}
}

func TestStabilityNewLows(t *testing.T) {
	rep := checkStability(t, seriesAt(
		[2]float64{0, 976}, [2]float64{1, 975}, [2]float64{2, 990},
		[2]float64{3, 1000}, [2]float64{4, 1002}, [2]float64{5, 1001},
	))
	if rep.Stable {
		t.Fatalf("expected not stable")
	}
	if !strings.Contains(rep.Reason, "new low") {
		t.Fatalf("unexpected reason %q", rep.Reason)
	}
}

func TestStabilityStable(t *testing.T) {
	rep := checkStability(t, seriesAt(
		[2]float64{0, 1000}, [2]float64{1, 1002}, [2]float64{2, 1001},
		[2]float64{3, 999}, [2]float64{4, 1000}, [2]float64{5, 1003},
	))
	if !rep.Stable {
		t.Fatalf("expected stable, reason %q", rep.Reason)
	}
	if rep.StableHours != 6 {
		t.Fatalf("stable hours = %d, want 6", rep.StableHours)
	}
	if rep.Consolidating {
		t.Fatalf("flat range should not read as consolidating")
	}
}

func TestStabilityConsolidating(t *testing.T) {
	rep := checkStability(t, seriesAt(
		[2]float64{0, 1012}, [2]float64{1, 1010}, [2]float64{2, 1011},
		[2]float64{3, 995}, [2]float64{4, 996}, [2]float64{5, 997},
	))
	if !rep.Stable {
		t.Fatalf("expected stable, reason %q", rep.Reason)
	}
	if !rep.Consolidating {
		t.Fatalf("expected consolidating with lows lifting from 995 to 1010")
	}
}
