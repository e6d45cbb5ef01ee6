package scoring

import (
	"testing"
	"time"

	"CoinSage/internal/domain/models"
)

var hystNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func priorState(readiness models.Readiness, score, price int, age time.Duration) *models.ItemState {
	return &models.ItemState{
		ItemID:    "158023",
		Market:    "ps",
		State:     models.StateStable,
		Readiness: readiness,
		Score:     score,
		Price:     price,
		UpdatedAt: hystNow.Add(-age),
	}
}

func TestHysteresisFirstEvaluation(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	d := h.Apply(nil, Evaluation{State: models.StateChoppy, Readiness: models.ReadinessWait, Score: 42, Price: 1000}, hystNow)
	if !d.Accepted || d.Sticky {
		t.Fatalf("first evaluation should be accepted outright: %+v", d)
	}
	if d.Readiness != models.ReadinessWait || d.Score != 42 {
		t.Fatalf("fresh tuple not passed through: %+v", d)
	}
}

func TestHysteresisStickyReady(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	prior := priorState(models.ReadinessReady, 70, 1000, time.Hour)
	fresh := Evaluation{State: models.StateChoppy, Readiness: models.ReadinessWait, Score: 50, Price: 980}

	d := h.Apply(prior, fresh, hystNow)
	if !d.Accepted || !d.Sticky {
		t.Fatalf("a 2%% dip within the window must not release READY: %+v", d)
	}
	if d.Readiness != models.ReadinessReady {
		t.Fatalf("readiness = %s, want READY", d.Readiness)
	}
	if d.Score != 65 {
		t.Fatalf("score = %d, want max(70-5, 50) = 65", d.Score)
	}
	if d.State != prior.State {
		t.Fatalf("sticky decision must keep the prior state")
	}
}

func TestHysteresisStickyReleasedByPrice(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	prior := priorState(models.ReadinessReady, 70, 1000, time.Hour)
	fresh := Evaluation{State: models.StateFalling, Readiness: models.ReadinessWait, Score: 50, Price: 960}

	d := h.Apply(prior, fresh, hystNow)
	if d.Sticky {
		t.Fatalf("a 4%% dip should release READY")
	}
	// downgrade READY -> WAIT with -20 clears the -15 margin
	if !d.Accepted || d.Readiness != models.ReadinessWait {
		t.Fatalf("expected accepted downgrade: %+v", d)
	}
}

func TestHysteresisStickyExpires(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	prior := priorState(models.ReadinessReady, 70, 1000, 3*time.Hour)
	fresh := Evaluation{State: models.StateChoppy, Readiness: models.ReadinessWait, Score: 50, Price: 980}

	d := h.Apply(prior, fresh, hystNow)
	if d.Sticky {
		t.Fatalf("sticky window is 2h, prior is 3h old")
	}
	if !d.Accepted || d.Readiness != models.ReadinessWait {
		t.Fatalf("expected accepted downgrade: %+v", d)
	}
}

func TestHysteresisUpgradeMargin(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	prior := priorState(models.ReadinessWait, 50, 1000, time.Hour)

	d := h.Apply(prior, Evaluation{State: models.StateStable, Readiness: models.ReadinessAlmost, Score: 55, Price: 1000}, hystNow)
	if d.Accepted {
		t.Fatalf("+5 must not clear the +10 upgrade margin: %+v", d)
	}
	if d.Readiness != models.ReadinessWait || d.Score != 50 {
		t.Fatalf("rejected upgrade must re-emit the prior tuple: %+v", d)
	}

	d = h.Apply(prior, Evaluation{State: models.StateStable, Readiness: models.ReadinessAlmost, Score: 62, Price: 1000}, hystNow)
	if !d.Accepted || d.Readiness != models.ReadinessAlmost {
		t.Fatalf("+12 should clear the margin: %+v", d)
	}
}

func TestHysteresisDowngradeMargin(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	prior := priorState(models.ReadinessReady, 70, 1000, 3*time.Hour)

	d := h.Apply(prior, Evaluation{State: models.StateChoppy, Readiness: models.ReadinessWait, Score: 60, Price: 1000}, hystNow)
	if d.Accepted {
		t.Fatalf("-10 must not clear the -15 downgrade margin: %+v", d)
	}
	if d.Readiness != models.ReadinessReady || d.Score != 70 {
		t.Fatalf("rejected downgrade must re-emit the prior tuple: %+v", d)
	}

	d = h.Apply(prior, Evaluation{State: models.StateChoppy, Readiness: models.ReadinessWait, Score: 48, Price: 1000}, hystNow)
	if !d.Accepted || d.Readiness != models.ReadinessWait {
		t.Fatalf("-22 should clear the margin: %+v", d)
	}
}

func TestHysteresisSameRungAccepts(t *testing.T) {
	h := NewHysteresis(DefaultParams())
	prior := priorState(models.ReadinessWait, 50, 1000, time.Hour)

	d := h.Apply(prior, Evaluation{State: models.StateChoppy, Readiness: models.ReadinessWait, Score: 45, Price: 990}, hystNow)
	if !d.Accepted {
		t.Fatalf("same rung should always refresh: %+v", d)
	}
	if d.Score != 45 || d.State != models.StateChoppy {
		t.Fatalf("fresh tuple not passed through: %+v", d)
	}
}
