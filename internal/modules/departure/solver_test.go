package departure

import (
	"math"
	"testing"
	"time"

	"github.com/khtml-hack/baekend/internal/config"
	"github.com/khtml-hack/baekend/internal/types"
)

func testRecommendConfig() config.RecommendConfig {
	return config.RecommendConfig{
		WindowMinutes:       120,
		AltOffsetMinutes:    15,
		BaseSpeedKmh:        30,
		RouteCircuity:       1.35,
		CongestionSlope:     0.25,
		RewardFactor:        10,
		RewardCap:           100,
		FallbackDurationMin: 40,
	}
}

func flatScorer(score float64) Scorer {
	return scoreFunc(func(time.Time, string) float64 { return score })
}

var (
	solverNow = time.Date(2026, 9, 4, 6, 0, 0, 0, time.UTC)
	// ~9.9km apart along the same meridian; x1.35 circuity at 30km/h with
	// congestion 1.0 gives ceil(26.7) = 27 minutes.
	cityHall = types.Point{Lat: 37.5000, Lng: 127.0000}
	uptown   = types.Point{Lat: 37.5890, Lng: 127.0000}
)

func TestLatestDeparture_MaximizesSlack(t *testing.T) {
	s := NewSolver(flatScorer(1.0), testRecommendConfig())

	arriveBy := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	plan := s.LatestDeparture(solverNow, ArrivalQuery{
		Origin:   &cityHall,
		Dest:     &uptown,
		ArriveBy: arriveBy,
	})

	if !plan.Feasible {
		t.Fatal("expected a feasible plan")
	}
	if plan.Degraded {
		t.Fatal("unexpected degraded plan")
	}
	wantDuration := 27 * time.Minute
	if plan.Duration != wantDuration {
		t.Errorf("duration = %s, want %s", plan.Duration, wantDuration)
	}
	wantDeparture := time.Date(2026, 9, 4, 7, 33, 0, 0, time.UTC)
	if !plan.Departure.Equal(wantDeparture) {
		t.Errorf("departure = %s, want %s", plan.Departure.Format("15:04"), wantDeparture.Format("15:04"))
	}
	if plan.Departure.Add(plan.Duration).After(arriveBy) {
		t.Error("departure + duration exceeds the deadline")
	}
}

func TestLatestDeparture_AlternativesNearPrimaryOffsets(t *testing.T) {
	s := NewSolver(flatScorer(1.0), testRecommendConfig())

	arriveBy := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	plan := s.LatestDeparture(solverNow, ArrivalQuery{Origin: &cityHall, Dest: &uptown, ArriveBy: arriveBy})

	if len(plan.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(plan.Alternatives))
	}
	want1 := plan.Departure.Add(-10 * time.Minute)
	want2 := plan.Departure.Add(-20 * time.Minute)
	if !plan.Alternatives[0].Equal(want1) {
		t.Errorf("first alternative = %s, want %s", plan.Alternatives[0].Format("15:04"), want1.Format("15:04"))
	}
	if !plan.Alternatives[1].Equal(want2) {
		t.Errorf("second alternative = %s, want %s", plan.Alternatives[1].Format("15:04"), want2.Format("15:04"))
	}
}

func TestLatestDeparture_FeasibilityExact(t *testing.T) {
	// Congestion varies over the window; every returned departure must still
	// satisfy departure + duration <= arriveBy exactly.
	wavy := scoreFunc(func(at time.Time, _ string) float64 {
		m := float64(at.Hour()*60 + at.Minute())
		return 2.5 + 1.5*math.Sin(m/11)
	})
	s := NewSolver(wavy, testRecommendConfig())

	arriveBy := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	plan := s.LatestDeparture(solverNow, ArrivalQuery{Origin: &cityHall, Dest: &uptown, ArriveBy: arriveBy})

	if !plan.Feasible {
		t.Fatal("expected a feasible plan")
	}
	if plan.Departure.Add(plan.Duration).After(arriveBy) {
		t.Errorf("infeasible primary: %s + %s > %s",
			plan.Departure.Format("15:04"), plan.Duration, arriveBy.Format("15:04"))
	}
}

func TestLatestDeparture_DeadlineRollsToTomorrow(t *testing.T) {
	s := NewSolver(flatScorer(1.0), testRecommendConfig())

	// Deadline equal to now must resolve to tomorrow, never a past instant.
	plan := s.LatestDeparture(solverNow, ArrivalQuery{Origin: &cityHall, Dest: &uptown, ArriveBy: solverNow})

	if !plan.Window.End.Equal(solverNow.AddDate(0, 0, 1)) {
		t.Errorf("window end = %s, want tomorrow %s", plan.Window.End, solverNow.AddDate(0, 0, 1))
	}
	if plan.Departure.Before(solverNow) {
		t.Errorf("departure %s is in the past", plan.Departure)
	}
}

func TestLatestDeparture_InfeasibleFallsBackToEarliest(t *testing.T) {
	s := NewSolver(flatScorer(1.0), testRecommendConfig())

	busan := types.Point{Lat: 35.1796, Lng: 129.0756}
	arriveBy := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	plan := s.LatestDeparture(solverNow, ArrivalQuery{Origin: &cityHall, Dest: &busan, ArriveBy: arriveBy})

	if plan.Feasible {
		t.Fatal("a 300km trip cannot fit a 2-hour window")
	}
	wantDeparture := arriveBy.Add(-120 * time.Minute)
	if !plan.Departure.Equal(wantDeparture) {
		t.Errorf("best-effort departure = %s, want earliest-in-window %s",
			plan.Departure.Format("15:04"), wantDeparture.Format("15:04"))
	}
	if plan.Duration <= 0 {
		t.Error("best-effort plan must still report an estimated duration")
	}
}

func TestLatestDeparture_DegradedWithoutCoordinates(t *testing.T) {
	s := NewSolver(flatScorer(1.0), testRecommendConfig())

	arriveBy := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	plan := s.LatestDeparture(solverNow, ArrivalQuery{Origin: nil, Dest: nil, ArriveBy: arriveBy})

	if !plan.Degraded {
		t.Fatal("expected degraded plan without coordinates")
	}
	if plan.Duration != 40*time.Minute {
		t.Errorf("duration = %s, want fixed 40m", plan.Duration)
	}
	want := arriveBy.Add(-40 * time.Minute)
	if !plan.Departure.Equal(want) {
		t.Errorf("departure = %s, want %s", plan.Departure.Format("15:04"), want.Format("15:04"))
	}
}

func TestEstimateDuration_DegradedFallback(t *testing.T) {
	s := NewSolver(flatScorer(3.0), testRecommendConfig())
	if d := s.EstimateDuration(solverNow, nil, &uptown, "default"); d != 40*time.Minute {
		t.Errorf("EstimateDuration without origin = %s, want 40m", d)
	}
}

func TestEstimateDuration_CongestionMultiplier(t *testing.T) {
	base := NewSolver(flatScorer(1.0), testRecommendConfig())
	congested := NewSolver(flatScorer(5.0), testRecommendConfig())

	fast := base.EstimateDuration(solverNow, &cityHall, &uptown, "default")
	slow := congested.EstimateDuration(solverNow, &cityHall, &uptown, "default")

	// multiplier at score 5 is 1 + 0.25*4 = 2.0
	if slow < fast*2-time.Minute || slow > fast*2+time.Minute {
		t.Errorf("congested duration %s not about twice %s", slow, fast)
	}
}
