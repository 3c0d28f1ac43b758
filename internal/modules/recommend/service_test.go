package recommend

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/khtml-hack/baekend/internal/config"
	"github.com/khtml-hack/baekend/internal/integrations/geocode"
	"github.com/khtml-hack/baekend/internal/modules/congestion"
	"github.com/khtml-hack/baekend/internal/modules/departure"
	"github.com/khtml-hack/baekend/internal/types"
)

type fakeGeocoder struct {
	results map[string]geocode.Result
}

func (f fakeGeocoder) Normalize(_ context.Context, address string) geocode.Result {
	if r, ok := f.results[address]; ok {
		return r
	}
	return geocode.Result{NormalizedAddress: address, Degraded: true}
}

func testConfig() config.RecommendConfig {
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

// 2026-09-04 12:00 is a Friday noon, outside every rush window.
var testNow = time.Date(2026, 9, 4, 12, 0, 0, 0, time.UTC)

var (
	originPt = types.Point{Lat: 37.5000, Lng: 127.0000}
	destPt   = types.Point{Lat: 37.5890, Lng: 127.0000} // ~9.9km north
)

func testGeocoder() fakeGeocoder {
	return fakeGeocoder{results: map[string]geocode.Result{
		"서울시청":    {NormalizedAddress: "서울 중구 세종대로 110", Coord: &originPt},
		"강남역":     {NormalizedAddress: "서울 강남구 강남대로 396", Coord: &destPt},
		"어딘지 모름": {NormalizedAddress: "어딘지 모름", Degraded: true},
	}}
}

func newTestService(t *testing.T, table congestion.Table) *Service {
	t.Helper()
	svc := NewService(nil, testGeocoder(), nil, nil,
		congestion.NewModel(table), testConfig(), time.UTC, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func flatTable(score float64) congestion.Table {
	hours := map[string]float64{}
	for h := 0; h < 24; h++ {
		hours[twoDigit(h)] = score
	}
	return congestion.Table{
		HourlyPatterns: map[string]map[string]float64{
			"friday": hours,
		},
		SpecialEvents:   map[string]float64{"rush_hour_multiplier": 1.0, "weekend_multiplier": 1.0},
		LocationFactors: map[string]float64{},
	}
}

func twoDigit(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15")
}

func TestBuild_RollingModeBasics(t *testing.T) {
	svc := newTestService(t, flatTable(1.0))

	rec, err := svc.Build(context.Background(), "user-1", "서울시청", "강남역", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(rec.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(rec.Options))
	}
	if rec.DeadlineMode {
		t.Error("rolling request flagged as deadline mode")
	}
	if rec.Options[0].Title != "최적 시간" || rec.Options[1].Title != "대안 시간" {
		t.Errorf("unexpected titles: %q / %q", rec.Options[0].Title, rec.Options[1].Title)
	}
	if rec.Options[0].TimeSavedMin < rec.Options[1].TimeSavedMin {
		t.Error("best option must lead on time saved")
	}
	for _, opt := range rec.Options {
		if opt.RewardAmount < 0 || opt.RewardAmount > 100 {
			t.Errorf("reward %d out of [0,100]", opt.RewardAmount)
		}
		if opt.CongestionLevel < 1 || opt.CongestionLevel > 5 {
			t.Errorf("congestion level %d out of [1,5]", opt.CongestionLevel)
		}
		if opt.OptimalDepartureTime == "" || opt.Window.Start == "" || opt.Window.End == "" {
			t.Errorf("option has missing time fields: %+v", opt)
		}
	}

	// Flat congestion: the scanner picks the first minute, which is now.
	if rec.Options[0].DepartInTimeText != "지금 출발 (12:00)" {
		t.Errorf("departInTimeText = %q", rec.Options[0].DepartInTimeText)
	}
}

func TestBuild_CurrentAnalysisFromLiveNow(t *testing.T) {
	svc := newTestService(t, flatTable(1.0))

	rec, err := svc.Build(context.Background(), "user-1", "서울시청", "강남역", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if rec.Current.DepartureTime != "12:00" {
		t.Errorf("current departure = %q, want 12:00", rec.Current.DepartureTime)
	}
	// ~9.9km x 1.35 at 30km/h, congestion 1.0 -> 27 minutes.
	if rec.Current.DurationMin != 27 {
		t.Errorf("current duration = %d, want 27", rec.Current.DurationMin)
	}
	if rec.Current.ArrivalTime != "12:27" {
		t.Errorf("current arrival = %q, want 12:27", rec.Current.ArrivalTime)
	}
	if rec.Current.CongestionDescription == "" {
		t.Error("missing congestion description")
	}
}

func TestBuild_RewardReflectsTimeSaved(t *testing.T) {
	// Congestion drops sharply after 13:00, so departing later saves time
	// against the leave-now baseline.
	table := flatTable(5.0)
	table.HourlyPatterns["friday"]["13"] = 1.0
	svc := newTestService(t, table)

	rec, err := svc.Build(context.Background(), "user-1", "서울시청", "강남역", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	best := rec.Options[0]
	if best.TimeSavedMin <= 0 {
		t.Fatalf("expected positive time saved, got %d", best.TimeSavedMin)
	}
	want := best.TimeSavedMin * 10
	if want > 100 {
		want = 100
	}
	if best.RewardAmount != want {
		t.Errorf("reward = %d, want %d", best.RewardAmount, want)
	}
}

func TestBuild_DeadlineMode(t *testing.T) {
	svc := newTestService(t, flatTable(1.0))

	deadline := testNow.Add(2 * time.Hour)
	rec, err := svc.Build(context.Background(), "user-1", "서울시청", "강남역", &deadline)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !rec.DeadlineMode || !rec.DeadlineMet {
		t.Errorf("DeadlineMode=%v DeadlineMet=%v, want both true", rec.DeadlineMode, rec.DeadlineMet)
	}
	if rec.Options[0].Title != "도착제한 최적" || rec.Options[1].Title != "도착제한 대안" {
		t.Errorf("unexpected titles: %q / %q", rec.Options[0].Title, rec.Options[1].Title)
	}
	// Latest feasible departure for a 27-minute trip before 14:00.
	if rec.Options[0].OptimalDepartureTime != "13:33" && rec.Options[1].OptimalDepartureTime != "13:33" {
		t.Errorf("no option departs at 13:33: %q / %q",
			rec.Options[0].OptimalDepartureTime, rec.Options[1].OptimalDepartureTime)
	}
}

func TestBuild_DeadlineAtRisk(t *testing.T) {
	svc := newTestService(t, flatTable(1.0))
	// Busan is ~325km away; nothing in a 2-hour window makes the deadline.
	busan := types.Point{Lat: 35.1796, Lng: 129.0756}
	svc.geocoder = fakeGeocoder{results: map[string]geocode.Result{
		"서울시청": {NormalizedAddress: "서울 중구 세종대로 110", Coord: &originPt},
		"부산역":   {NormalizedAddress: "부산 동구 중앙대로 206", Coord: &busan},
	}}

	deadline := testNow.Add(2 * time.Hour)
	rec, err := svc.Build(context.Background(), "user-1", "서울시청", "부산역", &deadline)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rec.DeadlineMet {
		t.Error("an infeasible trip must report the deadline as unmet")
	}
	if len(rec.Options) != 2 {
		t.Fatalf("best-effort response still carries 2 options, got %d", len(rec.Options))
	}
}

func TestBuild_DegradedGeocoding(t *testing.T) {
	svc := newTestService(t, flatTable(1.0))

	rec, err := svc.Build(context.Background(), "user-1", "어딘지 모름", "어딘지 모름", nil)
	if err != nil {
		t.Fatalf("degraded input must not fail: %v", err)
	}
	// Fixed 40-minute fallback everywhere.
	if rec.Current.DurationMin != 40 {
		t.Errorf("degraded duration = %d, want 40", rec.Current.DurationMin)
	}
	for _, opt := range rec.Options {
		if opt.ExpectedDurationMin != 40 {
			t.Errorf("degraded option duration = %d, want 40", opt.ExpectedDurationMin)
		}
		if opt.RewardAmount != 0 {
			t.Errorf("no reward without a real estimate, got %d", opt.RewardAmount)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	table := flatTable(3.0)
	table.HourlyPatterns["friday"]["13"] = 2.0
	svc := newTestService(t, table)

	first, err := svc.Build(context.Background(), "user-1", "서울시청", "강남역", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := svc.Build(context.Background(), "user-1", "서울시청", "강남역", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated builds differ:\n%+v\n%+v", first, second)
	}
}

func TestDiversify_ShiftsDegenerateAlternative(t *testing.T) {
	// Score 1.0 through hour 12, rising toward 3.0 across hour 13: a +10min
	// shift lands on a noticeably slower departure.
	table := flatTable(1.0)
	table.HourlyPatterns["friday"]["13"] = 3.0
	table.HourlyPatterns["friday"]["14"] = 3.0
	svc := newTestService(t, table)

	farDest := types.Point{Lat: 37.7700, Lng: 127.0000} // ~30km
	window := departure.Window{Start: testNow, End: testNow.Add(2 * time.Hour)}
	primary := candidate{at: testNow, window: window}
	alt := candidate{at: testNow, window: window}
	primary.duration = svc.solver.EstimateDuration(primary.at, &originPt, &farDest, "default")
	alt.duration = svc.solver.EstimateDuration(alt.at, &originPt, &farDest, "default")

	shifted := svc.diversify(primary, alt, &originPt, &farDest, "default")

	offset := shifted.at.Sub(testNow)
	if offset != 10*time.Minute && offset != 20*time.Minute &&
		offset != -10*time.Minute && offset != -20*time.Minute {
		t.Fatalf("alternative shifted by %s, want exactly ±10 or ±20 minutes", offset)
	}
	gap := shifted.duration - primary.duration
	if gap < 0 {
		gap = -gap
	}
	if gap < 2*time.Minute {
		t.Errorf("duration gap %s, want >= 2 minutes", gap)
	}
}

func TestDepartInText(t *testing.T) {
	now := testNow
	tests := []struct {
		at   time.Time
		want string
	}{
		{now, "지금 출발 (12:00)"},
		{now.Add(2 * time.Minute), "지금 출발 (12:02)"},
		{now.Add(3 * time.Minute), "3분 뒤 출발 (12:03)"},
		{now.Add(45 * time.Minute), "45분 뒤 출발 (12:45)"},
	}
	for _, tt := range tests {
		if got := departInText(now, tt.at); got != tt.want {
			t.Errorf("departInText(%s) = %q, want %q", tt.at.Format("15:04"), got, tt.want)
		}
	}
}

func TestOptimalWindow_Defaults(t *testing.T) {
	svc := newTestService(t, flatTable(2.0))

	sel := svc.OptimalWindow(nil, 0, "default")
	if sel == nil {
		t.Fatal("expected a selection")
	}
	if sel.MinutesAnalyzed != 120 {
		t.Errorf("default window analyzed %d minutes, want 120", sel.MinutesAnalyzed)
	}
	if !strings.HasPrefix(sel.Primary.At.Format("15:04"), "12:") {
		t.Errorf("primary %s outside the default window", sel.Primary.At.Format("15:04"))
	}
}
