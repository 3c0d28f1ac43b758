// README: Recommendation assembler orchestrating geocoding, scanning, and solving.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khtml-hack/baekend/internal/config"
	"github.com/khtml-hack/baekend/internal/integrations/geocode"
	"github.com/khtml-hack/baekend/internal/integrations/traffic"
	"github.com/khtml-hack/baekend/internal/modules/congestion"
	"github.com/khtml-hack/baekend/internal/modules/departure"
	"github.com/khtml-hack/baekend/internal/modules/zone"
	"github.com/khtml-hack/baekend/internal/types"
)

var ErrNoRecommendation = errors.New("no recommendation available")

// Geocoder resolves addresses; lookups degrade instead of failing.
type Geocoder interface {
	Normalize(ctx context.Context, address string) geocode.Result
}

// TrafficSource supplies the optional informational road summary.
type TrafficSource interface {
	Enabled() bool
	Summarize(ctx context.Context, lat, lng float64) traffic.Summary
}

// Advisor produces optional rationale text; errors are swallowed.
type Advisor interface {
	Rationale(ctx context.Context, origin, destination string, departAt time.Time, congestionLevel int) (string, error)
}

type Service struct {
	store      *Store
	geocoder   Geocoder
	trafficSrc TrafficSource
	advisor    Advisor
	model      *congestion.Model
	scanner    *departure.Scanner
	solver     *departure.Solver
	cfg        config.RecommendConfig
	loc        *time.Location
	now        func() time.Time
	log        zerolog.Logger
}

func NewService(
	store *Store,
	geocoder Geocoder,
	trafficSrc TrafficSource,
	advisor Advisor,
	model *congestion.Model,
	cfg config.RecommendConfig,
	loc *time.Location,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:      store,
		geocoder:   geocoder,
		trafficSrc: trafficSrc,
		advisor:    advisor,
		model:      model,
		scanner:    departure.NewScanner(model),
		solver:     departure.NewSolver(model, cfg),
		cfg:        cfg,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// candidate is an option under assembly, before titles and ordering.
type candidate struct {
	at       time.Time
	window   departure.Window
	duration time.Duration
}

// Build assembles the two-option recommendation for a trip. A nil deadline
// selects rolling mode (leave within the configured window); a deadline
// selects arrive-by mode. The persisted record covers the leading option.
func (s *Service) Build(ctx context.Context, userID types.ID, originAddr, destAddr string, deadline *time.Time) (*Recommendation, error) {
	now := s.now().In(s.loc).Truncate(time.Minute)

	origin := s.geocoder.Normalize(ctx, originAddr)
	dest := s.geocoder.Normalize(ctx, destAddr)

	locationKey := zone.LocationKey(dest.NormalizedAddress)
	if locationKey == "default" {
		locationKey = zone.LocationKey(destAddr)
	}

	deadlineMode := deadline != nil
	deadlineMet := true

	var primary, alt candidate
	if deadlineMode {
		plan := s.solver.LatestDeparture(now, departure.ArrivalQuery{
			Origin:        origin.Coord,
			Dest:          dest.Coord,
			ArriveBy:      *deadline,
			WindowMinutes: s.cfg.WindowMinutes,
			LocationKey:   locationKey,
		})
		deadlineMet = plan.Feasible

		primary = candidate{at: plan.Departure, window: plan.Window}
		altAt := plan.Departure.Add(-10 * time.Minute)
		if len(plan.Alternatives) > 0 {
			altAt = plan.Alternatives[0]
		}
		if altAt.Before(plan.Window.Start) {
			altAt = plan.Window.Start
		}
		alt = candidate{at: altAt, window: plan.Window}
	} else {
		windowEnd := now.Add(time.Duration(s.cfg.WindowMinutes) * time.Minute)
		sel := s.scanner.FindOptimal(now, windowEnd, locationKey)
		if sel == nil {
			return nil, ErrNoRecommendation
		}
		primary = candidate{at: sel.Primary.At, window: sel.Window}

		// The alternative pool starts offset from now so both cards do not
		// collapse onto the same opening minutes.
		altStart := now.Add(time.Duration(s.cfg.AltOffsetMinutes) * time.Minute)
		altSel := s.scanner.FindOptimal(altStart, windowEnd, locationKey)
		switch {
		case altSel != nil && !altSel.Primary.At.Equal(primary.at):
			alt = candidate{at: altSel.Primary.At, window: altSel.Window}
		case len(sel.Alternatives) > 0:
			alt = candidate{at: sel.Alternatives[0].At, window: sel.Window}
		default:
			alt = candidate{at: primary.at, window: sel.Window}
		}
	}

	// Durations are recomputed from the final instants rather than reused
	// from the scan, keeping them consistent with output rounding.
	primary.duration = s.solver.EstimateDuration(primary.at, origin.Coord, dest.Coord, locationKey)
	alt.duration = s.solver.EstimateDuration(alt.at, origin.Coord, dest.Coord, locationKey)

	alt = s.diversify(primary, alt, origin.Coord, dest.Coord, locationKey)

	baseline := s.solver.EstimateDuration(now, origin.Coord, dest.Coord, locationKey)

	best, other := primary, alt
	if timeSavedMin(baseline, alt.duration) > timeSavedMin(baseline, primary.duration) {
		best, other = alt, primary
	}

	bestTitle, otherTitle := titleRollingBest, titleRollingAlt
	if deadlineMode {
		bestTitle, otherTitle = titleArriveBest, titleArriveAlt
	}

	rec := &Recommendation{
		OriginAddress:      origin.NormalizedAddress,
		DestinationAddress: dest.NormalizedAddress,
		DeadlineMode:       deadlineMode,
		DeadlineMet:        deadlineMet,
		Current:            s.currentAnalysis(now, baseline, locationKey),
		Options: []Option{
			s.buildOption(bestTitle, now, baseline, best, locationKey),
			s.buildOption(otherTitle, now, baseline, other, locationKey),
		},
	}
	if z, ok := zone.Infer(dest.NormalizedAddress, dest.Coord); ok {
		rec.DestinationZone = z.Label()
	}

	s.attachTraffic(ctx, rec, dest)
	s.attachRationale(ctx, rec, best.at)

	if s.store != nil {
		record := Record{
			ID:                  types.ID(uuid.NewString()),
			UserID:              userID,
			OriginAddress:       rec.OriginAddress,
			DestinationAddress:  rec.DestinationAddress,
			OptimalDeparture:    best.at,
			ExpectedDurationMin: rec.Options[0].ExpectedDurationMin,
			CongestionLevel:     rec.Options[0].CongestionLevel,
			RewardAmount:        rec.Options[0].RewardAmount,
			CreatedAt:           now,
		}
		if err := s.store.Save(ctx, record); err != nil {
			return nil, err
		}
		rec.ID = record.ID
	}

	return rec, nil
}

// OptimalWindow exposes the raw scanner for the lightweight optimal-time
// endpoint. current defaults to now; windowHours defaults to 2.
func (s *Service) OptimalWindow(current *time.Time, windowHours int, locationKey string) *departure.Selection {
	now := s.now()
	if current != nil {
		now = *current
	}
	now = now.In(s.loc).Truncate(time.Minute)
	if windowHours <= 0 {
		windowHours = 2
	}
	return s.scanner.FindOptimal(now, now.Add(time.Duration(windowHours)*time.Hour), locationKey)
}

// diversify nudges the alternative when both options land on effectively the
// same duration, so the UI never shows two near-identical cards. The first
// ±10/±20 minute shift that stays inside the window and opens the duration
// gap to at least two minutes wins; if none qualifies the pair is genuinely
// degenerate and stays as is.
func (s *Service) diversify(primary, alt candidate, origin, dest *types.Point, locationKey string) candidate {
	if absDuration(primary.duration-alt.duration) > time.Minute {
		return alt
	}
	for _, offset := range []time.Duration{10 * time.Minute, -10 * time.Minute, 20 * time.Minute, -20 * time.Minute} {
		shifted := alt.at.Add(offset)
		if shifted.Before(alt.window.Start) || !shifted.Before(alt.window.End) {
			continue
		}
		if shifted.Equal(primary.at) {
			continue
		}
		duration := s.solver.EstimateDuration(shifted, origin, dest, locationKey)
		if absDuration(primary.duration-duration) >= 2*time.Minute {
			alt.at = shifted
			alt.duration = duration
			return alt
		}
	}
	return alt
}

func (s *Service) buildOption(title string, now time.Time, baseline time.Duration, c candidate, locationKey string) Option {
	score := s.model.Score(c.at, locationKey)
	saved := timeSavedMin(baseline, c.duration)
	return Option{
		Title:                 title,
		DepartInTimeText:      departInText(now, c.at),
		Window:                Window{Start: hhmm(c.window.Start), End: hhmm(c.window.End)},
		OptimalDepartureTime:  hhmm(c.at),
		ExpectedDurationMin:   int(c.duration.Minutes()),
		CongestionLevel:       congestion.Level(score),
		CongestionDescription: congestion.Describe(score),
		TimeSavedMin:          saved,
		RewardAmount:          s.reward(saved),
	}
}

func (s *Service) currentAnalysis(now time.Time, baseline time.Duration, locationKey string) CurrentAnalysis {
	score := s.model.Score(now, locationKey)
	return CurrentAnalysis{
		DepartureTime:         hhmm(now),
		ArrivalTime:           hhmm(now.Add(baseline)),
		DurationMin:           int(baseline.Minutes()),
		CongestionLevel:       congestion.Level(score),
		CongestionDescription: congestion.Describe(score),
		TimeBucket:            congestion.BucketFor(now).Name,
	}
}

func (s *Service) attachTraffic(ctx context.Context, rec *Recommendation, dest geocode.Result) {
	if s.trafficSrc == nil || !s.trafficSrc.Enabled() || dest.Coord == nil {
		return
	}
	summary := s.trafficSrc.Summarize(ctx, dest.Coord.Lat, dest.Coord.Lng)
	rec.Traffic = &summary
}

func (s *Service) attachRationale(ctx context.Context, rec *Recommendation, departAt time.Time) {
	if s.advisor == nil {
		return
	}
	text, err := s.advisor.Rationale(ctx, rec.OriginAddress, rec.DestinationAddress, departAt, rec.Options[0].CongestionLevel)
	if err != nil {
		s.log.Debug().Err(err).Msg("rationale generation failed")
		return
	}
	rec.Rationale = text
}

func (s *Service) reward(timeSavedMin int) int {
	amount := timeSavedMin * s.cfg.RewardFactor
	if amount < 0 {
		return 0
	}
	if amount > s.cfg.RewardCap {
		return s.cfg.RewardCap
	}
	return amount
}

func timeSavedMin(baseline, duration time.Duration) int {
	saved := int((baseline - duration).Minutes())
	if saved < 0 {
		return 0
	}
	return saved
}

// departInText renders the relative departure hint; within two minutes of
// now (or already past, in a tight arrive-by plan) it reads "leave now".
func departInText(now, at time.Time) string {
	minutes := int(at.Sub(now).Minutes())
	if minutes <= 2 {
		return fmt.Sprintf("지금 출발 (%s)", hhmm(at))
	}
	return fmt.Sprintf("%d분 뒤 출발 (%s)", minutes, hhmm(at))
}

func hhmm(t time.Time) string {
	return t.Format("15:04")
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
