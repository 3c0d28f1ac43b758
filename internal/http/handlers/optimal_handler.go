// README: Lightweight optimal-time lookup over the raw window scan.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khtml-hack/baekend/internal/modules/departure"
)

// WindowScanner exposes the raw scan. Satisfied by recommend.Service.
type WindowScanner interface {
	OptimalWindow(current *time.Time, windowHours int, locationKey string) *departure.Selection
}

type OptimalHandler struct {
	scanner WindowScanner
	loc     *time.Location
}

func NewOptimalHandler(scanner WindowScanner, loc *time.Location) *OptimalHandler {
	return &OptimalHandler{scanner: scanner, loc: loc}
}

const maxWindowHours = 6

type optimalSlot struct {
	Time  string  `json:"time"`
	Score float64 `json:"score"`
}

type optimalResp struct {
	RecommendedTime string        `json:"recommendedTime"`
	CongestionScore float64       `json:"congestionScore"`
	Alternatives    []optimalSlot `json:"alternatives"`
	WindowStart     string        `json:"windowStart"`
	WindowEnd       string        `json:"windowEnd"`
	MinutesAnalyzed int           `json:"minutesAnalyzed"`
}

func (h *OptimalHandler) Get(c *gin.Context) {
	windowHours := 2
	if v := c.Query("window_hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(c, http.StatusBadRequest, "window_hours must be a positive integer")
			return
		}
		windowHours = parsed
		if windowHours > maxWindowHours {
			windowHours = maxWindowHours
		}
	}

	var current *time.Time
	if v := c.Query("current_time"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02 15:04", v, h.loc)
		if err != nil {
			writeError(c, http.StatusBadRequest, "current_time must be YYYY-MM-DD HH:MM")
			return
		}
		current = &parsed
	}

	location := c.DefaultQuery("location", "default")

	sel := h.scanner.OptimalWindow(current, windowHours, location)
	if sel == nil {
		writeError(c, http.StatusUnprocessableEntity, "no window to analyze")
		return
	}

	resp := optimalResp{
		RecommendedTime: sel.Primary.At.Format("15:04"),
		CongestionScore: sel.Primary.Score,
		Alternatives:    []optimalSlot{},
		WindowStart:     sel.Window.Start.Format("15:04"),
		WindowEnd:       sel.Window.End.Format("15:04"),
		MinutesAnalyzed: sel.MinutesAnalyzed,
	}
	for _, alt := range sel.Alternatives {
		resp.Alternatives = append(resp.Alternatives, optimalSlot{
			Time:  alt.At.Format("15:04"),
			Score: alt.Score,
		})
	}
	writeJSON(c, http.StatusOK, resp)
}
