// README: Recommendation handler for the two-option departure response.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khtml-hack/baekend/internal/modules/recommend"
	"github.com/khtml-hack/baekend/internal/types"
)

// RecommendationBuilder assembles recommendations. Satisfied by
// recommend.Service.
type RecommendationBuilder interface {
	Build(ctx context.Context, userID types.ID, originAddr, destAddr string, deadline *time.Time) (*recommend.Recommendation, error)
}

type RecommendHandler struct {
	recommend RecommendationBuilder
	loc       *time.Location
	now       func() time.Time
}

func NewRecommendHandler(svc RecommendationBuilder, loc *time.Location) *RecommendHandler {
	return &RecommendHandler{recommend: svc, loc: loc, now: time.Now}
}

type recommendReq struct {
	OriginAddress      string `json:"origin_address"`
	DestinationAddress string `json:"destination_address"`
	ArrivalTime        string `json:"arrival_time"`
}

func (h *RecommendHandler) Create(c *gin.Context) {
	var req recommendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.OriginAddress == "" || req.DestinationAddress == "" {
		writeError(c, http.StatusBadRequest, "origin_address and destination_address are required")
		return
	}

	var deadline *time.Time
	if req.ArrivalTime != "" {
		parsed, err := time.Parse("15:04", req.ArrivalTime)
		if err != nil {
			writeError(c, http.StatusBadRequest, "arrival_time must be HH:MM")
			return
		}
		// Anchor the clock time to today; the solver rolls past times to
		// tomorrow on its own.
		now := h.now().In(h.loc)
		at := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, h.loc)
		deadline = &at
	}

	rec, err := h.recommend.Build(c.Request.Context(), userID(c), req.OriginAddress, req.DestinationAddress, deadline)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

// userID resolves the caller from the X-User-ID header; unauthenticated
// requests share a single anonymous bucket.
func userID(c *gin.Context) types.ID {
	if v := c.GetHeader("X-User-ID"); v != "" {
		return types.ID(v)
	}
	return "anonymous"
}
