// README: Trip lifecycle handlers for start and arrival.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khtml-hack/baekend/internal/modules/trip"
	"github.com/khtml-hack/baekend/internal/types"
)

// TripLifecycle drives a trip from start to arrival. Satisfied by
// trip.Service.
type TripLifecycle interface {
	Start(ctx context.Context, userID, recommendationID types.ID) (trip.Trip, error)
	Arrive(ctx context.Context, tripID types.ID) (trip.ArrivalResult, error)
}

type TripHandler struct {
	trips TripLifecycle
}

func NewTripHandler(trips TripLifecycle) *TripHandler {
	return &TripHandler{trips: trips}
}

func (h *TripHandler) Start(c *gin.Context) {
	recommendationID := c.Param("id")
	if recommendationID == "" {
		writeError(c, http.StatusBadRequest, "missing recommendation id")
		return
	}
	t, err := h.trips.Start(c.Request.Context(), userID(c), types.ID(recommendationID))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, t)
}

func (h *TripHandler) Arrive(c *gin.Context) {
	tripID := c.Param("id")
	if tripID == "" {
		writeError(c, http.StatusBadRequest, "missing trip id")
		return
	}
	res, err := h.trips.Arrive(c.Request.Context(), types.ID(tripID))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
