// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/khtml-hack/baekend/internal/http/handlers"
	"github.com/khtml-hack/baekend/internal/http/middleware"
	"github.com/khtml-hack/baekend/internal/modules/recommend"
	"github.com/khtml-hack/baekend/internal/modules/trip"
)

type RouterDeps struct {
	Recommend *recommend.Service
	Trips     *trip.Service
	Location  *time.Location
	Log       zerolog.Logger
	Env       string
}

func NewRouter(deps RouterDeps) http.Handler {
	if deps.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.Recovery(deps.Log))

	recommendHandler := handlers.NewRecommendHandler(deps.Recommend, deps.Location)
	optimalHandler := handlers.NewOptimalHandler(deps.Recommend, deps.Location)
	tripHandler := handlers.NewTripHandler(deps.Trips)

	api := r.Group("/api/trips")
	api.POST("/recommendations", recommendHandler.Create)
	api.GET("/optimal-time", optimalHandler.Get)
	api.POST("/:id/start", tripHandler.Start)
	api.POST("/:id/arrive", tripHandler.Arrive)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
