// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khtml-hack/baekend/internal/config"
	httptransport "github.com/khtml-hack/baekend/internal/http"
	"github.com/khtml-hack/baekend/internal/infra"
	"github.com/khtml-hack/baekend/internal/integrations/advisor"
	"github.com/khtml-hack/baekend/internal/integrations/geocode"
	"github.com/khtml-hack/baekend/internal/integrations/traffic"
	"github.com/khtml-hack/baekend/internal/logging"
	"github.com/khtml-hack/baekend/internal/modules/congestion"
	"github.com/khtml-hack/baekend/internal/modules/recommend"
	"github.com/khtml-hack/baekend/internal/modules/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.Setup("")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logging.Setup(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("load timezone")
	}

	table, err := congestion.LoadTable(cfg.Congestion.TablePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Congestion.TablePath).Msg("congestion table unusable, running on defaults")
	}
	model := congestion.NewModel(table)

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	geocoder, err := geocode.NewService(cfg.Maps.APIKey, redisClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init geocoder")
	}

	trafficClient := traffic.NewClient(cfg.Tmap.AppKey, log)

	var rationaleAdvisor recommend.Advisor
	if cfg.AI.GeminiKey != "" {
		a, err := advisor.New(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Warn().Err(err).Msg("advisor unavailable, recommendations carry no rationale")
		} else {
			defer a.Close()
			rationaleAdvisor = a
		}
	}

	recommendStore := recommend.NewStore(dbPool)
	recommendSvc := recommend.NewService(recommendStore, geocoder, trafficClient, rationaleAdvisor,
		model, cfg.Recommend, loc, log)

	tripStore := trip.NewStore(dbPool)
	tripSvc := trip.NewService(tripStore, recommendStore, loc, log)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Recommend: recommendSvc,
		Trips:     tripSvc,
		Location:  loc,
		Log:       log,
		Env:       cfg.Env,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}
