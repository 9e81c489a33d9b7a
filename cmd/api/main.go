package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	server "staysync/internal/adapters/http_server"
	"staysync/internal/adapters/observability"
	"staysync/internal/adapters/pms"
	redisad "staysync/internal/adapters/redis"
	"staysync/internal/adapters/resto"
	"staysync/internal/app"
	"staysync/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	creds := pms.Credentials{
		Username: cfg.PMSUsername,
		Password: cfg.PMSPassword,
		APIKey:   cfg.PMSKey,
		Region:   cfg.PMSRegion,
	}
	hotelClient, err := pms.New(cfg.PMSBase, creds, cfg.UpstreamRPS, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PMS client")
	}
	restoClient, err := resto.New(cfg.RestoBase, cfg.RestoToken, cfg.UpstreamRPS, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize restaurant client")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	fetcher := app.NewFetcher(cfg, cache, cache, log.Logger)
	hotels := app.NewHotelGateway(hotelClient, fetcher, creds.Fingerprint(), log.Logger)
	restos := app.NewRestoGateway(restoClient, fetcher, restoClient.Fingerprint(), cfg.GroupField, cfg.DefaultPhonePrefix, log.Logger)
	svc := app.NewService(cfg, hotels, restos, log.Logger)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
