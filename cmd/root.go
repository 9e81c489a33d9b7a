package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"staysync/internal/adapters/observability"
	"staysync/internal/adapters/pms"
	redisad "staysync/internal/adapters/redis"
	"staysync/internal/adapters/resto"
	"staysync/internal/app"
	"staysync/internal/shared"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "staysyncctl",
		Short: "Reconcile hotel stays against restaurant reservations from the command line",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newMatchCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newTimelineCmd())
	root.AddCommand(newExcludeCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService wires the same dependency graph the API server uses.
func newService() (*app.Service, error) {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	creds := pms.Credentials{
		Username: cfg.PMSUsername,
		Password: cfg.PMSPassword,
		APIKey:   cfg.PMSKey,
		Region:   cfg.PMSRegion,
	}
	hotelClient, err := pms.New(cfg.PMSBase, creds, cfg.UpstreamRPS, cfg.UpstreamTimeout)
	if err != nil {
		return nil, err
	}
	restoClient, err := resto.New(cfg.RestoBase, cfg.RestoToken, cfg.UpstreamRPS, cfg.UpstreamTimeout)
	if err != nil {
		return nil, err
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	fetcher := app.NewFetcher(cfg, cache, cache, log.Logger)
	hotels := app.NewHotelGateway(hotelClient, fetcher, creds.Fingerprint(), log.Logger)
	restos := app.NewRestoGateway(restoClient, fetcher, restoClient.Fingerprint(), cfg.GroupField, cfg.DefaultPhonePrefix, log.Logger)
	return app.NewService(cfg, hotels, restos, log.Logger), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("staysyncctl %s (commit %s, built %s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
