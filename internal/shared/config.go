package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	RedisAddr string
	RedisDB   int
	RedisPass string

	// Hotel PMS credentials. Region is part of the cache key.
	PMSBase     string
	PMSUsername string
	PMSPassword string
	PMSKey      string
	PMSRegion   string

	// Restaurant system credentials.
	RestoBase  string
	RestoToken string

	UpstreamRPS     int
	UpstreamTimeout time.Duration

	// Cache/lock protocol constants.
	FreshTTL         time.Duration
	StaleTTLNear     time.Duration // subject date within 30 days
	StaleTTLMid      time.Duration // 31-180 days
	StaleTTLFar      time.Duration // beyond, or unparseable date
	StaleTTLDefault  time.Duration // actions with no subject date
	LockTTL          time.Duration
	LockPollInterval time.Duration
	LockPollCeiling  time.Duration

	// Matching / reconciliation knobs.
	BookingIDField     string
	HotelGuestField    string
	PackageField       string
	GroupField         string
	PackageKeyword     string
	DefaultPhonePrefix string
	MatchConcurrency   int

	// Timeline layout knobs.
	SittingDuration time.Duration
	LayoutBuffer    time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}
	millis := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Millisecond
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		PMSBase:     env("PMS_BASE_URL", "https://api-%s.newbook.cloud/rest"),
		PMSUsername: env("PMS_USERNAME", ""),
		PMSPassword: env("PMS_PASSWORD", ""),
		PMSKey:      env("PMS_API_KEY", ""),
		PMSRegion:   env("PMS_REGION", "au"),

		RestoBase:  env("RESTO_BASE_URL", "https://api.resdiary.com"),
		RestoToken: env("RESTO_API_TOKEN", ""),

		UpstreamRPS:     atoi("UPSTREAM_RPS", 5),
		UpstreamTimeout: secs("UPSTREAM_TIMEOUT_SECONDS", 20),

		FreshTTL:         secs("CACHE_FRESH_TTL_SECONDS", 60),
		StaleTTLNear:     secs("CACHE_STALE_TTL_NEAR_SECONDS", 300),
		StaleTTLMid:      secs("CACHE_STALE_TTL_MID_SECONDS", 600),
		StaleTTLFar:      secs("CACHE_STALE_TTL_FAR_SECONDS", 900),
		StaleTTLDefault:  secs("CACHE_STALE_TTL_DEFAULT_SECONDS", 600),
		LockTTL:          secs("FETCH_LOCK_TTL_SECONDS", 15),
		LockPollInterval: millis("FETCH_LOCK_POLL_MS", 200),
		LockPollCeiling:  secs("FETCH_LOCK_POLL_CEILING_SECONDS", 10),

		BookingIDField:     env("FIELD_BOOKING_ID", "Booking #"),
		HotelGuestField:    env("FIELD_HOTEL_GUEST", "Hotel Guest"),
		PackageField:       env("FIELD_PACKAGE", "DBB"),
		GroupField:         env("FIELD_GROUP", "Group / Exclusions"),
		PackageKeyword:     env("PACKAGE_KEYWORD", "DBB"),
		DefaultPhonePrefix: env("DEFAULT_PHONE_PREFIX", "+44"),
		MatchConcurrency:   atoi("MATCH_CONCURRENCY", 4),

		SittingDuration: time.Duration(atoi("SITTING_MINUTES", 120)) * time.Minute,
		LayoutBuffer:    time.Duration(atoi("LAYOUT_BUFFER_MINUTES", 5)) * time.Minute,
	}
	if c.PMSKey == "" {
		log.Warn().Msg("PMS_API_KEY is empty")
	}
	if c.RestoToken == "" {
		log.Warn().Msg("RESTO_API_TOKEN is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
