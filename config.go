package main

import (
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Pipeline profiles. "full" is the signed-token deployment with every
// validation stage on; "basic" is the opaque-token deployment that only
// normalizes ids and gates writes.
const (
	profileFull  = "full"
	profileBasic = "basic"
)

// Token policies.
const (
	policyJWT    = "jwt"
	policyOpaque = "opaque"
)

// Conflict lookup failure policies.
const (
	conflictFailOpen   = "fail-open"
	conflictFailClosed = "fail-closed"
)

// Config carries everything main needs to assemble the server. One pipeline,
// parameterized; the two historical deployment variants are profiles of it.
type Config struct {
	Port        string
	MetricsPort string

	StoreBackend  string
	MongoUsername string
	MongoPassword string
	MongoEndpoint string
	MongoDatabase string

	Profile            string
	AuthPolicy         string
	JWTSecret          string
	TokenTTL           time.Duration
	ValidateSchema     bool
	CheckConflicts     bool
	ConflictFailClosed bool

	SentryDSN string
}

func loadConfig() Config {
	cfg := Config{
		Port:          env("PORT", "8080"),
		MetricsPort:   env("METRICS_PORT", "8081"),
		StoreBackend:  env("STORE", "mongo"),
		MongoUsername: os.Getenv("MONGODB_USERNAME"),
		MongoPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoEndpoint: env("MONGODB_ENDPOINT", "localhost:27017"),
		MongoDatabase: env("MONGODB_DATABASE", "posts"),
		Profile:       env("PIPELINE_PROFILE", profileFull),
		JWTSecret:     env("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:      envDuration("TOKEN_TTL", 30*time.Minute),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
	}

	switch cfg.Profile {
	case profileBasic:
		cfg.AuthPolicy = policyOpaque
		cfg.ValidateSchema = false
		cfg.CheckConflicts = false
	default:
		cfg.Profile = profileFull
		cfg.AuthPolicy = policyJWT
		cfg.ValidateSchema = true
		cfg.CheckConflicts = true
	}

	// Individual knobs override whatever the profile picked.
	cfg.AuthPolicy = env("AUTH_POLICY", cfg.AuthPolicy)
	cfg.ValidateSchema = envBool("VALIDATE_SCHEMA", cfg.ValidateSchema)
	cfg.CheckConflicts = envBool("CHECK_CONFLICTS", cfg.CheckConflicts)
	cfg.ConflictFailClosed = env("CONFLICT_POLICY", conflictFailOpen) == conflictFailClosed

	return cfg
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warnf("ignoring %s=%q: not a positive duration", key, v)
		return fallback
	}
	return d
}
