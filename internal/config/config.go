package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	RedisURL    string

	SessionSecret string
	SessionExpiry time.Duration

	NeynarAPIKey   string
	NeynarBaseURL  string
	NeynarClientID string

	CronSecret string

	SeedPhrase    string
	DeveloperFid  int64
	SponsorSigner bool

	SignerDeadline time.Duration

	DispatchInterval  time.Duration
	DispatchBatchSize int
	DispatchWorkers   int

	EthRPCEndpoint string
}

func LoadConfig() (*Config, error) {
	expiryStr := getEnv("SESSION_EXPIRY", "24h")
	expiry, err := time.ParseDuration(expiryStr)
	if err != nil {
		return nil, errors.New("invalid SESSION_EXPIRY format")
	}

	signerDeadlineStr := getEnv("SIGNER_DEADLINE", "24h")
	signerDeadline, err := time.ParseDuration(signerDeadlineStr)
	if err != nil {
		return nil, errors.New("invalid SIGNER_DEADLINE format")
	}

	// 0 disables the in-process dispatch ticker; an external scheduler
	// hitting /api/cron/send-casts is the default deployment.
	dispatchIntervalStr := getEnv("DISPATCH_INTERVAL", "0")
	dispatchInterval, err := time.ParseDuration(dispatchIntervalStr)
	if err != nil {
		return nil, errors.New("invalid DISPATCH_INTERVAL format")
	}

	batchSize, err := strconv.Atoi(getEnv("DISPATCH_BATCH_SIZE", "50"))
	if err != nil || batchSize <= 0 {
		return nil, errors.New("invalid DISPATCH_BATCH_SIZE")
	}

	workers, err := strconv.Atoi(getEnv("DISPATCH_WORKERS", "1"))
	if err != nil || workers <= 0 {
		return nil, errors.New("invalid DISPATCH_WORKERS")
	}

	var developerFid int64
	if fidStr := os.Getenv("FARCASTER_DEVELOPER_FID"); fidStr != "" {
		developerFid, err = strconv.ParseInt(fidStr, 10, 64)
		if err != nil {
			return nil, errors.New("invalid FARCASTER_DEVELOPER_FID format")
		}
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionExpiry:     expiry,
		NeynarAPIKey:      os.Getenv("NEYNAR_API_KEY"),
		NeynarBaseURL:     getEnv("NEYNAR_BASE_URL", "https://api.neynar.com"),
		NeynarClientID:    os.Getenv("NEYNAR_CLIENT_ID"),
		CronSecret:        os.Getenv("CRON_SECRET"),
		SeedPhrase:        os.Getenv("SEED_PHRASE"),
		DeveloperFid:      developerFid,
		SponsorSigner:     getEnv("SPONSOR_SIGNER", "false") == "true",
		SignerDeadline:    signerDeadline,
		DispatchInterval:  dispatchInterval,
		DispatchBatchSize: batchSize,
		DispatchWorkers:   workers,
		EthRPCEndpoint:    getEnv("ETH_RPC_ENDPOINT", "https://mainnet.base.org"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	if cfg.NeynarAPIKey == "" {
		return nil, errors.New("NEYNAR_API_KEY is required")
	}
	if cfg.CronSecret == "" {
		return nil, errors.New("CRON_SECRET is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
