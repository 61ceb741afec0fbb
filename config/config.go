package config

import (
	"flag"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddress     = ":8080"
	defaultDatabaseDSN       = ""
	defaultLogLevel          = "debug"
	defaultReconcileInterval = 10 * time.Minute
)

type Config struct {
	ServerAddr        string
	DatabaseDSN       string
	AuthTokenKey      string
	LogLevel          string
	ReconcileInterval time.Duration
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "ledger server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "ledger database DSN")
		flag.StringVar(&cfg.AuthTokenKey, "k", "", "auth token signing key (hex)")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.DurationVar(&cfg.ReconcileInterval, "i", defaultReconcileInterval, "balance reconcile interval")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if databaseURIEnv := os.Getenv("DATABASE_URI"); databaseURIEnv != "" {
			cfg.DatabaseDSN = databaseURIEnv
		}
		if tokenKeyEnv := os.Getenv("AUTH_TOKEN_KEY"); tokenKeyEnv != "" {
			cfg.AuthTokenKey = tokenKeyEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if intervalEnv := os.Getenv("RECONCILE_INTERVAL"); intervalEnv != "" {
			if d, err := time.ParseDuration(intervalEnv); err == nil {
				cfg.ReconcileInterval = d
			}
		}

		singleton = &cfg
	})

	return singleton, nil
}
