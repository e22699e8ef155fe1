package config

import (
	"flag"
	"os"
	"sync"
)

const (
	defaultServerAddr     = ":8080"
	defaultDatabaseDSN    = ""
	defaultUploadsRoot    = "static/uploads"
	defaultIDStrategy     = "sequence"
	defaultLogLevel       = "debug"
	defaultOrderAmount    = "10.00"
	defaultPayPalClientID = ""
	defaultAdminLogin     = ""
)

// Config holds the service configuration. IDStrategy selects the identifier
// allocation scheme: "sequence" for serial integers, "token" for random UUIDs.
// An empty DatabaseDSN selects the in-memory order store. An empty AdminLogin
// disables the operator auth gate.
type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	UploadsRoot    string
	IDStrategy     string
	LogLevel       string
	OrderAmount    string
	PayPalClientID string
	AdminLogin     string
	AdminPassword  string
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
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddr, "logo order server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "logo order database DSN (empty for in-memory store)")
		flag.StringVar(&cfg.UploadsRoot, "u", defaultUploadsRoot, "attachment uploads root directory")
		flag.StringVar(&cfg.IDStrategy, "i", defaultIDStrategy, "order identifier strategy: sequence or token")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.StringVar(&cfg.OrderAmount, "m", defaultOrderAmount, "order amount shown on the payment view")
		flag.StringVar(&cfg.PayPalClientID, "p", defaultPayPalClientID, "paypal client id for the payment widget")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if databaseURIEnv := os.Getenv("DATABASE_URI"); databaseURIEnv != "" {
			cfg.DatabaseDSN = databaseURIEnv
		}
		if uploadsRootEnv := os.Getenv("UPLOADS_ROOT"); uploadsRootEnv != "" {
			cfg.UploadsRoot = uploadsRootEnv
		}
		if idStrategyEnv := os.Getenv("ID_STRATEGY"); idStrategyEnv != "" {
			cfg.IDStrategy = idStrategyEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if orderAmountEnv := os.Getenv("ORDER_AMOUNT"); orderAmountEnv != "" {
			cfg.OrderAmount = orderAmountEnv
		}
		if paypalClientIDEnv := os.Getenv("PAYPAL_CLIENT_ID"); paypalClientIDEnv != "" {
			cfg.PayPalClientID = paypalClientIDEnv
		}
		if adminLoginEnv := os.Getenv("ADMIN_LOGIN"); adminLoginEnv != "" {
			cfg.AdminLogin = adminLoginEnv
		}
		if adminPasswordEnv := os.Getenv("ADMIN_PASSWORD"); adminPasswordEnv != "" {
			cfg.AdminPassword = adminPasswordEnv
		}

		singleton = &cfg
	})

	return singleton, nil
}
