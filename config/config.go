package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for both the ATM client and the dev
// ledger, loaded from environment variables with sane local defaults.
type Config struct {
	AppName string
	Env     string // development, staging, production
	GinMode string

	// ATM client
	GatewayBaseURL string
	GatewayTimeout time.Duration

	// Ledger server
	Port      string
	JWTSecret string
	TokenTTL  time.Duration
	CodeTTL   time.Duration
	SeedDemo  bool

	// Redis (optional; the ledger falls back to an in-process code store
	// when no address is configured)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Mailgun (optional; verification codes are logged when unset)
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string
	MailSendEnabled bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "cajero"),
		Env:     getenv("APP_ENV", "development"),
		GinMode: getenv("GIN_MODE", "release"),

		GatewayBaseURL: getenv("GATEWAY_BASE_URL", "http://localhost:8080"),
		GatewayTimeout: getdur("GATEWAY_TIMEOUT", 15*time.Second),

		Port:      getenv("PORT", "8080"),
		JWTSecret: getenv("JWT_SECRET", "devledgersecret"),
		TokenTTL:  getdur("TOKEN_TTL", time.Hour),
		CodeTTL:   getdur("VERIFICATION_CODE_TTL", 10*time.Minute),
		SeedDemo:  getbool("SEED_DEMO_ACCOUNT", true),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
