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

	JWTSecret string
	JWTExpiry time.Duration

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	SessionTimeoutMinutes int
	CodeLength            int
	MaxAttempts           int
	CodeTTL               time.Duration
}

func LoadConfig() (*Config, error) {
	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "12h"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	codeTTL, err := time.ParseDuration(getEnv("VERIFICATION_CODE_TTL", "5m"))
	if err != nil {
		return nil, errors.New("invalid VERIFICATION_CODE_TTL format")
	}

	timeoutMinutes, err := getEnvInt("SESSION_TIMEOUT_MINUTES", 720)
	if err != nil {
		return nil, err
	}
	codeLength, err := getEnvInt("VERIFICATION_CODE_LENGTH", 6)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("VERIFICATION_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTExpiry:             expiry,
		TwilioAccountSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:       os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:     os.Getenv("TWILIO_PHONE_NUMBER"),
		SessionTimeoutMinutes: timeoutMinutes,
		CodeLength:            codeLength,
		MaxAttempts:           maxAttempts,
		CodeTTL:               codeTTL,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioPhoneNumber == "" {
		return nil, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are required")
	}
	if cfg.SessionTimeoutMinutes <= 0 {
		return nil, errors.New("SESSION_TIMEOUT_MINUTES must be positive")
	}
	if cfg.CodeLength < 4 {
		return nil, errors.New("VERIFICATION_CODE_LENGTH must be at least 4")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, errors.New("VERIFICATION_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

// SessionTimeout is SessionTimeoutMinutes as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
