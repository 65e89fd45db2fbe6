package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderModeBooking = "booking"
	ProviderModeLead    = "lead"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	WeTravel  WeTravelConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	// AllowPartial lets the server start without provider credentials; the
	// affected endpoints then answer with a configuration error.
	AllowPartial bool
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type WeTravelConfig struct {
	APIKey              string
	TripID              string
	WebhookSecret       string
	BaseURL             string
	Mode                string
	CheckoutURLTemplate string
	Timeout             time.Duration
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are believed.
	TrustedProxies []string
}

// HasCredentials reports whether the provider API can be called.
func (c WeTravelConfig) HasCredentials() bool {
	return c.APIKey != "" && c.TripID != ""
}

// Validate returns an error naming every missing or malformed setting
// the booking and webhook endpoints depend on.
func (c *Config) Validate() error {
	var missing []string
	if c.WeTravel.APIKey == "" {
		missing = append(missing, "WETRAVEL_API_KEY")
	}
	if c.WeTravel.TripID == "" {
		missing = append(missing, "WETRAVEL_TRIP_ID")
	}
	if c.WeTravel.WebhookSecret == "" {
		missing = append(missing, "WETRAVEL_WEBHOOK_SECRET")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	for _, proxy := range c.RateLimit.TrustedProxies {
		if _, err := ParsePrefix(proxy); err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_TRUSTED_PROXIES entry %q: %w", proxy, err)
		}
	}

	switch c.WeTravel.Mode {
	case ProviderModeBooking, ProviderModeLead:
	default:
		return fmt.Errorf("invalid WETRAVEL_MODE %q: must be %q or %q", c.WeTravel.Mode, ProviderModeBooking, ProviderModeLead)
	}

	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "retreat-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_ALLOW_PARTIAL_CONFIG", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("IDEMPOTENCY_TTL", "10m")
	viper.SetDefault("WETRAVEL_API_URL", "https://api.wetravel.com/v1")
	viper.SetDefault("WETRAVEL_MODE", ProviderModeBooking)
	viper.SetDefault("WETRAVEL_CHECKOUT_URL_TEMPLATE", "https://www.wetravel.com/checkout_embed?uuid={trip_id}&lead_id={lead_id}")
	viper.SetDefault("WETRAVEL_TIMEOUT", "15s")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_TRUSTED_PROXIES", "")

	// .env is optional, the environment always wins
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:         viper.GetString("APP_NAME"),
			Port:         viper.GetString("PORT"),
			Debug:        viper.GetBool("DEBUG"),
			LogPath:      viper.GetString("LOG_PATH"),
			AllowPartial: viper.GetBool("APP_ALLOW_PARTIAL_CONFIG"),
			CORSOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:           viper.GetString("REDIS_ADDR"),
			Password:       viper.GetString("REDIS_PASSWORD"),
			DB:             viper.GetInt("REDIS_DB"),
			IdempotencyTTL: viper.GetDuration("IDEMPOTENCY_TTL"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("AUTH_JWT_SECRET"),
			Issuer:    viper.GetString("AUTH_ISSUER"),
		},
		WeTravel: WeTravelConfig{
			APIKey:              viper.GetString("WETRAVEL_API_KEY"),
			TripID:              viper.GetString("WETRAVEL_TRIP_ID"),
			WebhookSecret:       viper.GetString("WETRAVEL_WEBHOOK_SECRET"),
			BaseURL:             strings.TrimRight(viper.GetString("WETRAVEL_API_URL"), "/"),
			Mode:                strings.ToLower(viper.GetString("WETRAVEL_MODE")),
			CheckoutURLTemplate: viper.GetString("WETRAVEL_CHECKOUT_URL_TEMPLATE"),
			Timeout:             viper.GetDuration("WETRAVEL_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			PerMinute:      viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			Burst:          viper.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies: splitList(viper.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
	}

	return config, nil
}

// ParsePrefix accepts a CIDR or a single IP address.
func ParsePrefix(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		return netip.ParsePrefix(s)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
