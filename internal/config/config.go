// Package config loads runtime settings through viper.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds every tunable of the API server.
type Config struct {
	Env     string
	AppPort string

	StorageDriver string // postgres, sqlite or memory
	DatabaseDSN   string
	SeedProducts  bool

	JWTSecret string
	JWTExpire time.Duration

	RabbitMQURL string

	SMSProvider   string // log or msg91
	MSG91AuthKey  string
	MSG91SenderID string

	OTP   OTPConfig
	Order OrderConfig
}

// OTPConfig controls one-time code issuance.
type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
	BcryptCost  int
}

// OrderConfig controls order pricing and delivery estimates.
type OrderConfig struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
	EstimatedDelivery     time.Duration
}

// IsProduction reports whether internal error details must be hidden.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// IsDevelopment reports whether test helpers such as the echoed OTP are enabled.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "flavorfix.db")
	v.SetDefault("SEED_PRODUCTS", true)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRE", "30d")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SMS_PROVIDER", "log")
	v.SetDefault("MSG91_AUTH_KEY", "")
	v.SetDefault("MSG91_SENDER_ID", "")
	v.SetDefault("OTP_TTL", 5*time.Minute)
	v.SetDefault("OTP_MAX_ATTEMPTS", 3)
	v.SetDefault("OTP_BCRYPT_COST", 10)
	v.SetDefault("FREE_DELIVERY_THRESHOLD", 500.0)
	v.SetDefault("DELIVERY_FEE", 40.0)
	v.SetDefault("DELIVERY_ETA", 45*time.Minute)
}

// Load reads configuration from the environment and, when present, a .env file
// in the working directory. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// A missing .env is the normal case outside local development.
		if !isNotExist(err) {
			return Config{}, err
		}
	}
	v.AutomaticEnv()
	return FromViper(v), nil
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		Env:           v.GetString("APP_ENV"),
		AppPort:       v.GetString("APP_PORT"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		SeedProducts:  v.GetBool("SEED_PRODUCTS"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTExpire:     ParseExpire(v.GetString("JWT_EXPIRE"), 30*24*time.Hour),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		SMSProvider:   strings.ToLower(v.GetString("SMS_PROVIDER")),
		MSG91AuthKey:  v.GetString("MSG91_AUTH_KEY"),
		MSG91SenderID: v.GetString("MSG91_SENDER_ID"),
		OTP: OTPConfig{
			TTL:         v.GetDuration("OTP_TTL"),
			MaxAttempts: v.GetInt("OTP_MAX_ATTEMPTS"),
			BcryptCost:  v.GetInt("OTP_BCRYPT_COST"),
		},
		Order: OrderConfig{
			FreeDeliveryThreshold: v.GetFloat64("FREE_DELIVERY_THRESHOLD"),
			DeliveryFee:           v.GetFloat64("DELIVERY_FEE"),
			EstimatedDelivery:     v.GetDuration("DELIVERY_ETA"),
		},
	}
}

// ParseExpire accepts Go durations ("720h") and whole days ("30d").
func ParseExpire(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if strings.HasSuffix(s, "d") {
		if d, err := time.ParseDuration(strings.TrimSuffix(s, "d") + "h"); err == nil && d > 0 {
			return d * 24
		}
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
