package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 string   `mapstructure:"PORT"`
	Env                  string   `mapstructure:"ENV"`
	DatabaseURL          string   `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins          []string `mapstructure:"CORS_ORIGINS"`
	WhatsAppAPIURL       string   `mapstructure:"WHATSAPP_API_URL"`
	WhatsAppToken        string   `mapstructure:"WHATSAPP_TOKEN"`
	WhatsAppPhoneNumber  string   `mapstructure:"WHATSAPP_PHONE_NUMBER_ID"`
	WebhookVerifyToken   string   `mapstructure:"WEBHOOK_VERIFY_TOKEN"`
	UploadDir            string   `mapstructure:"UPLOAD_DIR"`
	RateLimitRPS         float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit            string   `mapstructure:"BODY_LIMIT"`
	UploadBodyLimit      string   `mapstructure:"UPLOAD_BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("WHATSAPP_API_URL", "https://graph.facebook.com/v20.0")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("UPLOAD_BODY_LIMIT", "32M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("WHATSAPP_API_URL")
	v.BindEnv("WHATSAPP_TOKEN")
	v.BindEnv("WHATSAPP_PHONE_NUMBER_ID")
	v.BindEnv("WEBHOOK_VERIFY_TOKEN")
	v.BindEnv("UPLOAD_DIR")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("UPLOAD_BODY_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.WhatsAppToken == "" {
		log.Println("WARNING: WHATSAPP_TOKEN is not set; outbound notifications will fail.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// WhatsApp credentials and the webhook verification secret must be present,
// since every write endpoint sends a notification and Meta calls the webhook
// with the verification token during subscription.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if c.WhatsAppToken == "" {
			return fmt.Errorf("WHATSAPP_TOKEN is required in production")
		}
		if c.WhatsAppPhoneNumber == "" {
			return fmt.Errorf("WHATSAPP_PHONE_NUMBER_ID is required in production")
		}
		if c.WebhookVerifyToken == "" {
			return fmt.Errorf("WEBHOOK_VERIFY_TOKEN is required in production")
		}
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	return nil
}
