package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	StaticDir      string        `mapstructure:"STATIC_DIR"`
	LogFile        string        `mapstructure:"LOG_FILE"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	Env            string        `mapstructure:"ENV"`
	CommissionRate float64       `mapstructure:"COMMISSION_RATE"`
	PaymentDelay   time.Duration `mapstructure:"PAYMENT_DELAY"`
	SecureCookies  bool          `mapstructure:"SECURE_COOKIES"`
	RateLimit      int           `mapstructure:"RATE_LIMIT"` // requests per minute per IP; 0 disables
}

// Defaults returns the configuration used when nothing is set in the
// environment. Tests build on it with an in-memory database.
func Defaults() Config {
	return Config{
		Port:           "8080",
		DBDSN:          "servicehub.db", // sqlite file in project root
		LogLevel:       "info",
		Env:            "development",
		CommissionRate: 0.10,
		PaymentDelay:   2 * time.Second,
		RateLimit:      60,
	}
}

func (c Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// Load reads .env (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("PORT", d.Port)
	v.SetDefault("DB_DSN", d.DBDSN)
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_LEVEL", d.LogLevel)
	v.SetDefault("ENV", d.Env)
	v.SetDefault("COMMISSION_RATE", d.CommissionRate)
	v.SetDefault("PAYMENT_DELAY", d.PaymentDelay)
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("RATE_LIMIT", d.RateLimit)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.CommissionRate < 0 || cfg.CommissionRate >= 1 {
		cfg.CommissionRate = d.CommissionRate
	}
	return cfg, nil
}
