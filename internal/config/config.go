package config

import (
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	config *Config
	once   sync.Once
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	PostgresDSN       string        `mapstructure:"POSTGRES_DSN"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBLogMode         bool          `mapstructure:"DB_LOG_MODE"`

	// JWTSecret signs every session token; rotating it invalidates all
	// outstanding sessions.
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenLifetime time.Duration `mapstructure:"TOKEN_LIFETIME"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminName     string `mapstructure:"ADMIN_NAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	AdminPhone    string `mapstructure:"ADMIN_PHONE"`
}

func GetConfig() *Config {
	once.Do(func() {
		viper.SetDefault("PORT", "4000")
		viper.SetDefault("ENVIRONMENT", "development")
		viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
		viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
		viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
		viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
		viper.SetDefault("DB_LOG_MODE", true)
		viper.SetDefault("TOKEN_LIFETIME", "24h")
		viper.SetDefault("SWEEP_INTERVAL", "1h")

		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				log.Fatalf("Fatal error config file: %s \n", err)
			} else {
				log.Println("[WARNING]: .env config file not found, relying on defaults and system ENV variables.")
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			log.Fatalf("Error unmarshalling config, %s", err)
		}

		config.DBConnMaxLifetime = parseDuration("DB_CONN_MAX_LIFETIME", time.Hour)
		config.TokenLifetime = parseDuration("TOKEN_LIFETIME", 24*time.Hour)
		config.SweepInterval = parseDuration("SWEEP_INTERVAL", time.Hour)
	})

	return config
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s format '%s', using default %s. Error: %v\n", key, raw, fallback, err)
		return fallback
	}
	return parsed
}
