package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// RoomSeed is a catalog entry loaded from config when no room store is wired.
type RoomSeed struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Building string `mapstructure:"building"`
	Floor    int    `mapstructure:"floor"`
	Capacity int    `mapstructure:"capacity"`
	Active   bool   `mapstructure:"active"`
}

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage. StoreDriver is one of memory, mongo or postgres.
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	PostgresDSN  string `mapstructure:"POSTGRES_DSN"`

	// Redis configuration.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisTaskDB   int           `mapstructure:"REDIS_TASK_DB"`
	RoomCacheTTL  time.Duration `mapstructure:"ROOM_CACHE_TTL"`

	// RabbitMQ. An empty URL disables event publishing.
	RabbitURL       string `mapstructure:"RABBIT_URL"`
	BookingExchange string `mapstructure:"BOOKING_EXCHANGE"`

	// Booking rules.
	AutoConfirm        bool          `mapstructure:"AUTO_CONFIRM"`
	LockTimeout        time.Duration `mapstructure:"LOCK_TIMEOUT"`
	MinNotice          time.Duration `mapstructure:"MIN_NOTICE"`
	MinDuration        time.Duration `mapstructure:"MIN_DURATION"`
	MaxDuration        time.Duration `mapstructure:"MAX_DURATION"`
	ModificationCutoff time.Duration `mapstructure:"MODIFICATION_CUTOFF"`
	SweepInterval      time.Duration `mapstructure:"SWEEP_INTERVAL"`

	Rooms []RoomSeed `mapstructure:"ROOMS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	viper.SetDefault("STORE_DRIVER", "memory")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "roombooking")
	viper.SetDefault("POSTGRES_DSN", "")

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 1)
	viper.SetDefault("ROOM_CACHE_TTL", 5*time.Minute)

	viper.SetDefault("RABBIT_URL", "")
	viper.SetDefault("BOOKING_EXCHANGE", "smartmeetingroom_events")

	viper.SetDefault("AUTO_CONFIRM", true)
	viper.SetDefault("LOCK_TIMEOUT", 5*time.Second)
	viper.SetDefault("MIN_NOTICE", 15*time.Minute)
	viper.SetDefault("MIN_DURATION", 15*time.Minute)
	viper.SetDefault("MAX_DURATION", 8*time.Hour)
	viper.SetDefault("MODIFICATION_CUTOFF", 30*time.Minute)
	viper.SetDefault("SWEEP_INTERVAL", 5*time.Minute)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
