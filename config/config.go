package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config holds all configuration values.
type Config struct {
	AppPort            string   `mapstructure:"APP_PORT"`
	Env                string   `mapstructure:"ENV"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin  int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Document store.
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Firebase (auth, firestore, messaging).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Redis configuration.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	TourCacheTTL  time.Duration `mapstructure:"TOUR_CACHE_TTL"`

	// Cloudinary image storage.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Booking policies.
	BookingTxTimeout            time.Duration `mapstructure:"BOOKING_TX_TIMEOUT"`
	BookingMaxAttempts          int           `mapstructure:"BOOKING_MAX_ATTEMPTS"`
	BookingStrictPricing        bool          `mapstructure:"BOOKING_STRICT_PRICING"`
	BookingReleaseSeatsOnCancel bool          `mapstructure:"BOOKING_RELEASE_SEATS_ON_CANCEL"`

	// Notifications.
	NotificationsEnabled bool          `mapstructure:"NOTIFICATIONS_ENABLED"`
	ReminderLeadTime     time.Duration `mapstructure:"REMINDER_LEAD_TIME"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("STORE_BACKEND", BackendMongo)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("DATABASE_NAME", "tourly")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("TOUR_CACHE_TTL", 5*time.Minute)
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("BOOKING_TX_TIMEOUT", 10*time.Second)
	v.SetDefault("BOOKING_MAX_ATTEMPTS", 5)
	v.SetDefault("BOOKING_STRICT_PRICING", false)
	v.SetDefault("BOOKING_RELEASE_SEATS_ON_CANCEL", false)
	v.SetDefault("NOTIFICATIONS_ENABLED", false)
	v.SetDefault("REMINDER_LEAD_TIME", 24*time.Hour)
}

// Load reads configuration from an optional config.yaml and the environment.
func Load(v *viper.Viper) (Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig or exits.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
