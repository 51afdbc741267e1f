package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFirebase = "firebase"
	BackendMemory   = "memory"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject            string
	FirebaseDatabaseURL        string
	FirebaseAPIKey             string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	StorageBucket              string

	DataBackend string
	RedisURL    string

	BypassFlagTTL     time.Duration
	SessionIdleTTL    time.Duration
	WatchPollInterval time.Duration
	RequestTimeout    time.Duration

	PaymentURLProduct    string
	PaymentURLTicket     string
	PaymentURLMysteryBox string
	ContactURL           string

	MysteryBoxPrice    float64
	LoginRatePerMinute int
}

func Load() (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		Environment: v.GetString("ENVIRONMENT"),

		FirebaseProject:            v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseDatabaseURL:        v.GetString("FIREBASE_DATABASE_URL"),
		FirebaseAPIKey:             v.GetString("FIREBASE_API_KEY"),
		FirebaseServiceAccountJSON: v.GetString("FIREBASE_SERVICE_ACCOUNT_JSON"),
		FirebaseServiceAccountPath: v.GetString("FIREBASE_SERVICE_ACCOUNT_PATH"),
		StorageBucket:              v.GetString("STORAGE_BUCKET"),

		DataBackend: strings.ToLower(v.GetString("DATA_BACKEND")),
		RedisURL:    v.GetString("REDIS_URL"),

		BypassFlagTTL:     v.GetDuration("BYPASS_FLAG_TTL"),
		SessionIdleTTL:    v.GetDuration("SESSION_IDLE_TTL"),
		WatchPollInterval: v.GetDuration("WATCH_POLL_INTERVAL"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),

		PaymentURLProduct:    v.GetString("PAYMENT_URL_PRODUCT"),
		PaymentURLTicket:     v.GetString("PAYMENT_URL_TICKET"),
		PaymentURLMysteryBox: v.GetString("PAYMENT_URL_MYSTERY_BOX"),
		ContactURL:           v.GetString("CONTACT_URL"),

		MysteryBoxPrice:    v.GetFloat64("MYSTERY_BOX_PRICE"),
		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DATA_BACKEND", BackendFirebase)
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_PATH", "./firebase-adminsdk.json")
	v.SetDefault("BYPASS_FLAG_TTL", 12*time.Hour)
	v.SetDefault("SESSION_IDLE_TTL", 2*time.Hour)
	v.SetDefault("WATCH_POLL_INTERVAL", 2*time.Second)
	v.SetDefault("REQUEST_TIMEOUT", 15*time.Second)
	v.SetDefault("PAYMENT_URL_PRODUCT", "https://lynk.id/yustdan")
	v.SetDefault("PAYMENT_URL_TICKET", "https://lynk.id/yustdan")
	v.SetDefault("PAYMENT_URL_MYSTERY_BOX", "http://lynk.id/yustdan/gmz9dn1dk1ek/checkout")
	v.SetDefault("CONTACT_URL", "https://wa.me/")
	v.SetDefault("MYSTERY_BOX_PRICE", 50000)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
}

func (c *Config) validate() error {
	switch c.DataBackend {
	case BackendMemory:
	case BackendFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %s backend", BackendFirebase)
		}
		if c.FirebaseDatabaseURL == "" {
			return fmt.Errorf("FIREBASE_DATABASE_URL is required for the %s backend", BackendFirebase)
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend)
	}

	if c.WatchPollInterval <= 0 {
		return fmt.Errorf("WATCH_POLL_INTERVAL must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
