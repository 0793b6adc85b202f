package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// MpesaConfig holds the Daraja STK push settings. It is passed explicitly
// to the gateway client and the payment service instead of being read from
// a global inside them.
type MpesaConfig struct {
	BaseURL        string `yaml:"base_url"`
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	ShortCode      string `yaml:"short_code"`
	Passkey        string `yaml:"passkey"`
	CallbackURL    string `yaml:"callback_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PaymentsConfig drives the background status poller.
type PaymentsConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	MaxPollAttempts     int `yaml:"max_poll_attempts"`
}

// PollInterval returns the poll interval as a duration, defaulting to 6s.
func (p PaymentsConfig) PollInterval() time.Duration {
	if p.PollIntervalSeconds <= 0 {
		return 6 * time.Second
	}
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

// Attempts returns the poll attempt budget, defaulting to 10.
func (p PaymentsConfig) Attempts() int {
	if p.MaxPollAttempts <= 0 {
		return 10
	}
	return p.MaxPollAttempts
}

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		URL      string `yaml:"url"`
		CacheTTL int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Mpesa MpesaConfig `yaml:"mpesa"`

	Payments PaymentsConfig `yaml:"payments"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

// LoadConfig reads config/config.yaml, or falls back to environment
// variables when DATABASE_URL is set (test mode).
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		if cfg.FirstAdminEmail == "" {
			cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
		}
		if cfg.FirstAdminPassword == "" {
			cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")
		}

		AppConfig = &cfg
		return
	}

	log.Println("Loading configuration from environment variables (test mode)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Redis.CacheTTL = 300

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@tradewizard.com"

	cfg.Mpesa.ShortCode = "174379"
	cfg.Mpesa.Passkey = "test-passkey"
	cfg.Mpesa.TimeoutSeconds = 30

	cfg.Payments.PollIntervalSeconds = 6
	cfg.Payments.MaxPollAttempts = 10

	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")

	AppConfig = &cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
