package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Storage struct {
		Type      string `yaml:"type"`       // local or s3
		BasePath  string `yaml:"base_path"`  // local storage root
		BaseURL   string `yaml:"base_url"`   // public URL base
		Bucket    string `yaml:"bucket"`     // s3
		Region    string `yaml:"region"`     // s3
		AccessKey string `yaml:"access_key"` // s3
		SecretKey string `yaml:"secret_key"` // s3
		Endpoint  string `yaml:"endpoint"`   // s3-compatible endpoint
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`      // bytes, per attachment
		AllowedTypes []string `yaml:"allowed_types"` // MIME types
	} `yaml:"upload"`

	Secop struct {
		BaseURL  string `yaml:"base_url"` // SECOP II open data endpoint
		Resource string `yaml:"resource"` // SODA resource id
		PageSize int    `yaml:"page_size"`
		AppToken string `yaml:"app_token"` // optional Socrata app token
	} `yaml:"secop"`

	Worker struct {
		TenderSweepMinutes int `yaml:"tender_sweep_minutes"` // auto-close interval
		ClosingSoonHours   int `yaml:"closing_soon_hours"`   // warn window
	} `yaml:"worker"`

	// First administrator account, seeded at startup when no user holds the
	// email yet. Usually provided via FIRST_ADMIN_EMAIL / FIRST_ADMIN_PASSWORD.
	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

// LoadConfig reads config/config.yaml, or builds the configuration from
// environment variables when DATABASE_URL is set (tests, containers).
// A .env file in the working directory is loaded first if present.
func LoadConfig() {
	var cfg Config

	_ = godotenv.Load()

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

		loadEnvOverrides(&cfg)
		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	loadEnvOverrides(&cfg)
	applyDefaults(&cfg)
	AppConfig = &cfg
}

// loadEnvOverrides picks up secrets that should not live in the yaml file.
func loadEnvOverrides(cfg *Config) {
	if v := os.Getenv("FIRST_ADMIN_EMAIL"); v != "" {
		cfg.FirstAdminEmail = v
	}
	if v := os.Getenv("FIRST_ADMIN_PASSWORD"); v != "" {
		cfg.FirstAdminPassword = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("SECOP_APP_TOKEN"); v != "" {
		cfg.Secop.AppToken = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{
			"application/pdf",
			"application/zip",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"image/jpeg", "image/png",
		}
	}
	if cfg.Secop.BaseURL == "" {
		cfg.Secop.BaseURL = "https://www.datos.gov.co/resource"
	}
	if cfg.Secop.Resource == "" {
		cfg.Secop.Resource = "jbjy-vk9h"
	}
	if cfg.Secop.PageSize == 0 {
		cfg.Secop.PageSize = 50
	}
	if cfg.Worker.TenderSweepMinutes == 0 {
		cfg.Worker.TenderSweepMinutes = 60
	}
	if cfg.Worker.ClosingSoonHours == 0 {
		cfg.Worker.ClosingSoonHours = 24
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
