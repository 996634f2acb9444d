package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
	Users   []User        `yaml:"users"`
	Store   StoreConfig   `yaml:"store"`
	Archive ArchiveConfig `yaml:"archive"`
	Crawler CrawlerConfig `yaml:"crawler"`
	LLM     LLMConfig     `yaml:"llm"`
	Limits  LimitsConfig  `yaml:"limits"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"` // memory, postgres
	DSN        string `yaml:"dsn"`
	MaxReports int    `yaml:"max_reports"` // in-memory cap, 0 = unlimited
}

type ArchiveConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type CrawlerConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxPolicyPages int    `yaml:"max_policy_pages"`
	MaxContentSize int    `yaml:"max_content_size"`
	UserAgent      string `yaml:"user_agent"`
}

type LLMConfig struct {
	Provider       string `yaml:"provider"` // openai, mock
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LimitsConfig struct {
	RequestsPerMinute    int `yaml:"requests_per_minute"`
	DailyChecksPerClient int `yaml:"daily_checks_per_client"` // -1 = unlimited
}

var GlobalConfig *Config

// Load reads the YAML config at path, fills in defaults and applies
// environment overrides. A missing file is not an error, the environment
// alone is enough to run. A .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(&cfg)

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.MaxReports == 0 {
		cfg.Store.MaxReports = 500
	}
	if cfg.Archive.ExpireDays == 0 {
		cfg.Archive.ExpireDays = 7
	}
	if cfg.Crawler.TimeoutSeconds == 0 {
		cfg.Crawler.TimeoutSeconds = 20
	}
	if cfg.Crawler.MaxPolicyPages == 0 {
		cfg.Crawler.MaxPolicyPages = 3
	}
	if cfg.Crawler.MaxContentSize == 0 {
		cfg.Crawler.MaxContentSize = 100000
	}
	if cfg.Crawler.UserAgent == "" {
		cfg.Crawler.UserAgent = "ai-precheck/1.0"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "mock"
	}
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 60
	}
	if cfg.Limits.RequestsPerMinute == 0 {
		cfg.Limits.RequestsPerMinute = 100
	}
	if cfg.Limits.DailyChecksPerClient == 0 {
		cfg.Limits.DailyChecksPerClient = 1
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.Driver = "postgres"
		cfg.Store.DSN = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
