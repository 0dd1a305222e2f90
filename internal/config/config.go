// Package config loads the service configuration from the environment
// (optionally seeded from a .env file) and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	AI       AIConfig       `mapstructure:"ai"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Env  string `mapstructure:"env"`
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type FirebaseConfig struct {
	ServiceAccount string `mapstructure:"service_account"`
	ProjectID      string `mapstructure:"project_id"`
	StorageBucket  string `mapstructure:"storage_bucket"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	CacheSize   int           `mapstructure:"cache_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Freshness   time.Duration `mapstructure:"freshness"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
	BackendSQLite    = "sqlite"
)

// Environment variable names that differ from the nested key spelling.
var envAliases = map[string]string{
	"ai.api_key":               "GROQ_API_KEY",
	"mongo.uri":                "MONGODB_URI",
	"mongo.database":           "MONGODB_DATABASE",
	"firebase.service_account": "FIREBASE_SERVICE_ACCOUNT",
	"server.env":               "SERVER_ENV",
	"server.addr":              "HTTP_ADDR",
	"store.sqlite_path":        "SQLITE_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.env", "development")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.backend", BackendFirestore)
	v.SetDefault("store.sqlite_path", "gtd.db")
	v.SetDefault("firebase.service_account", "")
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.storage_bucket", "")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "gtd")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("ai.model", "llama-3.1-8b-instant")
	v.SetDefault("ai.max_tokens", 300)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.cache_size", 500)
	v.SetDefault("ai.cache_ttl", 24*time.Hour)
	v.SetDefault("ai.freshness", 30*24*time.Hour)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration. A .env file in the working directory is applied
// first (existing environment wins); configFile, if not empty, is read next;
// environment variables override both.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the selected backend depends on.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFirestore:
		if c.Firebase.ServiceAccount == "" && c.Server.Env != "development" {
			return errors.New("FIREBASE_SERVICE_ACCOUNT secret not set")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI environment variable not set")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
