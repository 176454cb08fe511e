package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const minKeyLength = 32

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
	Cache     CacheConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port  string
	Env   string
	Brand string

	// ReadTimeout and WriteTimeout bound a whole request, upload body included.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IsDevelopment reports whether the dashboard runs outside production.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Key          []byte
	CSRFKey      []byte
	CookieSecure bool
	CookieDomain string
	MaxAge       time.Duration
}

type DatabaseConfig struct {
	ActivityLogEnabled bool
	Host               string
	Port               string
	User               string
	Password           string
	Database           string
	Schema             string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	LoginAttempts int
	LoginWindow   time.Duration
}

type UploadConfig struct {
	MaxImages     int
	MaxBytes      int64
	ImageMaxWidth uint
	StagingTTL    time.Duration
}

type CacheConfig struct {
	CategoryTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("BRAND_NAME", "Storefront Admin")
	v.SetDefault("SERVER_READ_TIMEOUT_SECONDS", 300)
	v.SetDefault("SERVER_WRITE_TIMEOUT_SECONDS", 300)
	v.SetDefault("BACKEND_API_URL", "http://localhost:5000/api/")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("SESSION_MAX_AGE_HOURS", 24)
	v.SetDefault("ACTIVITY_LOG_ENABLED", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("LOGIN_RATE_WINDOW_SECONDS", 60)
	v.SetDefault("UPLOAD_MAX_IMAGES", 10)
	v.SetDefault("UPLOAD_MAX_MB", 32)
	v.SetDefault("IMAGE_MAX_WIDTH", 1600)
	v.SetDefault("STAGING_TTL_MINUTES", 30)
	v.SetDefault("CATEGORY_CACHE_TTL_SECONDS", 300)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:  v.GetString("SERVER_PORT"),
			Env:   v.GetString("SERVER_ENV"),
			Brand: v.GetString("BRAND_NAME"),

			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT_SECONDS")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT_SECONDS")) * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: NormalizeBaseURL(v.GetString("BACKEND_API_URL")),
			Timeout: time.Duration(v.GetInt("BACKEND_TIMEOUT_SECONDS")) * time.Second,
		},
		Session: SessionConfig{
			Key:          decodeKey("SESSION_KEY", v.GetString("SESSION_KEY")),
			CSRFKey:      decodeKey("CSRF_KEY", v.GetString("CSRF_KEY")),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
			CookieDomain: v.GetString("COOKIE_DOMAIN"),
			MaxAge:       time.Duration(v.GetInt("SESSION_MAX_AGE_HOURS")) * time.Hour,
		},
		Database: DatabaseConfig{
			ActivityLogEnabled: v.GetBool("ACTIVITY_LOG_ENABLED"),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Database:           v.GetString("DB_DATABASE"),
			Schema:             v.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts: v.GetInt("LOGIN_RATE_LIMIT"),
			LoginWindow:   time.Duration(v.GetInt("LOGIN_RATE_WINDOW_SECONDS")) * time.Second,
		},
		Upload: UploadConfig{
			MaxImages:     v.GetInt("UPLOAD_MAX_IMAGES"),
			MaxBytes:      v.GetInt64("UPLOAD_MAX_MB") << 20,
			ImageMaxWidth: v.GetUint("IMAGE_MAX_WIDTH"),
			StagingTTL:    time.Duration(v.GetInt("STAGING_TTL_MINUTES")) * time.Minute,
		},
		Cache: CacheConfig{
			CategoryTTL: time.Duration(v.GetInt("CATEGORY_CACHE_TTL_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

// NormalizeBaseURL trims whitespace and guarantees a trailing slash so
// relative endpoint paths resolve under the API prefix.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}

func decodeKey(name, encoded string) []byte {
	if encoded == "" {
		log.Printf("Warning: %s not set, generating a random key; sessions will not survive a restart", name)
		return randomKey()
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(key) < minKeyLength {
		log.Printf("Warning: %s is invalid or shorter than %d bytes, generating a random key", name, minKeyLength)
		return randomKey()
	}
	return key
}

func randomKey() []byte {
	b := make([]byte, minKeyLength)
	if _, err := rand.Read(b); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
