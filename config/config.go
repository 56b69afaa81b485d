package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Remote     RemoteConfig
	Supabase   SupabaseConfig
	Firebase   FirebaseConfig
	Sanity     SanityConfig
	LocalStore LocalStoreConfig
	Auth       AuthConfig
	App        AppConfig
}

type ServerConfig struct {
	Port         string
	AllowOrigins []string
}

// RemoteConfig selects which hosted backend (if any) is the durable store.
// An empty Backend means the service runs on the local fallback store only.
type RemoteConfig struct {
	Backend string // "supabase" | "firestore" | "sanity" | ""
}

type SupabaseConfig struct {
	DatabaseDSN string

	// Supabase Storage is reachable over its S3-compatible protocol.
	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	StorageBucket   string
}

type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	// APIHost overrides the default <project>.api.sanity.io host.
	// Used behind proxies and in tests.
	APIHost string
}

type LocalStoreConfig struct {
	Kind          string // "file" | "redis" | "memory"
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type AuthConfig struct {
	AdminPasswordHash string // bcrypt hash
	JWTSecret         string
	TokenTTL          time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			AllowOrigins: splitEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Remote: RemoteConfig{
			Backend: strings.ToLower(getEnv("REMOTE_STORE", "")),
		},
		Supabase: SupabaseConfig{
			DatabaseDSN:      getEnv("SUPABASE_DB_DSN", ""),
			StorageEndpoint:  getEnv("SUPABASE_STORAGE_ENDPOINT", ""),
			StorageRegion:    getEnv("SUPABASE_STORAGE_REGION", "us-east-1"),
			StorageBucket:    getEnv("SUPABASE_STORAGE_BUCKET", "project-images"),
			StorageAccessKey: getEnv("SUPABASE_STORAGE_ACCESS_KEY", ""),
			StorageSecretKey: getEnv("SUPABASE_STORAGE_SECRET_KEY", ""),
			StoragePublicURL: getEnv("SUPABASE_STORAGE_PUBLIC_URL", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			StorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		},
		Sanity: SanityConfig{
			ProjectID:  getEnv("SANITY_PROJECT_ID", ""),
			Dataset:    getEnv("SANITY_DATASET", "production"),
			APIVersion: getEnv("SANITY_API_VERSION", "2024-01-01"),
			Token:      getEnv("SANITY_TOKEN", ""),
			APIHost:    getEnv("SANITY_API_HOST", ""),
		},
		LocalStore: LocalStoreConfig{
			Kind:          strings.ToLower(getEnv("LOCAL_STORE", "file")),
			Path:          getEnv("LOCAL_STORE_PATH", "./data/localstore.json"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TokenTTL:          getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Remote.Backend {
	case "", "supabase", "firestore", "sanity":
	default:
		return fmt.Errorf("REMOTE_STORE must be one of supabase, firestore, sanity (got %q)", c.Remote.Backend)
	}

	switch c.LocalStore.Kind {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("LOCAL_STORE must be one of file, redis, memory (got %q)", c.LocalStore.Kind)
	}

	if c.Auth.AdminPasswordHash != "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func splitEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
