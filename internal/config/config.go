package config

import (
	"os"
	"strconv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string

	// Currency conversion upstream.
	ExchangeAPIURL string
	ExchangeAPIKey string
}

// ClientConfig holds configuration for the client application.
type ClientConfig struct {
	// Mode selects the persistence backend: auto, remote, device or memory.
	Mode         string
	APIBaseURL   string
	DBPath       string
	SessionPath  string
	SnapshotPath string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "3000"),
		MySQLDSN:       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/gastos?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
		ExchangeAPIURL: getEnv("EXCHANGE_API_URL", "https://v6.exchangerate-api.com/v6"),
		ExchangeAPIKey: getEnv("EXCHANGE_API_KEY", ""),
	}
}

// LoadClient builds ClientConfig from environment with sensible defaults.
func LoadClient() *ClientConfig {
	return &ClientConfig{
		Mode:         getEnv("GASTOS_MODE", "auto"),
		APIBaseURL:   getEnv("GASTOS_API_URL", "http://localhost:3000"),
		DBPath:       getEnv("GASTOS_DB_PATH", defaultStatePath("gastos.db")),
		SessionPath:  getEnv("GASTOS_SESSION_PATH", defaultStatePath("session.json")),
		SnapshotPath: getEnv("GASTOS_SNAPSHOT_PATH", defaultStatePath("snapshot.json")),
	}
}

func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return dir + string(os.PathSeparator) + "gastos" + string(os.PathSeparator) + name
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
