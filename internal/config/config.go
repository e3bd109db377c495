package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
}

type DatabaseConfig struct {
	URL             string        `json:"url"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	RequestsPerMin  int           `json:"requests_per_minute"`
	BurstSize       int           `json:"burst_size"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// AuthConfig configures the identity gateway binary.
type AuthConfig struct {
	Server         ServerConfig    `json:"server"`
	Database       DatabaseConfig  `json:"database"`
	Redis          RedisConfig     `json:"redis"`
	RateLimit      RateLimitConfig `json:"rate_limit"`
	JWTSecret      string          `json:"jwt_secret"`
	AccessTokenTTL time.Duration   `json:"access_token_ttl"`
	BCryptCost     int             `json:"bcrypt_cost"`
}

// TaskConfig configures the task service binary.
type TaskConfig struct {
	Server         ServerConfig    `json:"server"`
	Database       DatabaseConfig  `json:"database"`
	Redis          RedisConfig     `json:"redis"`
	RateLimit      RateLimitConfig `json:"rate_limit"`
	AuthServiceURL string          `json:"auth_service_url"`
	AuthTimeout    time.Duration   `json:"auth_timeout"`
}

func LoadAuthConfig() (*AuthConfig, error) {
	config := &AuthConfig{
		Server:         loadServerConfig("8000"),
		Database:       loadDatabaseConfig(),
		Redis:          loadRedisConfig(),
		RateLimit:      loadRateLimitConfig(),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvAsDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		BCryptCost:     getEnvAsInt("BCRYPT_COST", 10),
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if config.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return config, nil
}

func LoadTaskConfig() (*TaskConfig, error) {
	config := &TaskConfig{
		Server:         loadServerConfig("8080"),
		Database:       loadDatabaseConfig(),
		Redis:          loadRedisConfig(),
		RateLimit:      loadRateLimitConfig(),
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
		AuthTimeout:    getEnvAsDuration("AUTH_TIMEOUT", 5*time.Second),
	}

	if config.AuthServiceURL == "" {
		return nil, fmt.Errorf("AUTH_SERVICE_URL must be set")
	}
	if config.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return config, nil
}

func loadServerConfig(defaultPort string) ServerConfig {
	return ServerConfig{
		Host:         getEnv("HOST", "localhost"),
		Port:         getEnv("PORT", defaultPort),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Environment:  getEnv("ENVIRONMENT", "development"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("DATABASE_URL", ""),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMin:  getEnvAsInt("RATE_LIMIT_RPM", 100),
		BurstSize:       getEnvAsInt("RATE_LIMIT_BURST", 10),
		CleanupInterval: getEnvAsDuration("RATE_LIMIT_CLEANUP", 10*time.Minute),
	}
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
