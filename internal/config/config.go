package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Log      LogConfig
	Redis    RedisConfig
	Jobs     JobsConfig
	Root     RootConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig points at the access-token revocation list. An empty Addr
// keeps the list in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JobsConfig struct {
	TokenCleanupCron string
}

// RootConfig describes the account and country node created on first start.
type RootConfig struct {
	Username string
	Password string
	Location string
	Country  string
}

// AppConfig is the global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", defaultLogFormat(appMode)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Jobs: JobsConfig{
			TokenCleanupCron: getEnv("TOKEN_CLEANUP_CRON", "0 3 * * *"),
		},
		Root: RootConfig{
			Username: getEnv("ROOT_USERNAME", "admin"),
			Password: getEnv("ROOT_PASSWORD", "admin123456"),
			Location: getEnv("ROOT_LOCATION", "0"),
			Country:  getEnv("ROOT_COUNTRY_NAME", "Việt Nam"),
		},
	}

	if err := config.checkSecrets(); err != nil {
		return nil, err
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// checkSecrets refuses the built-in signing secrets in prod mode.
func (c *Config) checkSecrets() error {
	if !c.IsProd() {
		return nil
	}
	if c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}
	if c.JWT.RefreshSecret == defaultJWTRefreshSecret {
		return fmt.Errorf("PROD_JWT_REFRESH_SECRET must be set in prod mode")
	}
	return nil
}

func defaultLogFormat(mode string) string {
	if mode == "dev" {
		return "console"
	}
	return "json"
}

func prefixFor(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := prefixFor(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "census"),
	}
}

const (
	defaultJWTSecret        = "default_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
)

// loadJWTConfig loads JWT config based on mode. Access tokens last a week
// unless ACCESS_TOKEN_MINUTES says otherwise.
func loadJWTConfig(mode string) JWTConfig {
	prefix := prefixFor(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 7*24*60),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 30),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(prefixFor(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:3000"
	}
	return origins
}
