package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort     string // Application port
	DBUser      string // Database user
	DBPassword  string // Database password
	DBHost      string // Database host
	DBPort      string // Database port
	DBName      string // Database name
	RedisAddr   string // Redis server address
	RedisPass   string // Redis password
	RedisDB     int    // Redis database number
	FrontendURL string // Allowed CORS origin for the dashboard
	UploadDir   string // Directory for uploaded party logos
	IsProd      bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "5000"),                      // Application port
		DBUser:      os.Getenv("DB_USER"),                            // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                        // Database password
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),                  // Database host
		DBPort:      getEnv("DB_PORT", "3306"),                       // Database port
		DBName:      os.Getenv("DB_NAME"),                            // Database name
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),          // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                         // Redis password
		RedisDB:     redisDB,                                         // Redis database number
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"), // Dashboard origin
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),                 // Upload directory
		IsProd:      os.Getenv("IS_PROD") == "true",                  // Is production environment
	}
}

// getEnv returns the environment variable or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DSN builds the MySQL data source name from the database settings
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}
