package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For timeouts

	"github.com/joho/godotenv" // For loading .env files
)

// Storage drivers understood by the bootstrap command
const (
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // HTTP port of the record service
	DBDriver       string        // mongo or mysql
	MongoURI       string        // MongoDB connection string
	DBName         string        // Database name
	DBUser         string        // MySQL user
	DBPassword     string        // MySQL password
	DBHost         string        // MySQL host
	DBPort         string        // MySQL port
	JWTSecret      string        // JWT secret key, empty disables auth
	RedisAddr      string        // Redis server address, empty disables cache and lock
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	SeedData       bool          // Insert development users during bootstrap
	ConnectTimeout time.Duration // Timeout for the initial database connection
	IsProd         bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return FromEnv()
}

// FromEnv builds a Config from the current environment without reading .env
func FromEnv() *Config {
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:        getenv("APP_PORT", "8002"),
		DBDriver:       getenv("DB_DRIVER", DriverMongo),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getenv("DB_NAME", "afrikpay"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         getenv("DB_PORT", "3306"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		SeedData:       os.Getenv("SEED_DATA") != "false", // Seeding is on unless explicitly disabled
		ConnectTimeout: durationEnv("CONNECT_TIMEOUT", 10*time.Second),
		IsProd:         os.Getenv("IS_PROD") == "true",
	}
}

// MySQLDSN returns the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
