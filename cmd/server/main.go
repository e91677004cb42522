package main

import (
	"context" // context package is needed for Redis and MongoDB operations
	"time"    // Cache TTL

	"afrikpay_store/internal/api"        // Custom package for API handlers
	"afrikpay_store/internal/config"     // Custom package for configuration
	"afrikpay_store/internal/db"         // Custom package for database connections
	"afrikpay_store/internal/repository" // Custom package for record access
	"afrikpay_store/internal/utils"      // Custom package for the cache

	"github.com/gin-gonic/gin"                   // Gin web framework
	"github.com/redis/go-redis/v9"               // Redis client
	"github.com/sirupsen/logrus"                 // Logrus for structured logging
	"go.mongodb.org/mongo-driver/mongo/readpref" // Health probe read preference
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	deps := api.Deps{JWTSecret: cfg.JWTSecret}

	// Connect to MongoDB, falling back to in-memory storage for local runs
	client, err := db.ConnectMongo(context.Background(), cfg.MongoURI, cfg.ConnectTimeout)
	if err != nil {
		logrus.WithError(err).Warn("MongoDB unavailable, using in-memory storage")
		store := repository.NewMemoryStore()
		deps.Users, deps.Wallets, deps.Transactions = store.Users(), store.Wallets(), store.Transactions()
	} else {
		defer client.Disconnect(context.Background())
		users, wallets, transactions := repository.NewMongoRepositories(client.Database(cfg.DBName))
		deps.Users, deps.Wallets, deps.Transactions = users, wallets, transactions
		deps.Ping = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	}

	// Setup Redis client
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})

		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		deps.Cache = utils.NewCache(redisClient, 60*time.Second)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(deps) // Gin router with every route

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
