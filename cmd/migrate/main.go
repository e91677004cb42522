package main

import (
	"context" // Bootstrap deadline
	"os"      // Status output
	"time"    // Lock timings

	"afrikpay_store/internal/config" // Custom import path (Config)
	"afrikpay_store/internal/db"     // Custom import path (Database)
	"afrikpay_store/internal/utils"  // Provisioning lock

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main entry point for database initialization
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger; status lines go to stdout, logs to stderr
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	var target db.Target
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.ConnectTimeout)
		if err != nil {
			logrus.Fatalf("failed to connect to MongoDB: %v", err) // Fatal error if DB connection fails
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logrus.WithError(err).Warn("Failed to disconnect from MongoDB")
			}
		}()
		target = db.NewMongoTarget(client.Database(cfg.DBName)) // Select the database
	case config.DriverMySQL:
		sqlDB, err := db.OpenSQL(cfg.MySQLDSN())
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err)
		}
		target = db.NewSQLTarget(sqlDB)
	default:
		logrus.Fatalf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	boot := db.NewBootstrapper(target, cfg.SeedData)

	// Serialize concurrent runs when Redis is configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()
		boot.Lock = func(ctx context.Context) (func(), error) {
			return utils.AcquireLock(ctx, redisClient, "bootstrap:"+cfg.DBName, time.Minute, 30*time.Second)
		}
	}

	report, err := boot.Run(ctx)
	if err != nil {
		logrus.Fatalf("initialization failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"driver":         cfg.DBDriver,         // Storage engine
		"database":       cfg.DBName,           // Database name
		"created":        report.Created,       // Collections created by this run
		"updated":        report.Updated,       // Collections whose validator was refreshed
		"users_inserted": report.UsersInserted, // Seed users inserted by this run
	}).Info("Initialization finished")

	if err := report.WriteStatus(os.Stdout); err != nil {
		logrus.Fatalf("failed to write status: %v", err)
	}
}
