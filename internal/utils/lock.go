package utils

import (
	"context" // Deadlines for lock attempts
	"errors"  // Sentinel errors
	"time"    // Lock TTL and polling

	"github.com/google/uuid"       // Lock ownership tokens
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// ErrLockHeld is returned when another holder keeps the lock past the wait
var ErrLockHeld = errors.New("lock held by another process")

// lockPollInterval is the delay between acquisition attempts
const lockPollInterval = 100 * time.Millisecond

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock takes key with SET NX and a random token. It retries until wait
// elapses. The returned release func deletes the key only if it still holds
// our token, so an expired lock taken over by someone else is left alone.
func AcquireLock(ctx context.Context, rdb *redis.Client, key string, ttl, wait time.Duration) (func(), error) {
	token := uuid.NewString() // Identifies this holder
	deadline := time.Now().Add(wait)
	for {
		ok, err := rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockHeld
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, rdb, []string{key}, token).Err(); err != nil {
			logrus.WithFields(logrus.Fields{
				"key":   key,         // Lock key
				"error": err.Error(), // Error message
			}).Warn("Failed to release lock")
		}
	}
	return release, nil
}
