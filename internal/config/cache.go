package config

import (
    "os"
    "strconv"
    "time"
)

// CacheConfig defines settings for the in-process access cache.  TTL is the
// lifetime of one entry; MaxEntries bounds the cache size so a burst of
// distinct users cannot grow memory without limit.  The cache is a
// read-through convenience over the database, so both values trade staleness
// against store read pressure.
type CacheConfig struct {
    TTL        time.Duration
    MaxEntries int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults match the values the service has always run with: five minutes
// and five thousand entries.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        TTL:        parseDur(getenv("ACCESS_CACHE_TTL", "300s")),
        MaxEntries: atoi(getenv("ACCESS_CACHE_MAX", "5000")),
    }
}

// RetryConfig controls the persistence retry layer: how many attempts a
// single logical operation gets and the base delay between them.  The delay
// grows linearly with the attempt index.
type RetryConfig struct {
    Attempts int
    Delay    time.Duration
}

// LoadRetryConfig reads environment variables to build a RetryConfig.
func LoadRetryConfig() RetryConfig {
    return RetryConfig{
        Attempts: atoi(getenv("DB_RETRY_ATTEMPTS", "3")),
        Delay:    parseDur(getenv("DB_RETRY_DELAY", "500ms")),
    }
}

// DialogConfig holds settings for the per-user dialog scratch store used by
// the conversational front end.  Entries expire on their own so an abandoned
// multi-step input does not linger forever.
type DialogConfig struct {
    TTL    time.Duration
    Prefix string
}

// LoadDialogConfig reads environment variables to build a DialogConfig.
func LoadDialogConfig() DialogConfig {
    return DialogConfig{
        TTL:    parseDur(getenv("DIALOG_TTL", "1h")),
        Prefix: getenv("DIALOG_PREFIX", "dialog"),
    }
}

// Helper functions reused from redis.go and ratelimit.go
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
