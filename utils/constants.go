package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// SessionCachePrefix prefixes live session snapshots.
const SessionCachePrefix = "session:"

// AccessTokenTTL is how long a login token stays valid.
const AccessTokenTTL = 24 * time.Hour
