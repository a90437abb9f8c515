// Package constants defines system-wide constants for the analytics API.
package constants

import "time"

// ================================================================================
// Rate Limiting Constants
// ================================================================================

const (
	// RateLimitKeyPrefix is the namespace prefix for all rate limit counter keys.
	RateLimitKeyPrefix = "rate-limit/"

	// DefaultExpirationWindow is the grace period added to a window's end before
	// its counter key expires from the store.
	DefaultExpirationWindow = 10 * time.Second

	// DefaultCheckTimeout bounds the single store round trip of an admission check.
	DefaultCheckTimeout = 500 * time.Millisecond
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	// HeaderRateLimitRemaining reports the remaining quota in the current window.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimitLimit reports the configured request limit.
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitReset reports the current window's end as epoch seconds.
	HeaderRateLimitReset = "X-RateLimit-Reset"

	// HeaderRequestID carries the request correlation identifier.
	HeaderRequestID = "X-Request-ID"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKeyRateLimit is the gin context key holding the admission check result
// for the in-flight request. Written by the admission middleware, read by the
// header decorator.
const ContextKeyRateLimit = "rate_limit_result"

// ContextKey is the type for request context value keys.
type ContextKey string

// ContextKeyRequestID is the request context key for the correlation identifier.
const ContextKeyRequestID ContextKey = "request_id"

// ================================================================================
// Caching Constants
// ================================================================================

const (
	// QueryCacheTTL is the lifetime of cached analytics query results.
	QueryCacheTTL = 30 * time.Second

	// QueryCacheCleanupInterval is how often expired cache entries are purged.
	QueryCacheCleanupInterval = 5 * time.Minute
)
