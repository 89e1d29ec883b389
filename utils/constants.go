package utils

import "time"

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Shortener constants
const (
	// DefaultAliasLength is the generated alias length when not configured
	DefaultAliasLength = 7

	// DefaultAliasAlphabet excludes visually ambiguous characters (0/O, 1/l/I)
	DefaultAliasAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// MaxAliasLength bounds custom aliases supplied by users
	MaxAliasLength = 60

	// DefaultStatsTopN is the default number of entries returned by
	// browser/platform/referer distributions (ties at the cutoff included)
	DefaultStatsTopN = 5
)

// Context keys used by handlers when building per-request contexts
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
	TimeoutKey   ContextKey = "timeout"
)
