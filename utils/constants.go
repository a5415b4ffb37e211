package utils

import (
	"time"
)

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

// Points awarded by the economy for content milestones
const (
	// PointsFirstProfilePicture is awarded the first time a user sets an avatar
	PointsFirstProfilePicture = 10

	// PointsMediaUpload is awarded for each stored media asset
	PointsMediaUpload = 5

	// PointsProjectPublished is awarded when a project is first published
	PointsProjectPublished = 25
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Context keys propagated from the HTTP layer into business flows.
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
	UserIDKey     ContextKey = "user_id"
)
