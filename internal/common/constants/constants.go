package constants

import "time"

const (
	UsernameMinLength   = 3
	UsernameMaxLength   = 50
	PasswordMinLength   = 8
	PasswordMaxLength   = 72
	EmailMaxLength      = 100
	WebsiteURLMaxLength = 255
	JWTSecretMinLength  = 32

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 1
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitUpdateRequestsPerSecond   = 10
	RateLimitUpdateBurst               = 30
	RateLimitGeneralRequestsPerSecond  = 20
	RateLimitGeneralBurst              = 40

	WSWriteWait      = 10 * time.Second
	WSPingPeriod     = 54 * time.Second
	WSPongWait       = 60 * time.Second
	WSSendBufferSize = 32
)

type ContextKey string

const TraceIDKey ContextKey = "trace_id"
