package models

const (
	// SessionTTL is the lifetime of a sign-in session.
	SessionTTL = 30 * 24 * 60 * 60 // 30 days in seconds

	// VerificationTTL is the lifetime of an e-mail verification link.
	VerificationTTL = 24 * 60 * 60 // 24 hours in seconds

	// SignInAttempts is the number of failed sign-ins allowed per window.
	SignInAttempts = 10

	// SignInWindow is the failed sign-in counting window.
	SignInWindow = 15 * 60 // 15 minutes in seconds

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8

	// WorkerQueueSize is the in-memory ledger queue capacity.
	WorkerQueueSize = 1000

	// DefaultPageSize is used by list endpoints when no limit is given.
	DefaultPageSize = 50

	// MaxPageSize caps the limit a client may request.
	MaxPageSize = 200
)
