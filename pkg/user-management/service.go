package usermanagement

import (
	"context"
	"time"
)

const (
	DEFAULT_ACCESS_TOKEN_TTL       = 15 * time.Minute
	DEFAULT_REFRESH_TOKEN_TTL      = 7 * 24 * time.Hour
	DEFAULT_VERIFICATION_TOKEN_TTL = 15 * time.Minute
	DEFAULT_RESET_TOKEN_TTL        = time.Hour

	DEFAULT_MAX_LOGIN_ATTEMPTS = 5
	DEFAULT_LOCK_DURATION      = 15 * time.Minute
)

// Message types passed to the notifier.
const (
	NOTIFICATION_TYPE_EMAIL_VERIFICATION = "email-verification"
	NOTIFICATION_TYPE_PASSWORD_RESET     = "password-reset"
)

// Notifier delivers account mails (verification links, reset links).
// Implementations are best effort; the service logs a failed send and
// carries on.
type Notifier interface {
	Send(ctx context.Context, toAddress string, username string, messageType string, link string) error
}

type TokenTTLs struct {
	AccessToken       time.Duration
	RefreshToken      time.Duration
	VerificationToken time.Duration
	ResetToken        time.Duration
}

// LockoutConfig controls the login failure lock. The exact threshold
// boundary is configuration, not a hardcoded comparison.
type LockoutConfig struct {
	MaxLoginAttempts int64
	LockDuration     time.Duration
}

type ServiceConfig struct {
	TokenSignKey string
	TTLs         TokenTTLs
	Lockout      LockoutConfig

	// Link prefixes the token gets appended to in outgoing mails.
	EmailVerificationURL string
	PasswordResetURL     string
}

// Service orchestrates the credential and session lifecycle against the
// injected store, token sign key and notifier. It holds no mutable state
// of its own; all durable state lives in the store.
type Service struct {
	store    UserStore
	notifier Notifier

	tokenSignKey string
	ttls         TokenTTLs
	lockout      LockoutConfig

	emailVerificationURL string
	passwordResetURL     string
}

func NewService(store UserStore, notifier Notifier, cfg ServiceConfig) *Service {
	if cfg.TTLs.AccessToken <= 0 {
		cfg.TTLs.AccessToken = DEFAULT_ACCESS_TOKEN_TTL
	}
	if cfg.TTLs.RefreshToken <= 0 {
		cfg.TTLs.RefreshToken = DEFAULT_REFRESH_TOKEN_TTL
	}
	if cfg.TTLs.VerificationToken <= 0 {
		cfg.TTLs.VerificationToken = DEFAULT_VERIFICATION_TOKEN_TTL
	}
	if cfg.TTLs.ResetToken <= 0 {
		cfg.TTLs.ResetToken = DEFAULT_RESET_TOKEN_TTL
	}
	if cfg.Lockout.MaxLoginAttempts <= 0 {
		cfg.Lockout.MaxLoginAttempts = DEFAULT_MAX_LOGIN_ATTEMPTS
	}
	if cfg.Lockout.LockDuration <= 0 {
		cfg.Lockout.LockDuration = DEFAULT_LOCK_DURATION
	}

	return &Service{
		store:                store,
		notifier:             notifier,
		tokenSignKey:         cfg.TokenSignKey,
		ttls:                 cfg.TTLs,
		lockout:              cfg.Lockout,
		emailVerificationURL: cfg.EmailVerificationURL,
		passwordResetURL:     cfg.PasswordResetURL,
	}
}
