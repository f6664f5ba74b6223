package usermanagement

import (
	"context"
	"time"

	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
)

// UserStore is the persistence contract of the credential store. Every
// read-modify-write flow (lockout counting, refresh token list mutation,
// reset token consumption) is a single method backed by an atomic
// conditional update on the record, never a separate read then whole
// document write. Lookups return ErrNotFound when no record matches.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (userTypes.User, error)
	GetUserByEmail(ctx context.Context, email string) (userTypes.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, username string, email string) (userTypes.User, error)
	// GetUserByValidResetToken matches the stored reset token and an
	// unexpired reset expiry in one lookup; a missing, consumed or
	// expired token is ErrNotFound alike.
	GetUserByValidResetToken(ctx context.Context, token string, now time.Time) (userTypes.User, error)

	CreateUser(ctx context.Context, user userTypes.User) (string, error)

	// ReissueUnverifiedCredentials replaces the password hash and the
	// verification expiry of a still-unverified account. Conditional on
	// emailVerified being false, so it cannot race a concurrent
	// verification.
	ReissueUnverifiedCredentials(ctx context.Context, id string, passwordHash string, verificationExpires int64) error
	MarkEmailVerified(ctx context.Context, id string) error

	// RecordFailedLoginAttempt atomically increments the failure counter
	// and, when the post-increment count reaches maxAttempts, engages the
	// lock (set lockUntil, clear the counter) in the same conditional
	// sequence. Returns whether the lock was engaged by this call.
	RecordFailedLoginAttempt(ctx context.Context, id string, maxAttempts int64, lockUntil int64) (locked bool, err error)
	// ClearLoginLockout resets loginAttempts and lockUntil after a
	// successful password check and stamps the last login time.
	ClearLoginLockout(ctx context.Context, id string, lastLogin int64) error

	AddRefreshToken(ctx context.Context, id string, rt userTypes.RefreshToken) error
	// RotateRefreshToken replaces the record holding oldToken in place.
	// ErrNotFound when oldToken is no longer on the account (revoked or
	// already rotated), which is what makes revocation stick.
	RotateRefreshToken(ctx context.Context, id string, oldToken string, rt userTypes.RefreshToken) error
	ClearRefreshTokens(ctx context.Context, id string) error

	SetResetToken(ctx context.Context, id string, token string, expires int64) error
	// ConsumePasswordReset sets the new password hash, clears the reset
	// token and its expiry and empties the refresh token list, all
	// conditional on the token still being present: the second caller
	// gets ErrNotFound.
	ConsumePasswordReset(ctx context.Context, id string, token string, passwordHash string, now int64) error
}
