package usermanagement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	jwthandling "github.com/Tolpa-999/PerfumBackend/pkg/jwt-handling"
	"github.com/Tolpa-999/PerfumBackend/pkg/user-management/pwhash"
	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
	umUtils "github.com/Tolpa-999/PerfumBackend/pkg/user-management/utils"
)

// SessionTokens is the outcome of a successful login or refresh: the
// short-lived access token, the long-lived refresh token and the
// sanitized account record.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	User         userTypes.User
}

// Login checks the credentials of an account and starts a new session.
// The lock check precedes the password check, so a locked account is
// rejected regardless of password correctness.
func (s *Service) Login(ctx context.Context, email string, password string, deviceInfo string, ipAddress string) (SessionTokens, error) {
	email = umUtils.SanitizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return SessionTokens{}, err
	}

	if !user.EmailVerified {
		return SessionTokens{}, ErrEmailNotVerified
	}

	now := time.Now()
	if user.IsLocked(now) {
		return SessionTokens{}, &AccountLockedError{RetryAfter: user.LockRemaining(now)}
	}

	match, err := pwhash.ComparePasswordWithHash(user.Password, password)
	if err != nil {
		return SessionTokens{}, err
	}
	if !match {
		locked, err := s.store.RecordFailedLoginAttempt(
			ctx,
			user.ID.Hex(),
			s.lockout.MaxLoginAttempts,
			now.Add(s.lockout.LockDuration).Unix(),
		)
		if err != nil {
			slog.Error("failed to record failed login attempt", slog.String("userID", user.ID.Hex()), slog.String("error", err.Error()))
		}
		if locked {
			return SessionTokens{}, &AccountLockedError{RetryAfter: int64(s.lockout.LockDuration.Seconds())}
		}
		return SessionTokens{}, ErrInvalidCredentials
	}

	if err := s.store.ClearLoginLockout(ctx, user.ID.Hex(), now.Unix()); err != nil {
		return SessionTokens{}, err
	}

	tokens, err := s.startSession(ctx, user, deviceInfo, ipAddress, now)
	if err != nil {
		return SessionTokens{}, err
	}

	slog.Info("login successful", slog.String("subject", user.ID.Hex()))
	return tokens, nil
}

// Refresh exchanges a still-listed refresh token for a fresh access token
// and rotates the refresh token itself: the presented token is replaced
// in the stored list, so it cannot be replayed and a token cleared by
// invalidation or password reset mints nothing.
func (s *Service) Refresh(ctx context.Context, refreshToken string, deviceInfo string, ipAddress string) (SessionTokens, error) {
	claims, err := jwthandling.ValidateAccountUserToken(refreshToken, s.tokenSignKey)
	if err != nil {
		return SessionTokens{}, err
	}
	if claims.Purpose != userTypes.TOKEN_PURPOSE_REFRESH {
		return SessionTokens{}, jwthandling.ErrTokenInvalid
	}

	user, err := s.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return SessionTokens{}, err
	}

	now := time.Now()
	newRefreshToken, err := jwthandling.GenerateNewAccountUserToken(
		s.ttls.RefreshToken,
		user.ID.Hex(),
		user.Username,
		user.Email,
		userTypes.TOKEN_PURPOSE_REFRESH,
		s.tokenSignKey,
	)
	if err != nil {
		return SessionTokens{}, err
	}

	err = s.store.RotateRefreshToken(ctx, user.ID.Hex(), refreshToken, userTypes.RefreshToken{
		ID:         uuid.NewString(),
		Token:      newRefreshToken,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttls.RefreshToken).Unix(),
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// token was revoked or already rotated
			return SessionTokens{}, jwthandling.ErrTokenInvalid
		}
		return SessionTokens{}, err
	}

	accessToken, err := jwthandling.GenerateNewAccountUserToken(
		s.ttls.AccessToken,
		user.ID.Hex(),
		user.Username,
		user.Email,
		userTypes.TOKEN_PURPOSE_ACCESS,
		s.tokenSignKey,
	)
	if err != nil {
		return SessionTokens{}, err
	}

	slog.Info("token refreshed", slog.String("subject", user.ID.Hex()))

	user.Sanitize()
	return SessionTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    s.ttls.AccessToken,
		User:         user,
	}, nil
}

// InvalidateAllSessions clears the whole refresh token list of the
// account. Idempotent: an already empty list is not an error.
func (s *Service) InvalidateAllSessions(ctx context.Context, accountID string) error {
	return s.store.ClearRefreshTokens(ctx, accountID)
}

func (s *Service) startSession(ctx context.Context, user userTypes.User, deviceInfo string, ipAddress string, now time.Time) (SessionTokens, error) {
	accessToken, err := jwthandling.GenerateNewAccountUserToken(
		s.ttls.AccessToken,
		user.ID.Hex(),
		user.Username,
		user.Email,
		userTypes.TOKEN_PURPOSE_ACCESS,
		s.tokenSignKey,
	)
	if err != nil {
		return SessionTokens{}, err
	}

	refreshToken, err := jwthandling.GenerateNewAccountUserToken(
		s.ttls.RefreshToken,
		user.ID.Hex(),
		user.Username,
		user.Email,
		userTypes.TOKEN_PURPOSE_REFRESH,
		s.tokenSignKey,
	)
	if err != nil {
		return SessionTokens{}, err
	}

	err = s.store.AddRefreshToken(ctx, user.ID.Hex(), userTypes.RefreshToken{
		ID:         uuid.NewString(),
		Token:      refreshToken,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttls.RefreshToken).Unix(),
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
	})
	if err != nil {
		return SessionTokens{}, err
	}

	user.Sanitize()
	return SessionTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.ttls.AccessToken,
		User:         user,
	}, nil
}
