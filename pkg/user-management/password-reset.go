package usermanagement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tolpa-999/PerfumBackend/pkg/user-management/pwhash"
	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
	umUtils "github.com/Tolpa-999/PerfumBackend/pkg/user-management/utils"
)

// InitiatePasswordReset stores a fresh single-use reset token on the
// account (replacing any outstanding one, so at most one is ever valid)
// and dispatches the reset link. The send is best effort.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) error {
	email = umUtils.SanitizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := umUtils.GenerateResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(s.ttls.ResetToken).Unix()
	if err := s.store.SetResetToken(ctx, user.ID.Hex(), token, expires); err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, user.Email, user.Username, NOTIFICATION_TYPE_PASSWORD_RESET, s.passwordResetURL+token); err != nil {
		slog.Error("failed to send password reset email", slog.String("email", umUtils.BlurEmailAddress(user.Email)), slog.String("error", err.Error()))
	}

	slog.Info("password reset initiated", slog.String("subject", user.ID.Hex()))
	return nil
}

// ResetPassword redeems a reset token exactly once: it sets the new
// password, clears the token and empties the refresh token list so every
// existing session has to log in again. An unknown or expired token is
// ErrNotFound either way.
func (s *Service) ResetPassword(ctx context.Context, token string, newPassword string) (userTypes.User, error) {
	if !umUtils.CheckPasswordFormat(newPassword) {
		return userTypes.User{}, fmt.Errorf("%w: password must be 8-30 characters", ErrValidation)
	}

	now := time.Now()
	user, err := s.store.GetUserByValidResetToken(ctx, token, now)
	if err != nil {
		return userTypes.User{}, err
	}

	match, err := pwhash.ComparePasswordWithHash(user.Password, newPassword)
	if err != nil {
		return userTypes.User{}, err
	}
	if match {
		return userTypes.User{}, ErrSamePassword
	}

	passwordHash, err := pwhash.HashPassword(newPassword)
	if err != nil {
		return userTypes.User{}, err
	}

	// conditional on the token still being stored: a concurrent redeem
	// consumes it for exactly one caller
	if err := s.store.ConsumePasswordReset(ctx, user.ID.Hex(), token, passwordHash, now.Unix()); err != nil {
		return userTypes.User{}, err
	}

	slog.Info("password reset successful", slog.String("subject", user.ID.Hex()))

	user.Sanitize()
	return user, nil
}
