package usermanagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	jwthandling "github.com/Tolpa-999/PerfumBackend/pkg/jwt-handling"
	"github.com/Tolpa-999/PerfumBackend/pkg/user-management/pwhash"
	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
	umUtils "github.com/Tolpa-999/PerfumBackend/pkg/user-management/utils"
)

// Register creates a new unverified account, or re-issues the credentials
// of an existing unverified one with the same username or email (same
// identity, fresh password hash and verification window). A verified
// account with either identifier rejects the registration. Both outcomes
// dispatch a verification mail; a failed send is logged, never fatal.
func (s *Service) Register(ctx context.Context, username string, email string, password string) (userTypes.User, error) {
	if !umUtils.CheckUsernameFormat(username) {
		return userTypes.User{}, fmt.Errorf("%w: username must be 5-30 alphanumeric characters", ErrValidation)
	}
	email = umUtils.SanitizeEmail(email)
	if !umUtils.CheckEmailFormat(email) {
		return userTypes.User{}, fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if !umUtils.CheckPasswordFormat(password) {
		return userTypes.User{}, fmt.Errorf("%w: password must be 8-30 characters", ErrValidation)
	}

	passwordHash, err := pwhash.HashPassword(password)
	if err != nil {
		return userTypes.User{}, err
	}

	now := time.Now()
	verificationExpires := now.Add(s.ttls.VerificationToken).Unix()

	user, err := s.store.GetUserByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		if user.EmailVerified {
			return userTypes.User{}, ErrAlreadyExists
		}
		// re-issue for the existing unverified identity
		if err := s.store.ReissueUnverifiedCredentials(ctx, user.ID.Hex(), passwordHash, verificationExpires); err != nil {
			return userTypes.User{}, err
		}
		user.Password = passwordHash
		user.EmailVerificationExpires = verificationExpires
	case errors.Is(err, ErrNotFound):
		user = userTypes.User{
			Username:                 username,
			Email:                    email,
			Password:                 passwordHash,
			EmailVerificationExpires: verificationExpires,
			Timestamps: userTypes.Timestamps{
				CreatedAt: now.Unix(),
				UpdatedAt: now.Unix(),
			},
		}
		id, err := s.store.CreateUser(ctx, user)
		if err != nil {
			return userTypes.User{}, err
		}
		user.ID, _ = primitive.ObjectIDFromHex(id)
	default:
		return userTypes.User{}, err
	}

	verificationToken, err := jwthandling.GenerateNewAccountUserToken(
		s.ttls.VerificationToken,
		user.ID.Hex(),
		user.Username,
		user.Email,
		userTypes.TOKEN_PURPOSE_EMAIL_VERIFICATION,
		s.tokenSignKey,
	)
	if err != nil {
		return userTypes.User{}, err
	}

	if err := s.notifier.Send(ctx, user.Email, user.Username, NOTIFICATION_TYPE_EMAIL_VERIFICATION, s.emailVerificationURL+verificationToken); err != nil {
		slog.Error("failed to send verification email", slog.String("email", umUtils.BlurEmailAddress(user.Email)), slog.String("error", err.Error()))
	}

	slog.Info("registration processed", slog.String("subject", user.ID.Hex()))

	user.Sanitize()
	return user, nil
}

// VerifyEmail redeems an email verification token and marks the account
// verified. The flag is monotonic: it is never cleared again.
func (s *Service) VerifyEmail(ctx context.Context, token string) (userTypes.User, error) {
	claims, err := jwthandling.ValidateAccountUserToken(token, s.tokenSignKey)
	if err != nil {
		return userTypes.User{}, err
	}
	if claims.Purpose != userTypes.TOKEN_PURPOSE_EMAIL_VERIFICATION {
		return userTypes.User{}, jwthandling.ErrTokenInvalid
	}

	user, err := s.store.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return userTypes.User{}, err
	}

	if user.EmailVerified {
		return userTypes.User{}, ErrAlreadyVerified
	}

	if err := s.store.MarkEmailVerified(ctx, user.ID.Hex()); err != nil {
		return userTypes.User{}, err
	}
	user.EmailVerified = true

	slog.Info("email verified", slog.String("subject", user.ID.Hex()))

	user.Sanitize()
	return user, nil
}
