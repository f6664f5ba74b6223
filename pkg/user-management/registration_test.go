package usermanagement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	jwthandling "github.com/Tolpa-999/PerfumBackend/pkg/jwt-handling"
	"github.com/Tolpa-999/PerfumBackend/pkg/user-management/pwhash"
	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("with invalid input", func(t *testing.T) {
		s := newTestService(newMemStore(), &recordingNotifier{})

		cases := []struct {
			username, email, password string
		}{
			{"ab1", "alice@x.com", "longpassword1"},
			{"alice_12", "alice@x.com", "longpassword1"},
			{"alice12", "not-an-email", "longpassword1"},
			{"alice12", "alice@x.com", "short"},
		}
		for _, c := range cases {
			_, err := s.Register(ctx, c.username, c.email, c.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation for %+v, got %v", c, err)
			}
		}
	})

	t.Run("on empty store", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)

		user, err := s.Register(ctx, "alice12", "alice@x.com", "longpassword1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.EmailVerified {
			t.Error("new account must be unverified")
		}
		if user.Password != "" {
			t.Error("returned user must be sanitized")
		}
		if store.count() != 1 {
			t.Errorf("expected one record, got %d", store.count())
		}
		if notifier.sentCount() != 1 {
			t.Fatalf("expected one verification mail, got %d", notifier.sentCount())
		}
		mail := notifier.lastMail()
		if mail.To != "alice@x.com" {
			t.Errorf("unexpected recipient: %s", mail.To)
		}
		if mail.Username != "alice12" {
			t.Errorf("mail should carry the username, got %q", mail.Username)
		}
		token := strings.TrimPrefix(mail.Link, "https://example.com/verify-email?token=")
		claims, err := jwthandling.ValidateAccountUserToken(token, "test-sign-key")
		if err != nil {
			t.Fatalf("mailed token does not validate: %v", err)
		}
		if claims.Purpose != userTypes.TOKEN_PURPOSE_EMAIL_VERIFICATION {
			t.Errorf("unexpected purpose: %s", claims.Purpose)
		}
		if claims.Email != "alice@x.com" || claims.Username != "alice12" {
			t.Error("claims should carry the account identity")
		}
	})

	t.Run("again before verification re-issues the same identity", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)

		first, err := s.Register(ctx, "alice12", "alice@x.com", "longpassword1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		second, err := s.Register(ctx, "alice12", "alice@x.com", "otherpassword2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.count() != 1 {
			t.Errorf("expected exactly one record, got %d", store.count())
		}
		if first.ID != second.ID {
			t.Error("re-registration must keep the identity")
		}
		if notifier.sentCount() != 2 {
			t.Errorf("expected re-dispatched mail, got %d sends", notifier.sentCount())
		}

		stored := store.mustGet(first.ID.Hex())
		match, err := pwhash.ComparePasswordWithHash(stored.Password, "otherpassword2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !match {
			t.Error("password should have been updated")
		}
	})

	t.Run("with an already verified account", func(t *testing.T) {
		store := newMemStore()
		s := newTestService(store, &recordingNotifier{})
		createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		_, err := s.Register(ctx, "alice12", "other@x.com", "longpassword1")
		if !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists for taken username, got %v", err)
		}

		_, err = s.Register(ctx, "other99", "alice@x.com", "longpassword1")
		if !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists for taken email, got %v", err)
		}
	})

	t.Run("succeeds even when the mail send fails", func(t *testing.T) {
		store := newMemStore()
		s := newTestService(store, &recordingNotifier{fails: true})

		_, err := s.Register(ctx, "alice12", "alice@x.com", "longpassword1")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if store.count() != 1 {
			t.Error("account should have been created anyway")
		}
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("with a valid token", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)

		registered, err := s.Register(ctx, "alice12", "alice@x.com", "longpassword1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		token := strings.TrimPrefix(notifier.lastMail().Link, "https://example.com/verify-email?token=")
		user, err := s.VerifyEmail(ctx, token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !user.EmailVerified {
			t.Error("returned user should be verified")
		}
		if !store.mustGet(registered.ID.Hex()).EmailVerified {
			t.Error("stored user should be verified")
		}
	})

	t.Run("with an already verified account", func(t *testing.T) {
		store := newMemStore()
		s := newTestService(store, &recordingNotifier{})
		id := createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		token, err := jwthandling.GenerateNewAccountUserToken(
			time.Minute, id, "alice12", "alice@x.com",
			userTypes.TOKEN_PURPOSE_EMAIL_VERIFICATION, "test-sign-key",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = s.VerifyEmail(ctx, token)
		if !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("expected ErrAlreadyVerified, got %v", err)
		}
	})

	t.Run("with an expired token", func(t *testing.T) {
		s := newTestService(newMemStore(), &recordingNotifier{})

		token, err := jwthandling.GenerateNewAccountUserToken(
			-time.Minute, "uid", "alice12", "alice@x.com",
			userTypes.TOKEN_PURPOSE_EMAIL_VERIFICATION, "test-sign-key",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = s.VerifyEmail(ctx, token)
		if !errors.Is(err, jwthandling.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("with a token of the wrong purpose", func(t *testing.T) {
		s := newTestService(newMemStore(), &recordingNotifier{})

		token, err := jwthandling.GenerateNewAccountUserToken(
			time.Minute, "uid", "alice12", "alice@x.com",
			userTypes.TOKEN_PURPOSE_ACCESS, "test-sign-key",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = s.VerifyEmail(ctx, token)
		if !errors.Is(err, jwthandling.ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("with an unknown account", func(t *testing.T) {
		s := newTestService(newMemStore(), &recordingNotifier{})

		token, err := jwthandling.GenerateNewAccountUserToken(
			time.Minute, "uid", "ghost12", "ghost@x.com",
			userTypes.TOKEN_PURPOSE_EMAIL_VERIFICATION, "test-sign-key",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = s.VerifyEmail(ctx, token)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
