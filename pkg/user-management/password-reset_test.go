package usermanagement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tolpa-999/PerfumBackend/pkg/user-management/pwhash"
)

func initiateAndExtractToken(t *testing.T, s *Service, notifier *recordingNotifier, email string) string {
	t.Helper()
	if err := s.InitiatePasswordReset(context.Background(), email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return strings.TrimPrefix(notifier.lastMail().Link, "https://example.com/reset-pass?token=")
}

func TestInitiatePasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("with unknown email", func(t *testing.T) {
		s := newTestService(newMemStore(), &recordingNotifier{})
		err := s.InitiatePasswordReset(ctx, "nobody@x.com")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("stores a prefixed token and mails the link", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		id := createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		token := initiateAndExtractToken(t, s, notifier, "alice@x.com")
		if !strings.HasPrefix(token, "reset-") {
			t.Errorf("token should carry the reset prefix: %s", token)
		}
		if notifier.lastMail().Username != "alice12" {
			t.Errorf("mail should carry the username, got %q", notifier.lastMail().Username)
		}

		stored := store.mustGet(id)
		if stored.ResetPasswordToken != token {
			t.Error("mailed token should match the stored one")
		}
		if stored.ResetPasswordExpires <= time.Now().Unix() {
			t.Error("expiry should be in the future")
		}
	})

	t.Run("replaces an outstanding token", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		first := initiateAndExtractToken(t, s, notifier, "alice@x.com")
		second := initiateAndExtractToken(t, s, notifier, "alice@x.com")
		if first == second {
			t.Fatal("expected a fresh token")
		}

		// only the latest token is redeemable
		_, err := s.ResetPassword(ctx, first, "newpassword22")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for the replaced token, got %v", err)
		}
		if _, err := s.ResetPassword(ctx, second, "newpassword22"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("is single use", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		id := createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		token := initiateAndExtractToken(t, s, notifier, "alice@x.com")

		user, err := s.ResetPassword(ctx, token, "newpassword22")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Password != "" {
			t.Error("returned user must be sanitized")
		}

		stored := store.mustGet(id)
		match, err := pwhash.ComparePasswordWithHash(stored.Password, "newpassword22")
		if err != nil || !match {
			t.Error("stored hash should match the new password")
		}
		if stored.ResetPasswordToken != "" || stored.ResetPasswordExpires != 0 {
			t.Error("reset token should be cleared")
		}

		_, err = s.ResetPassword(ctx, token, "thirdpassword3")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("second redemption should be ErrNotFound, got %v", err)
		}
	})

	t.Run("with the same password", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		id := createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		token := initiateAndExtractToken(t, s, notifier, "alice@x.com")

		_, err := s.ResetPassword(ctx, token, "longpassword1")
		if !errors.Is(err, ErrSamePassword) {
			t.Fatalf("expected ErrSamePassword, got %v", err)
		}

		// store unchanged: token still outstanding, password untouched
		stored := store.mustGet(id)
		if stored.ResetPasswordToken != token {
			t.Error("token should still be stored")
		}
		match, _ := pwhash.ComparePasswordWithHash(stored.Password, "longpassword1")
		if !match {
			t.Error("password should be unchanged")
		}
	})

	t.Run("with an expired token", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		id := createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		token := initiateAndExtractToken(t, s, notifier, "alice@x.com")
		store.mu.Lock()
		store.users[id].ResetPasswordExpires = time.Now().Add(-time.Minute).Unix()
		store.mu.Unlock()

		_, err := s.ResetPassword(ctx, token, "newpassword22")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("with an unknown token", func(t *testing.T) {
		s := newTestService(newMemStore(), &recordingNotifier{})
		_, err := s.ResetPassword(ctx, "reset-ffffffff", "newpassword22")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("clears all sessions", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		id := createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		if _, err := s.Login(ctx, "alice@x.com", "longpassword1", "", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.mustGet(id).RefreshTokens) != 1 {
			t.Fatal("expected one session")
		}

		token := initiateAndExtractToken(t, s, notifier, "alice@x.com")
		if _, err := s.ResetPassword(ctx, token, "newpassword22"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(store.mustGet(id).RefreshTokens) != 0 {
			t.Error("refresh tokens should be cleared after reset")
		}
	})

	t.Run("concurrent redemption consumes the token once", func(t *testing.T) {
		store := newMemStore()
		notifier := &recordingNotifier{}
		s := newTestService(store, notifier)
		createVerifiedUser(t, store, "alice@x.com", "longpassword1")

		token := initiateAndExtractToken(t, s, notifier, "alice@x.com")

		var wg sync.WaitGroup
		results := make(chan error, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.ResetPassword(ctx, token, "newpassword22")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		successes := 0
		for err := range results {
			if err == nil {
				successes++
			} else if !errors.Is(err, ErrNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
		}
		if successes != 1 {
			t.Errorf("expected exactly one successful redemption, got %d", successes)
		}
	})
}
