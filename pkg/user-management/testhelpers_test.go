package usermanagement

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
)

// memStore is an in-memory UserStore double. Every mutation holds the
// mutex for its whole read-modify-write sequence, mirroring the atomic
// conditional updates of the Mongo implementation.
type memStore struct {
	mu    sync.Mutex
	users map[string]*userTypes.User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*userTypes.User{}}
}

func (s *memStore) GetUserByID(_ context.Context, id string) (userTypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return userTypes.User{}, ErrNotFound
	}
	return *u, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (userTypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return userTypes.User{}, ErrNotFound
}

func (s *memStore) GetUserByUsernameOrEmail(_ context.Context, username string, email string) (userTypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return *u, nil
		}
	}
	return userTypes.User{}, ErrNotFound
}

func (s *memStore) GetUserByValidResetToken(_ context.Context, token string, now time.Time) (userTypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetPasswordToken == token && u.ResetPasswordExpires > now.Unix() {
			return *u, nil
		}
	}
	return userTypes.User{}, ErrNotFound
}

func (s *memStore) CreateUser(_ context.Context, user userTypes.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	s.users[user.ID.Hex()] = &user
	return user.ID.Hex(), nil
}

func (s *memStore) ReissueUnverifiedCredentials(_ context.Context, id string, passwordHash string, verificationExpires int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.EmailVerified {
		return ErrNotFound
	}
	u.Password = passwordHash
	u.EmailVerificationExpires = verificationExpires
	u.Timestamps.UpdatedAt = time.Now().Unix()
	return nil
}

func (s *memStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.EmailVerified = true
	u.Timestamps.UpdatedAt = time.Now().Unix()
	return nil
}

func (s *memStore) RecordFailedLoginAttempt(_ context.Context, id string, maxAttempts int64, lockUntil int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, ErrNotFound
	}
	u.LoginAttempts++
	if u.LoginAttempts >= maxAttempts {
		u.LockUntil = lockUntil
		u.LoginAttempts = 0
		return true, nil
	}
	return false, nil
}

func (s *memStore) ClearLoginLockout(_ context.Context, id string, lastLogin int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = 0
	u.Timestamps.LastLogin = lastLogin
	return nil
}

func (s *memStore) AddRefreshToken(_ context.Context, id string, rt userTypes.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshTokens = append(u.RefreshTokens, rt)
	return nil
}

func (s *memStore) RotateRefreshToken(_ context.Context, id string, oldToken string, rt userTypes.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range u.RefreshTokens {
		if existing.Token == oldToken {
			u.RefreshTokens[i] = rt
			return nil
		}
	}
	return ErrNotFound
}

func (s *memStore) ClearRefreshTokens(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshTokens = []userTypes.RefreshToken{}
	return nil
}

func (s *memStore) SetResetToken(_ context.Context, id string, token string, expires int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = expires
	return nil
}

func (s *memStore) ConsumePasswordReset(_ context.Context, id string, token string, passwordHash string, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.ResetPasswordToken != token || u.ResetPasswordExpires <= now {
		return ErrNotFound
	}
	u.Password = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = 0
	u.RefreshTokens = []userTypes.RefreshToken{}
	u.Timestamps.LastPasswordChange = now
	return nil
}

func (s *memStore) mustGet(id string) userTypes.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type sentMail struct {
	To          string
	Username    string
	MessageType string
	Link        string
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []sentMail
	fails bool
}

func (n *recordingNotifier) Send(_ context.Context, to string, username string, messageType string, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Username: username, MessageType: messageType, Link: link})
	if n.fails {
		return context.DeadlineExceeded
	}
	return nil
}

func (n *recordingNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *recordingNotifier) lastMail() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

func newTestService(store UserStore, notifier Notifier) *Service {
	return NewService(store, notifier, ServiceConfig{
		TokenSignKey:         "test-sign-key",
		EmailVerificationURL: "https://example.com/verify-email?token=",
		PasswordResetURL:     "https://example.com/reset-pass?token=",
	})
}
