package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TOKEN_PURPOSE_ACCESS             = "access"
	TOKEN_PURPOSE_REFRESH            = "refresh"
	TOKEN_PURPOSE_EMAIL_VERIFICATION = "email-verify"
)

// Prefix that marks stored password reset tokens, so they cannot be
// confused with any other token kind during lookups.
const RESET_TOKEN_PREFIX = "reset-"

type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"`

	EmailVerified            bool  `bson:"emailVerified" json:"emailVerified"`
	EmailVerificationExpires int64 `bson:"emailVerificationExpires,omitempty" json:"-"`

	ResetPasswordToken   string `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires int64  `bson:"resetPasswordExpires,omitempty" json:"-"`

	LoginAttempts int64 `bson:"loginAttempts,omitempty" json:"-"`
	LockUntil     int64 `bson:"lockUntil,omitempty" json:"-"`

	RefreshTokens []RefreshToken `bson:"refreshTokens" json:"-"`

	ProfilePicture string     `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Timestamps     Timestamps `bson:"timestamps" json:"timestamps"`
}

type RefreshToken struct {
	ID         string `bson:"id" json:"id"`
	Token      string `bson:"token" json:"-"`
	IssuedAt   int64  `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt  int64  `bson:"expiresAt" json:"expiresAt"`
	DeviceInfo string `bson:"deviceInfo,omitempty" json:"deviceInfo,omitempty"`
	IPAddress  string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

type Timestamps struct {
	CreatedAt          int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt          int64 `bson:"updatedAt" json:"updatedAt"`
	LastLogin          int64 `bson:"lastLogin" json:"lastLogin"`
	LastPasswordChange int64 `bson:"lastPasswordChange" json:"lastPasswordChange"`
}

// IsLocked reports whether the account is currently locked. An elapsed
// lockUntil counts as unlocked without requiring a stored mutation.
func (u User) IsLocked(now time.Time) bool {
	return u.LockUntil > now.Unix()
}

// LockRemaining returns the seconds until the lock elapses, 0 if not locked.
func (u User) LockRemaining(now time.Time) int64 {
	if !u.IsLocked(now) {
		return 0
	}
	return u.LockUntil - now.Unix()
}

func (u User) FindRefreshToken(token string) (RefreshToken, bool) {
	for _, rt := range u.RefreshTokens {
		if rt.Token == token {
			return rt, true
		}
	}
	return RefreshToken{}, false
}

// Sanitize clears credential material before the record is returned to a
// client. The password hash and the refresh token list never leave the
// service.
func (u *User) Sanitize() {
	u.Password = ""
	u.ResetPasswordToken = ""
	u.RefreshTokens = nil
}
