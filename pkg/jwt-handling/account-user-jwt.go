package jwthandling

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired marks a token whose signature is fine but whose
	// lifetime elapsed, so callers can tell "log in again" apart from a
	// forged or corrupt token.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Information a token encodes
type AccountUserClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewAccountUserToken(
	expiresIn time.Duration,
	id string,
	username string,
	email string,
	purpose string,
	secretKey string,
) (tokenString string, err error) {
	claims := AccountUserClaims{
		username,
		email,
		purpose,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   id,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

// ValidateAccountUserToken parses and verifies a signed token. Expiry is
// reported as ErrTokenExpired, every other failure as ErrTokenInvalid.
func ValidateAccountUserToken(tokenString string, secretKey string) (*AccountUserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountUserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AccountUserClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
