package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tolpa-999/PerfumBackend/pkg/apihelpers"
	jwthandling "github.com/Tolpa-999/PerfumBackend/pkg/jwt-handling"
	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
)

const (
	HeaderAuthorization = "Authorization"

	// context key under which the parsed claims are stored
	ValidatedTokenKey = "validatedToken"
)

func ExtractToken(c *gin.Context) (string, error) {
	tokens, ok := c.Request.Header[HeaderAuthorization]
	if !ok || len(tokens) < 1 {
		return "", errors.New("no Authorization header found")
	}
	token := strings.TrimPrefix(tokens[0], "Bearer ")
	if len(token) == 0 {
		return "", errors.New("no token found in Authorization header")
	}
	return token, nil
}

// GetAndValidateAccountUserJWT extracts the bearer token, validates it
// and requires the access token purpose. The parsed claims are stored in
// the request context.
func GetAndValidateAccountUserJWT(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractToken(c)
		if err != nil {
			slog.Warn("no Authorization token found")
			apihelpers.SendFail(c, http.StatusBadRequest, err.Error())
			c.Abort()
			return
		}

		claims, err := jwthandling.ValidateAccountUserToken(token, tokenSignKey)
		if err != nil {
			slog.Warn("token validation failed", slog.String("error", err.Error()))
			apihelpers.SendFail(c, http.StatusUnauthorized, "error during token validation")
			c.Abort()
			return
		}
		if claims.Purpose != userTypes.TOKEN_PURPOSE_ACCESS {
			slog.Warn("token with wrong purpose used", slog.String("purpose", claims.Purpose))
			apihelpers.SendFail(c, http.StatusUnauthorized, "error during token validation")
			c.Abort()
			return
		}

		c.Set(ValidatedTokenKey, claims)
	}
}
