package apihandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tolpa-999/PerfumBackend/pkg/apihelpers"
	jwthandling "github.com/Tolpa-999/PerfumBackend/pkg/jwt-handling"
	usermanagement "github.com/Tolpa-999/PerfumBackend/pkg/user-management"
)

// sendServiceError translates the typed errors of the user management
// service into response codes. Anything unexpected becomes an opaque 500.
func (h *HttpEndpoints) sendServiceError(c *gin.Context, err error) {
	var lockedErr *usermanagement.AccountLockedError
	switch {
	case errors.As(err, &lockedErr):
		c.Header("Retry-After", fmt.Sprintf("%d", lockedErr.RetryAfter))
		apihelpers.SendFail(c, http.StatusLocked, lockedErr.Error())
	case errors.Is(err, usermanagement.ErrValidation):
		apihelpers.SendFail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usermanagement.ErrInvalidCredentials):
		apihelpers.SendFail(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, usermanagement.ErrNotFound):
		apihelpers.SendFail(c, http.StatusNotFound, "user not found")
	case errors.Is(err, usermanagement.ErrAlreadyExists):
		apihelpers.SendFail(c, http.StatusBadRequest, "username or email already in use")
	case errors.Is(err, usermanagement.ErrAlreadyVerified):
		apihelpers.SendFail(c, http.StatusBadRequest, "email already verified")
	case errors.Is(err, usermanagement.ErrEmailNotVerified):
		apihelpers.SendFail(c, http.StatusBadRequest, "please verify your email first")
	case errors.Is(err, usermanagement.ErrSamePassword):
		apihelpers.SendFail(c, http.StatusBadRequest, "new password cannot be the same as the old one")
	case errors.Is(err, jwthandling.ErrTokenExpired):
		apihelpers.SendFail(c, http.StatusBadRequest, "token expired")
	case errors.Is(err, jwthandling.ErrTokenInvalid):
		apihelpers.SendFail(c, http.StatusBadRequest, "invalid token")
	default:
		slog.Error("unexpected error", slog.String("error", err.Error()))
		apihelpers.SendError(c, http.StatusInternalServerError, "internal server error")
	}
}
