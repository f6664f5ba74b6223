package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tolpa-999/PerfumBackend/pkg/apihelpers"
)

type PasswordResetRequestReq struct {
	Email string `json:"email"`
}

func (h *HttpEndpoints) passwordResetRequest(c *gin.Context) {
	var req PasswordResetRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		apihelpers.SendFail(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Email == "" {
		apihelpers.SendFail(c, http.StatusBadRequest, "email missing")
		return
	}

	if err := h.userService.InitiatePasswordReset(c.Request.Context(), req.Email); err != nil {
		h.sendServiceError(c, err)
		return
	}

	apihelpers.SendSuccess(c, http.StatusOK, "password reset email sent", nil)
}

type ResetPasswordReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) resetPassword(c *gin.Context) {
	var req ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		apihelpers.SendFail(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Token == "" {
		apihelpers.SendFail(c, http.StatusBadRequest, "token missing")
		return
	}

	user, err := h.userService.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	// every stored session was revoked with the password change
	h.clearRefreshTokenCookie(c)
	apihelpers.SendSuccess(c, http.StatusOK, "password updated, please login again", gin.H{
		"user": user,
	})
}
