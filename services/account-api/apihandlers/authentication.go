package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tolpa-999/PerfumBackend/pkg/apihelpers"
	mw "github.com/Tolpa-999/PerfumBackend/pkg/apihelpers/middlewares"
	jwthandling "github.com/Tolpa-999/PerfumBackend/pkg/jwt-handling"
	usermanagement "github.com/Tolpa-999/PerfumBackend/pkg/user-management"
)

const refreshTokenCookieName = "refreshToken"

func (h *HttpEndpoints) AddAccountUserAPI(rg *gin.RouterGroup) {
	userGroup := rg.Group("/users")
	{
		userGroup.POST("/register", mw.RequirePayload(), h.register)
		userGroup.POST("/verify-email", mw.RequirePayload(), h.verifyEmail)
		userGroup.POST("/login", mw.RequirePayload(), h.login)
		userGroup.GET("/refresh", h.refreshToken)
		userGroup.GET("/logout", h.logout)
		userGroup.POST("/reset-pass-req", mw.RequirePayload(), h.passwordResetRequest)
		userGroup.POST("/reset-pass", mw.RequirePayload(), h.resetPassword)
		userGroup.POST("/invalidate-sessions", mw.GetAndValidateAccountUserJWT(h.tokenSignKey), h.invalidateSessions)
	}
}

type RegisterReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		apihelpers.SendFail(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	apihelpers.SendSuccess(c, http.StatusCreated, "registration successful, please verify your email", gin.H{
		"user": user,
	})
}

type VerifyEmailReq struct {
	Token string `json:"token"`
}

func (h *HttpEndpoints) verifyEmail(c *gin.Context) {
	var req VerifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		apihelpers.SendFail(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Token == "" {
		apihelpers.SendFail(c, http.StatusBadRequest, "token missing")
		return
	}

	user, err := h.userService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	apihelpers.SendSuccess(c, http.StatusOK, "email verified", gin.H{
		"user": user,
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		apihelpers.SendFail(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		apihelpers.SendFail(c, http.StatusBadRequest, "missing required fields")
		return
	}

	tokens, err := h.userService.Login(
		c.Request.Context(),
		req.Email,
		req.Password,
		c.Request.UserAgent(),
		c.ClientIP(),
	)
	if err != nil {
		// an unknown email must look like a wrong password
		if errors.Is(err, usermanagement.ErrNotFound) {
			err = usermanagement.ErrInvalidCredentials
		}
		h.sendServiceError(c, err)
		return
	}

	h.setRefreshTokenCookie(c, tokens.RefreshToken)
	apihelpers.SendSuccess(c, http.StatusOK, "login successful", gin.H{
		"user":        tokens.User,
		"accessToken": tokens.AccessToken,
		"expiresIn":   int64(tokens.ExpiresIn.Seconds()),
	})
}

func (h *HttpEndpoints) refreshToken(c *gin.Context) {
	oldRefreshToken, err := c.Cookie(refreshTokenCookieName)
	if err != nil || oldRefreshToken == "" {
		apihelpers.SendFail(c, http.StatusNotAcceptable, "no refresh token found")
		return
	}

	tokens, err := h.userService.Refresh(
		c.Request.Context(),
		oldRefreshToken,
		c.Request.UserAgent(),
		c.ClientIP(),
	)
	if err != nil {
		if errors.Is(err, jwthandling.ErrTokenExpired) ||
			errors.Is(err, jwthandling.ErrTokenInvalid) ||
			errors.Is(err, usermanagement.ErrNotFound) {
			h.clearRefreshTokenCookie(c)
			apihelpers.SendFail(c, http.StatusNotAcceptable, "invalid refresh token")
			return
		}
		h.sendServiceError(c, err)
		return
	}

	h.setRefreshTokenCookie(c, tokens.RefreshToken)
	apihelpers.SendSuccess(c, http.StatusOK, "token refreshed", gin.H{
		"accessToken": tokens.AccessToken,
		"expiresIn":   int64(tokens.ExpiresIn.Seconds()),
	})
}

// logout only clears the client-held credential; the server side list is
// untouched, invalidate-sessions removes it for all devices.
func (h *HttpEndpoints) logout(c *gin.Context) {
	h.clearRefreshTokenCookie(c)
	apihelpers.SendSuccess(c, http.StatusOK, "logged out", nil)
}

func (h *HttpEndpoints) invalidateSessions(c *gin.Context) {
	token := c.MustGet(mw.ValidatedTokenKey).(*jwthandling.AccountUserClaims)

	if err := h.userService.InvalidateAllSessions(c.Request.Context(), token.Subject); err != nil {
		h.sendServiceError(c, err)
		return
	}

	h.clearRefreshTokenCookie(c)
	slog.Info("all sessions invalidated", slog.String("subject", token.Subject))
	apihelpers.SendSuccess(c, http.StatusOK, "all sessions invalidated", nil)
}

func (h *HttpEndpoints) setRefreshTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		refreshTokenCookieName,
		token,
		int(h.refreshTokenTTL.Seconds()),
		"/",
		"",
		h.useSecureCookie,
		true,
	)
}

func (h *HttpEndpoints) clearRefreshTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshTokenCookieName, "", -1, "/", "", h.useSecureCookie, true)
}
