package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	usermanagement "github.com/Tolpa-999/PerfumBackend/pkg/user-management"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	userService     *usermanagement.Service
	tokenSignKey    string
	refreshTokenTTL time.Duration
	useSecureCookie bool
}

func NewHTTPHandler(
	tokenSignKey string,
	userService *usermanagement.Service,
	refreshTokenTTL time.Duration,
	useSecureCookie bool,
) *HttpEndpoints {
	return &HttpEndpoints{
		userService:     userService,
		tokenSignKey:    tokenSignKey,
		refreshTokenTTL: refreshTokenTTL,
		useSecureCookie: useSecureCookie,
	}
}
