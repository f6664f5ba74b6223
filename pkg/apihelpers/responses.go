package apihelpers

import (
	"github.com/gin-gonic/gin"
)

// Response status values used in every JSON body.
const (
	RESPONSE_STATUS_SUCCESS = "success"
	RESPONSE_STATUS_FAIL    = "fail"
	RESPONSE_STATUS_ERROR   = "error"
)

// SendSuccess writes a success envelope, merging extra fields into the body.
func SendSuccess(c *gin.Context, httpStatus int, message string, extra gin.H) {
	body := gin.H{
		"status":  RESPONSE_STATUS_SUCCESS,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// SendFail writes a client error envelope (validation problems, bad
// credentials, expired tokens).
func SendFail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{
		"status":  RESPONSE_STATUS_FAIL,
		"message": message,
	})
}

// SendError writes a server error envelope without leaking details.
func SendError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{
		"status":  RESPONSE_STATUS_ERROR,
		"message": message,
	})
}
