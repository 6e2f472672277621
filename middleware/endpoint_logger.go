package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger records every state changing request as an
// ENDPOINT_CALL security event. Reads are left to RequestLogger.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		status := c.Writer.Status()
		userID, _ := GetUserID(c)
		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  GetRequestID(c),
		}
		if roleID, ok := GetRoleID(c); ok {
			details["role_id"] = roleID
		}

		var uid string
		if userID != 0 {
			uid = fmt.Sprintf("%d", userID)
		}
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    uid,
			Email:     util.GetUserEmail(GetDB(c), userID),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
