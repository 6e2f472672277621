package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context keys set by the middlewares in this package.
const (
	ctxDB           = "db"
	ctxUserID       = "user_id"
	ctxRoleID       = "role_id"
	ctxSessionToken = "session_token"
)

// SessionTokenHeader carries the login session token.
const SessionTokenHeader = "session-token"

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
		h.Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, X-Request-ID, "+SessionTokenHeader)
		h.Set("Access-Control-Expose-Headers", requestIDHeader)
		h.Set("Access-Control-Max-Age", "86400")
		h.Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// DatabaseMiddleware makes db available to handlers through GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxDB, db.WithContext(c.Request.Context()))
		c.Next()
	}
}

// GetDB returns the request scoped database handle, nil if none was set.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(ctxDB)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// GetRoleID returns the authenticated user's role ID.
func GetRoleID(c *gin.Context) (uint32, bool) {
	v, ok := c.Get(ctxRoleID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok && id != 0
}

// GetSessionToken returns the validated session token.
func GetSessionToken(c *gin.Context) string {
	return c.GetString(ctxSessionToken)
}

type sessionIdentity struct {
	UserID    uint
	RoleID    uint32
	ExpiresAt time.Time
}

func lookupSessionInDB(db *gorm.DB, token string) (sessionIdentity, error) {
	var id sessionIdentity
	err := db.Table("sessions").
		Select("sessions.user_id, users.role_id, sessions.expires_at").
		Joins("JOIN users ON users.id = sessions.user_id AND users.deleted_at IS NULL").
		Where("sessions.session_token = ? AND sessions.expires_at > ? AND sessions.deleted_at IS NULL", token, time.Now()).
		Take(&id).Error
	return id, err
}

// ValidateLoginToken authenticates the session-token header. The Redis
// session cache is consulted first, the sessions table second.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionTokenHeader)
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token not provided",
				Err: fmt.Errorf("missing %s header", SessionTokenHeader),
			})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		userID, roleID, cached, err := util.LookupSession(ctx, token)
		if err != nil {
			requestLogger(c).Warn("session cache lookup failed", zap.Error(err))
		}

		if !cached {
			db := GetDB(c)
			if db == nil {
				util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
				c.Abort()
				return
			}
			id, err := lookupSessionInDB(db, token)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					util.CallServerError(c, util.APIErrorParams{Msg: "Failed to validate session", Err: err})
					c.Abort()
					return
				}
				util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "invalid or expired session token")
				util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired session token", Err: err})
				c.Abort()
				return
			}
			userID, roleID = id.UserID, id.RoleID
			if err := util.CacheSession(ctx, token, userID, roleID, time.Until(id.ExpiresAt)); err != nil {
				requestLogger(c).Warn("session cache write failed", zap.Error(err))
			}
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRoleID, roleID)
		c.Set(ctxSessionToken, token)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user has one of roles.
// It must run after ValidateLoginToken.
func RequireRole(roles ...uint32) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, ok := GetRoleID(c)
		if ok {
			for _, r := range roles {
				if r == roleID {
					c.Next()
					return
				}
			}
		}
		userID, _ := GetUserID(c)
		util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.Request.URL.Path, "insufficient role")
		util.CallForbidden(c, util.APIErrorParams{
			Msg: "You are not allowed to access this resource",
			Err: fmt.Errorf("role %d not permitted", roleID),
		})
		c.Abort()
	}
}
