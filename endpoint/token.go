package endpoint

import (
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-therapy/middleware"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenInfo describes a valid session.
type TokenInfo struct {
	UserID    uint      `json:"user_id" example:"1"`
	Email     string    `json:"email" example:"user@example.com"`
	Role      string    `json:"role" example:"Admin"`
	RoleID    uint32    `json:"role_id" example:"1"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidateToken godoc
// @Summary      Validate session token
// @Description  Validate if the session token is valid and not expired
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=TokenInfo} "Valid session token"
// @Failure      401 {object} util.APIResponse "Invalid or expired session token"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /token/validate [get]
func ValidateToken(c *gin.Context) {
	token := c.GetHeader(middleware.SessionTokenHeader)
	if token == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid session token", Err: fmt.Errorf("session token not provided")})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var info TokenInfo
	err := db.Table("sessions").
		Select("users.id AS user_id, users.email, roles.name AS role, users.role_id, sessions.expires_at").
		Joins("JOIN users ON sessions.user_id = users.id AND users.deleted_at IS NULL").
		Joins("JOIN roles ON users.role_id = roles.id").
		Where("sessions.session_token = ? AND sessions.expires_at > ? AND sessions.deleted_at IS NULL", token, time.Now()).
		Take(&info).Error
	if err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Valid session token", Data: info})
}

// RefreshToken godoc
// @Summary      Refresh session token
// @Description  Issue a new session token and revoke the current one
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Token refreshed"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /token/refresh [post]
func RefreshToken(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)
	oldToken := middleware.GetSessionToken(c)

	var user model.User
	if !findOrRespond(c, db, &user, userID, "User") {
		return
	}
	role, err := fetchRole(db, user.RoleID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve role", Err: err})
		return
	}

	session, err := issueSession(c, db, &user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to refresh session", Err: err})
		return
	}
	if err := db.Where("session_token = ?", oldToken).Delete(&model.Session{}).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to revoke previous session", Err: err})
		return
	}
	if err := util.RemoveSession(c.Request.Context(), user.ID, oldToken); err != nil {
		middleware.Logger(c).Warn("failed to remove cached session", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Token refreshed",
		Data: LoginResponse{Token: session.SessionToken, Role: role.Name, UserID: user.ID},
	})
}
