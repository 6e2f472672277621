package endpoint

import (
	"errors"
	"fmt"

	"github.com/ariebrainware/clinic-therapy/middleware"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUserEmailAlreadyExists = errors.New("email already exists")

type UpdateUserRequest struct {
	Name     string `json:"name" example:"John Doe"`
	Email    string `json:"email" binding:"omitempty,email" example:"john@example.com"`
	Password string `json:"password" binding:"omitempty,min=8" example:"newpassword123"`
}

// AdminUpdateUserRequest additionally lets admins change a user's role.
type AdminUpdateUserRequest struct {
	UpdateUserRequest
	RoleID uint32 `json:"role_id" binding:"omitempty,oneof=1 2 3" example:"2"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required" example:"Jane Roe"`
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
	RoleID   uint32 `json:"role_id" binding:"required,oneof=1 2 3" example:"3"`
}

func (r *UpdateUserRequest) empty() bool {
	return r.Name == "" && r.Email == "" && r.Password == ""
}

func emailExists(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ? AND id != ?", email, excludeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func hashUserPassword(user *model.User, plain string) error {
	salt, err := util.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate password salt: %w", err)
	}
	hashed, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed
	user.PasswordSalt = salt
	return nil
}

// applyUserUpdate mutates user from req and reports whether the password changed.
func applyUserUpdate(db *gorm.DB, user *model.User, req *UpdateUserRequest) (bool, error) {
	if req.Email != "" && req.Email != user.Email {
		exists, err := emailExists(db, req.Email, user.ID)
		if err != nil {
			return false, fmt.Errorf("failed to validate email uniqueness: %w", err)
		}
		if exists {
			return false, ErrUserEmailAlreadyExists
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Password == "" {
		return false, nil
	}
	if err := hashUserPassword(user, req.Password); err != nil {
		return false, err
	}
	return true, nil
}

// invalidateUserSessions drops every session of the user from the DB and Redis.
func invalidateUserSessions(c *gin.Context, db *gorm.DB, userID uint) {
	if err := db.Where("user_id = ?", userID).Delete(&model.Session{}).Error; err != nil {
		middleware.Logger(c).Warn("failed to delete user sessions", zap.Uint("user_id", userID), zap.Error(err))
	}
	if err := util.InvalidateUserSessions(c.Request.Context(), userID); err != nil {
		middleware.Logger(c).Warn("failed to invalidate cached sessions", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func saveUserOrRespond(c *gin.Context, db *gorm.DB, user *model.User, req *UpdateUserRequest, forceLogout bool) {
	passwordChanged, err := applyUserUpdate(db, user, req)
	if err != nil {
		if errors.Is(err, ErrUserEmailAlreadyExists) {
			util.CallConflictError(c, util.APIErrorParams{Msg: "Email already exists", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update user fields", Err: err})
		return
	}
	if err := db.Save(user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update user", Err: err})
		return
	}
	util.UserEmailCacheSet(user.ID, user.Email)

	if passwordChanged {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventPasswordChanged,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   "Password changed",
		})
	}
	if passwordChanged || forceLogout {
		invalidateUserSessions(c, db, user.ID)
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User updated successfully", Data: user})
}

// UpdateUser godoc
// @Summary      Update current user profile
// @Description  Update authenticated user's name, email, and/or password
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body UpdateUserRequest true "Update details"
// @Success      200 {object} util.APIResponse{data=model.User} "Update successful"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      409 {object} util.APIResponse "Email already exists"
// @Router       /user [patch]
func UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.empty() {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "At least one field (name, email, or password) must be provided",
			Err: fmt.Errorf("no fields to update"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	var user model.User
	if !findOrRespond(c, db, &user, userID, "User") {
		return
	}
	saveUserOrRespond(c, db, &user, &req, false)
}

// ListUsers godoc
// @Summary      List users (admin only)
// @Description  Cursor-paginated list of users, optionally filtered by name or email
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results (default 10, max 100)"
// @Param        cursor query int false "Cursor for pagination (User ID)"
// @Param        keyword query string false "Search keyword for name or email"
// @Success      200 {object} util.APIResponse{data=object} "Users retrieved"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Router       /user [get]
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	limit := parsePositiveInt(c.Query("limit"), 10, 100)
	cursor := parseUintQuery(c, "cursor")

	query := db.Model(&model.User{})
	if kw := c.Query("keyword"); kw != "" {
		pattern := likePattern(kw)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count users", Err: err})
		return
	}

	if cursor > 0 {
		query = query.Where("id > ?", cursor)
	}
	var users []model.User
	if err := query.Order("id ASC").Limit(limit + 1).Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve users", Err: err})
		return
	}

	hasMore := len(users) > limit
	var nextCursor *uint
	if hasMore {
		users = users[:limit]
		lastID := users[len(users)-1].ID
		nextCursor = &lastID
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Users retrieved",
		Data: map[string]interface{}{
			"users":         users,
			"total":         total,
			"total_fetched": len(users),
			"has_more":      hasMore,
			"next_cursor":   nextCursor,
		},
	})
}

// CreateUser godoc
// @Summary      Create user (admin only)
// @Description  Create a staff account with the given role
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body CreateUserRequest true "User details"
// @Success      201 {object} util.APIResponse{data=model.User} "User created"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      409 {object} util.APIResponse "Email already exists"
// @Router       /user [post]
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	exists, err := emailExists(db, req.Email, 0)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}
	if exists {
		util.CallConflictError(c, util.APIErrorParams{Msg: "Email already exists", Err: ErrUserEmailAlreadyExists})
		return
	}

	user := model.User{Name: req.Name, Email: req.Email, RoleID: req.RoleID}
	if err := hashUserPassword(&user, req.Password); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return
	}
	if err := db.Create(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	adminID, _ := middleware.GetUserID(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventUserCreated,
		UserID:    fmt.Sprintf("%d", adminID),
		Email:     user.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   fmt.Sprintf("User %d created with role %d", user.ID, user.RoleID),
	})
	util.CallCreated(c, util.APISuccessParams{Msg: "User created", Data: user})
}

// GetUserInfo godoc
// @Summary      Get user info (admin only)
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse{data=model.User} "User retrieved"
// @Failure      400 {object} util.APIResponse "Invalid user id"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /user/{id} [get]
func GetUserInfo(c *gin.Context) {
	uid, ok := parseIDOrRespond(c, "user")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var user model.User
	if !findOrRespond(c, db, &user, uid, "User") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User retrieved", Data: user})
}

// UpdateUserByID godoc
// @Summary      Update another user (admin only)
// @Description  Admins can change a user's name, email, password and role. A role change logs the user out.
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "User ID"
// @Param        request body AdminUpdateUserRequest true "Update details"
// @Success      200 {object} util.APIResponse{data=model.User} "Update successful"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      409 {object} util.APIResponse "Email already exists"
// @Router       /user/{id} [patch]
func UpdateUserByID(c *gin.Context) {
	uid, ok := parseIDOrRespond(c, "user")
	if !ok {
		return
	}
	var req AdminUpdateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.empty() && req.RoleID == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "At least one field (name, email, password, or role_id) must be provided",
			Err: fmt.Errorf("no fields to update"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	if !findOrRespond(c, db, &user, uid, "User") {
		return
	}
	roleChanged := req.RoleID != 0 && req.RoleID != user.RoleID
	if roleChanged {
		user.RoleID = req.RoleID
	}
	saveUserOrRespond(c, db, &user, &req.UpdateUserRequest, roleChanged)
}

// DeleteUser godoc
// @Summary      Delete user (admin only)
// @Description  Soft-delete a user and revoke all of their sessions
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User deleted"
// @Failure      400 {object} util.APIResponse "Invalid user id or deleting self"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /user/{id} [delete]
func DeleteUser(c *gin.Context) {
	uid, ok := parseIDOrRespond(c, "user")
	if !ok {
		return
	}
	adminID, _ := middleware.GetUserID(c)
	if uid == adminID {
		util.CallUserError(c, util.APIErrorParams{Msg: "You cannot delete your own account", Err: fmt.Errorf("self deletion")})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, uid).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", uid).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: err})
		return
	}

	if err := util.InvalidateUserSessions(c.Request.Context(), uid); err != nil {
		middleware.Logger(c).Warn("failed to invalidate cached sessions", zap.Uint("user_id", uid), zap.Error(err))
	}
	util.UserEmailCacheDelete(uid)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventUserDeleted,
		UserID:    fmt.Sprintf("%d", adminID),
		Email:     user.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   fmt.Sprintf("User %d deleted", uid),
	})
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User deleted"})
}
