package endpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errTherapistEmailTaken = errors.New("therapist email already registered")

type createTherapistRequest struct {
	FullName    string `json:"full_name" binding:"required" example:"Dr. John Smith"`
	Email       string `json:"email" binding:"required,email" example:"dr.john@example.com"`
	PhoneNumber string `json:"phone_number" binding:"required" example:"081234567890"`
	Address     string `json:"address" example:"123 Main St"`
	Role        string `json:"role" binding:"required" example:"Physical Therapist"`
	IsApproved  bool   `json:"is_approved" example:"true"`
}

type updateTherapistRequest struct {
	FullName    string `json:"full_name" example:"Dr. John Smith"`
	Email       string `json:"email" binding:"omitempty,email" example:"dr.john@example.com"`
	PhoneNumber string `json:"phone_number" example:"081234567890"`
	Address     string `json:"address" example:"123 Main St"`
	Role        string `json:"role" example:"Physical Therapist"`
	IsApproved  *bool  `json:"is_approved" example:"true"`
}

func therapistEmailTaken(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(&model.Therapist{}).Where("LOWER(email) = ? AND id != ?", strings.ToLower(email), excludeID).Count(&count).Error
	return count > 0, err
}

// ListTherapists godoc
// @Summary      List therapists
// @Tags         Therapist
// @Produce      json
// @Security     SessionToken
// @Param        keyword query string false "Case-insensitive search over name or email"
// @Param        approved query bool false "Only approved therapists"
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Therapists retrieved"
// @Router       /therapist [get]
func ListTherapists(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	query := db.Model(&model.Therapist{})
	if kw := c.Query("keyword"); kw != "" {
		pattern := likePattern(kw)
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if c.Query("approved") == "true" {
		query = query.Where("is_approved = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count therapists", Err: err})
		return
	}
	var therapists []model.Therapist
	if err := parsePagination(c).apply(query.Order("full_name ASC")).Find(&therapists).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve therapists", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Therapists retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(therapists), "therapists": therapists},
	})
}

// CreateTherapist godoc
// @Summary      Create therapist
// @Tags         Therapist
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createTherapistRequest true "Therapist information"
// @Success      201 {object} util.APIResponse{data=model.Therapist} "Therapist created"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      409 {object} util.APIResponse "Email already registered"
// @Router       /therapist [post]
func CreateTherapist(c *gin.Context) {
	var req createTherapistRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	therapist := model.Therapist{
		FullName:    util.NormalizeName(req.FullName),
		Email:       strings.TrimSpace(req.Email),
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        req.Role,
		IsApproved:  req.IsApproved,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := therapistEmailTaken(tx, therapist.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return errTherapistEmailTaken
		}
		return tx.Create(&therapist).Error
	})
	if err != nil {
		if errors.Is(err, errTherapistEmailTaken) {
			util.CallConflictError(c, util.APIErrorParams{Msg: "Therapist already registered", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create therapist", Err: err})
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Therapist created", Data: therapist})
}

// UpdateTherapist godoc
// @Summary      Update therapist
// @Tags         Therapist
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapist ID"
// @Param        request body updateTherapistRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Therapist} "Therapist updated"
// @Failure      404 {object} util.APIResponse "Therapist not found"
// @Failure      409 {object} util.APIResponse "Email already registered"
// @Router       /therapist/{id} [patch]
func UpdateTherapist(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapist")
	if !ok {
		return
	}
	var req updateTherapistRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var therapist model.Therapist
	if !findOrRespond(c, db, &therapist, id, "Therapist") {
		return
	}
	if req.Email != "" && !strings.EqualFold(req.Email, therapist.Email) {
		taken, err := therapistEmailTaken(db, req.Email, id)
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
			return
		}
		if taken {
			util.CallConflictError(c, util.APIErrorParams{Msg: "Therapist already registered", Err: errTherapistEmailTaken})
			return
		}
		therapist.Email = strings.TrimSpace(req.Email)
	}
	if req.FullName != "" {
		therapist.FullName = util.NormalizeName(req.FullName)
	}
	if req.PhoneNumber != "" {
		therapist.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		therapist.Address = req.Address
	}
	if req.Role != "" {
		therapist.Role = req.Role
	}
	if req.IsApproved != nil {
		therapist.IsApproved = *req.IsApproved
	}

	if err := db.Save(&therapist).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update therapist", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Therapist updated", Data: therapist})
}

// DeleteTherapist godoc
// @Summary      Delete therapist
// @Description  Soft delete a therapist. Therapists with scheduled sessions cannot be deleted.
// @Tags         Therapist
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapist ID"
// @Success      200 {object} util.APIResponse "Therapist deleted"
// @Failure      404 {object} util.APIResponse "Therapist not found"
// @Failure      409 {object} util.APIResponse "Therapist has scheduled sessions"
// @Router       /therapist/{id} [delete]
func DeleteTherapist(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapist")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var therapist model.Therapist
	if !findOrRespond(c, db, &therapist, id, "Therapist") {
		return
	}
	var scheduled int64
	if err := db.Model(&model.TherapySession{}).
		Where("therapist_id = ? AND status = ?", id, model.SessionScheduled).
		Count(&scheduled).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check therapist sessions", Err: err})
		return
	}
	if scheduled > 0 {
		util.CallConflictError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Therapist has %d scheduled sessions; reassign or cancel them first", scheduled),
			Err: fmt.Errorf("therapist %d has scheduled sessions", id),
		})
		return
	}
	if err := db.Delete(&therapist).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete therapist", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Therapist deleted"})
}
