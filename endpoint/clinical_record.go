package endpoint

import (
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-therapy/middleware"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createRecordRequest struct {
	PatientID uint       `json:"patient_id" binding:"required" example:"1"`
	Diagnosis string     `json:"diagnosis" binding:"required,max=255" example:"Lumbar disc herniation"`
	Notes     string     `json:"notes" example:"Pain radiating to the left leg"`
	OpenedAt  *time.Time `json:"opened_at" example:"2025-01-15T09:00:00Z"`
}

type updateRecordRequest struct {
	Diagnosis string  `json:"diagnosis" binding:"omitempty,max=255" example:"Lumbar disc herniation L4-L5"`
	Notes     *string `json:"notes" example:"MRI confirmed"`
}

// ListClinicalRecords godoc
// @Summary      List clinical records
// @Tags         ClinicalRecord
// @Produce      json
// @Security     SessionToken
// @Param        patient_id query int false "Filter by patient"
// @Param        active query bool false "Filter by open (true) or closed (false) records"
// @Param        keyword query string false "Case-insensitive search over the diagnosis"
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Clinical records retrieved"
// @Router       /record [get]
func ListClinicalRecords(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Model(&model.ClinicalRecord{})
	if pid := parseUintQuery(c, "patient_id"); pid > 0 {
		query = query.Where("patient_id = ?", pid)
	}
	switch c.Query("active") {
	case "true":
		query = query.Where("is_active = ?", true)
	case "false":
		query = query.Where("is_active = ?", false)
	}
	if kw := c.Query("keyword"); kw != "" {
		query = query.Where("LOWER(diagnosis) LIKE ?", likePattern(kw))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count clinical records", Err: err})
		return
	}
	var records []model.ClinicalRecord
	if err := parsePagination(c).apply(query.Preload("Patient").Order("opened_at DESC, id DESC")).Find(&records).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve clinical records", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Clinical records retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(records), "records": records},
	})
}

// CreateClinicalRecord godoc
// @Summary      Open a clinical record
// @Tags         ClinicalRecord
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createRecordRequest true "Clinical record"
// @Success      201 {object} util.APIResponse{data=model.ClinicalRecord} "Clinical record created"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /record [post]
func CreateClinicalRecord(c *gin.Context) {
	var req createRecordRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	if !findOrRespond(c, db, &patient, req.PatientID, "Patient") {
		return
	}

	openedAt := time.Now().Truncate(time.Second)
	if req.OpenedAt != nil {
		openedAt = *req.OpenedAt
	}
	record := model.ClinicalRecord{
		PatientID: patient.ID,
		Diagnosis: req.Diagnosis,
		Notes:     req.Notes,
		IsActive:  true,
		OpenedAt:  openedAt,
	}
	if err := db.Create(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create clinical record", Err: err})
		return
	}

	userID, _ := middleware.GetUserID(c)
	util.LogAuditEvent(util.AuditEntry{
		EventType:  "RECORD_OPENED",
		UserID:     userID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		EntityType: "clinical_record",
		EntityID:   record.ID,
		Message:    fmt.Sprintf("clinical record opened for patient %s", patient.PatientCode),
	})
	util.CallCreated(c, util.APISuccessParams{Msg: "Clinical record created", Data: record})
}

// GetClinicalRecord godoc
// @Summary      Get a clinical record
// @Description  Get a clinical record with its patient and therapies
// @Tags         ClinicalRecord
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Clinical record ID"
// @Success      200 {object} util.APIResponse{data=model.ClinicalRecord} "Clinical record retrieved"
// @Failure      404 {object} util.APIResponse "Clinical record not found"
// @Router       /record/{id} [get]
func GetClinicalRecord(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "clinical record")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var record model.ClinicalRecord
	q := db.Preload("Patient").
		Preload("Therapies", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Therapies.TherapyType")
	if !findOrRespond(c, q, &record, id, "Clinical record") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Clinical record retrieved", Data: record})
}

// UpdateClinicalRecord godoc
// @Summary      Update a clinical record
// @Description  Update the diagnosis or notes of an open clinical record
// @Tags         ClinicalRecord
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Clinical record ID"
// @Param        request body updateRecordRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.ClinicalRecord} "Clinical record updated"
// @Failure      404 {object} util.APIResponse "Clinical record not found"
// @Failure      409 {object} util.APIResponse "Clinical record is closed"
// @Router       /record/{id} [patch]
func UpdateClinicalRecord(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "clinical record")
	if !ok {
		return
	}
	var req updateRecordRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var record model.ClinicalRecord
	if !findOrRespond(c, db, &record, id, "Clinical record") {
		return
	}
	if !record.IsActive {
		util.CallConflictError(c, util.APIErrorParams{Msg: "Clinical record is closed", Err: fmt.Errorf("clinical record %d is closed", id)})
		return
	}
	if req.Diagnosis != "" {
		record.Diagnosis = req.Diagnosis
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if err := db.Save(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update clinical record", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Clinical record updated", Data: record})
}

// CloseClinicalRecord godoc
// @Summary      Close a clinical record
// @Description  Close a record; its scheduled or in-progress therapies are suspended
// @Tags         ClinicalRecord
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Clinical record ID"
// @Success      200 {object} util.APIResponse{data=model.ClinicalRecord} "Clinical record closed"
// @Failure      404 {object} util.APIResponse "Clinical record not found"
// @Failure      409 {object} util.APIResponse "Clinical record already closed"
// @Router       /record/{id}/close [post]
func CloseClinicalRecord(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "clinical record")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	record, err := trackerFor(c, db).CloseRecord(c.Request.Context(), id)
	if err != nil {
		respondTrackerError(c, err, "Failed to close clinical record")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Clinical record closed", Data: record})
}
