package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
)

type prescribeRequest struct {
	ClinicalRecordID   uint   `json:"clinical_record_id" binding:"required" example:"1"`
	TherapyTypeID      uint   `json:"therapy_type_id" binding:"required" example:"2"`
	PrescribedSessions int    `json:"prescribed_sessions" binding:"gte=0" example:"10"`
	Frequency          string `json:"frequency" binding:"max=64" example:"2x/week"`
	District           string `json:"district" binding:"max=64" example:"lumbar"`
	Notes              string `json:"notes" example:"Avoid heat on the left knee"`
}

type updateTherapyRequest struct {
	PrescribedSessions *int    `json:"prescribed_sessions" binding:"omitempty,gte=1" example:"12"`
	Frequency          *string `json:"frequency" binding:"omitempty,max=64" example:"3x/week"`
	District           *string `json:"district" binding:"omitempty,max=64" example:"cervical"`
	Notes              *string `json:"notes" example:"Progressing well"`
}

type scheduleSessionsRequest struct {
	Count           int       `json:"count" binding:"required,gte=1,lte=100" example:"5"`
	StartDate       time.Time `json:"start_date" binding:"required" example:"2025-01-20T09:00:00Z"`
	CadenceDays     int       `json:"cadence_days" binding:"gte=0" example:"3"`
	DurationMinutes int       `json:"duration_minutes" binding:"gte=0" example:"30"`
	TherapistID     *uint     `json:"therapist_id" example:"1"`
}

// ListTherapies godoc
// @Summary      List therapies
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Param        record_id query int false "Filter by clinical record"
// @Param        patient_id query int false "Filter by patient"
// @Param        status query string false "SCHEDULED|IN_PROGRESS|COMPLETED|SUSPENDED"
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Therapies retrieved"
// @Failure      400 {object} util.APIResponse "Invalid status"
// @Router       /therapy [get]
func ListTherapies(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Model(&model.Therapy{})
	if rid := parseUintQuery(c, "record_id"); rid > 0 {
		query = query.Where("therapies.clinical_record_id = ?", rid)
	}
	if pid := parseUintQuery(c, "patient_id"); pid > 0 {
		query = query.Joins("JOIN clinical_records ON clinical_records.id = therapies.clinical_record_id").
			Where("clinical_records.patient_id = ?", pid)
	}
	if s := c.Query("status"); s != "" {
		status := model.TherapyStatus(s)
		if !status.IsValid() {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid therapy status", Err: fmt.Errorf("unknown status %q", s)})
			return
		}
		query = query.Where("therapies.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count therapies", Err: err})
		return
	}
	var therapies []model.Therapy
	if err := parsePagination(c).apply(query.Preload("TherapyType").Order("therapies.id DESC")).Find(&therapies).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve therapies", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Therapies retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(therapies), "therapies": therapies},
	})
}

// CreateTherapy godoc
// @Summary      Prescribe a therapy
// @Description  Prescribe a therapy on an open clinical record. prescribed_sessions 0 uses the therapy type default.
// @Tags         Therapy
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body prescribeRequest true "Prescription"
// @Success      201 {object} util.APIResponse{data=model.Therapy} "Therapy prescribed"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Clinical record or therapy type not found"
// @Failure      409 {object} util.APIResponse "Clinical record is closed"
// @Router       /therapy [post]
func CreateTherapy(c *gin.Context) {
	var req prescribeRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	th, err := trackerFor(c, db).Prescribe(c.Request.Context(), tracker.PrescribeRequest{
		ClinicalRecordID:   req.ClinicalRecordID,
		TherapyTypeID:      req.TherapyTypeID,
		PrescribedSessions: req.PrescribedSessions,
		Frequency:          req.Frequency,
		District:           req.District,
		Notes:              req.Notes,
	})
	if err != nil {
		respondTrackerError(c, err, "Failed to prescribe therapy")
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Therapy prescribed", Data: th})
}

// GetTherapy godoc
// @Summary      Get a therapy
// @Description  Get a therapy with its type and sessions ordered by number
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Success      200 {object} util.APIResponse{data=model.Therapy} "Therapy retrieved"
// @Failure      404 {object} util.APIResponse "Therapy not found"
// @Router       /therapy/{id} [get]
func GetTherapy(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapy")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	th, err := trackerFor(c, db).GetTherapy(c.Request.Context(), id)
	if err != nil {
		respondTrackerError(c, err, "Failed to retrieve therapy")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Therapy retrieved", Data: th})
}

// UpdateTherapy godoc
// @Summary      Update a therapy
// @Description  Change the prescribed session count and descriptive fields. The count cannot drop below completed plus scheduled sessions.
// @Tags         Therapy
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Param        request body updateTherapyRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Therapy} "Therapy updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Therapy not found"
// @Failure      409 {object} util.APIResponse "Concurrent update"
// @Router       /therapy/{id} [patch]
func UpdateTherapy(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapy")
	if !ok {
		return
	}
	var req updateTherapyRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	tr := trackerFor(c, db)
	ctx := c.Request.Context()
	if _, err := tr.UpdateTherapy(ctx, id, tracker.TherapyUpdate{
		PrescribedSessions: req.PrescribedSessions,
		Frequency:          req.Frequency,
		District:           req.District,
		Notes:              req.Notes,
	}); err != nil {
		respondTrackerError(c, err, "Failed to update therapy")
		return
	}

	th, err := tr.GetTherapy(ctx, id)
	if err != nil {
		respondTrackerError(c, err, "Failed to retrieve therapy")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Therapy updated", Data: th})
}

// ScheduleTherapySessions godoc
// @Summary      Schedule sessions
// @Description  Append sessions numbered after the current highest number, spaced cadence_days apart
// @Tags         Therapy
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Param        request body scheduleSessionsRequest true "Schedule"
// @Success      201 {object} util.APIResponse{data=[]model.TherapySession} "Sessions scheduled"
// @Failure      400 {object} util.APIResponse "Invalid request or prescription exceeded"
// @Failure      404 {object} util.APIResponse "Therapy or therapist not found"
// @Failure      409 {object} util.APIResponse "Therapy completed or suspended"
// @Router       /therapy/{id}/sessions [post]
func ScheduleTherapySessions(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapy")
	if !ok {
		return
	}
	var req scheduleSessionsRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	if req.TherapistID != nil {
		var therapist model.Therapist
		if !findOrRespond(c, db, &therapist, *req.TherapistID, "Therapist") {
			return
		}
	}

	sessions, err := trackerFor(c, db).ScheduleSessions(c.Request.Context(), tracker.ScheduleRequest{
		TherapyID:       id,
		Count:           req.Count,
		StartDate:       req.StartDate,
		CadenceDays:     req.CadenceDays,
		DurationMinutes: req.DurationMinutes,
		TherapistID:     req.TherapistID,
	})
	if err != nil {
		respondTrackerError(c, err, "Failed to schedule sessions")
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Sessions scheduled", Data: sessions})
}

// GetTherapyProgress godoc
// @Summary      Therapy progress
// @Description  Session counts by status and the average VAS improvement over scored sessions
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Success      200 {object} util.APIResponse{data=tracker.Summary} "Progress retrieved"
// @Failure      404 {object} util.APIResponse "Therapy not found"
// @Router       /therapy/{id}/progress [get]
func GetTherapyProgress(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapy")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	summary, err := trackerFor(c, db).ProgressSummary(c.Request.Context(), id)
	if err != nil {
		respondTrackerError(c, err, "Failed to compute progress")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Progress retrieved", Data: summary})
}

// SuspendTherapy godoc
// @Summary      Suspend a therapy
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Success      200 {object} util.APIResponse{data=model.Therapy} "Therapy suspended"
// @Failure      404 {object} util.APIResponse "Therapy not found"
// @Failure      409 {object} util.APIResponse "Therapy cannot be suspended"
// @Router       /therapy/{id}/suspend [post]
func SuspendTherapy(c *gin.Context) {
	transitionTherapy(c, (*tracker.Tracker).Suspend, "Therapy suspended")
}

// ResumeTherapy godoc
// @Summary      Resume a therapy
// @Description  Resume a suspended therapy; its status is recomputed from completed sessions
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Success      200 {object} util.APIResponse{data=model.Therapy} "Therapy resumed"
// @Failure      404 {object} util.APIResponse "Therapy not found"
// @Failure      409 {object} util.APIResponse "Therapy is not suspended"
// @Router       /therapy/{id}/resume [post]
func ResumeTherapy(c *gin.Context) {
	transitionTherapy(c, (*tracker.Tracker).Resume, "Therapy resumed")
}

func transitionTherapy(c *gin.Context, op func(*tracker.Tracker, context.Context, uint) (*model.Therapy, error), msg string) {
	id, ok := parseIDOrRespond(c, "therapy")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	th, err := op(trackerFor(c, db), c.Request.Context(), id)
	if err != nil {
		respondTrackerError(c, err, "Failed to change therapy status")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: msg, Data: th})
}

// GetTherapyHistory godoc
// @Summary      Therapy audit history
// @Description  Audited changes to a therapy and its sessions, newest first
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Therapy ID"
// @Param        limit query int false "Limit number of results (default 50, max 200)"
// @Success      200 {object} util.APIResponse{data=[]model.SecurityLog} "History retrieved"
// @Failure      404 {object} util.APIResponse "Therapy not found"
// @Router       /therapy/{id}/history [get]
func GetTherapyHistory(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "therapy")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var th model.Therapy
	if !findOrRespond(c, db, &th, id, "Therapy") {
		return
	}
	events, err := util.ListEntityEvents(db, "therapy", id, parsePositiveInt(c.Query("limit"), 50, 200))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve therapy history", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "History retrieved", Data: events})
}
