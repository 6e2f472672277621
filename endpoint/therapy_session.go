package endpoint

import (
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type completeSessionRequest struct {
	VasScoreBefore *int    `json:"vas_score_before" binding:"omitempty,vas" example:"7"`
	VasScoreAfter  *int    `json:"vas_score_after" binding:"omitempty,vas" example:"4"`
	Notes          *string `json:"notes" example:"Good tolerance"`
}

type updateSessionRequest struct {
	SessionDate     *time.Time `json:"session_date" example:"2025-01-23T10:00:00Z"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,gte=1" example:"45"`
	TherapistID     *uint      `json:"therapist_id" example:"2"`
	Notes           *string    `json:"notes" example:"Moved at patient's request"`
}

func (r *updateSessionRequest) reschedules() bool {
	return r.SessionDate != nil || r.DurationMinutes != nil || r.TherapistID != nil
}

// parseDateRange reads optional from/to (YYYY-MM-DD) query values; to is inclusive.
func parseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		d, perr := time.ParseInLocation(dateLayout, s, time.Local)
		if perr != nil {
			return nil, nil, fmt.Errorf("from must be YYYY-MM-DD: %w", perr)
		}
		from = &d
	}
	if s := c.Query("to"); s != "" {
		d, perr := time.ParseInLocation(dateLayout, s, time.Local)
		if perr != nil {
			return nil, nil, fmt.Errorf("to must be YYYY-MM-DD: %w", perr)
		}
		d = d.AddDate(0, 0, 1)
		to = &d
	}
	return from, to, nil
}

// ListSessions godoc
// @Summary      List therapy sessions
// @Tags         Session
// @Produce      json
// @Security     SessionToken
// @Param        therapy_id query int false "Filter by therapy"
// @Param        therapist_id query int false "Filter by therapist"
// @Param        status query string false "SCHEDULED|COMPLETED|CANCELLED"
// @Param        from query string false "First day, YYYY-MM-DD"
// @Param        to query string false "Last day (inclusive), YYYY-MM-DD"
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Sessions retrieved"
// @Failure      400 {object} util.APIResponse "Invalid filter"
// @Router       /session [get]
func ListSessions(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Model(&model.TherapySession{})
	if tid := parseUintQuery(c, "therapy_id"); tid > 0 {
		query = query.Where("therapy_id = ?", tid)
	}
	if tid := parseUintQuery(c, "therapist_id"); tid > 0 {
		query = query.Where("therapist_id = ?", tid)
	}
	if s := c.Query("status"); s != "" {
		status := model.SessionStatus(s)
		if !status.IsValid() {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid session status", Err: fmt.Errorf("unknown status %q", s)})
			return
		}
		query = query.Where("status = ?", status)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid date filter", Err: err})
		return
	}
	if from != nil {
		query = query.Where("session_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("session_date < ?", *to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count sessions", Err: err})
		return
	}
	var sessions []model.TherapySession
	if err := parsePagination(c).apply(query.Preload("Therapist").Order("session_date ASC, therapy_id ASC, session_number ASC")).Find(&sessions).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve sessions", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Sessions retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(sessions), "sessions": sessions},
	})
}

// GetSession godoc
// @Summary      Get a therapy session
// @Tags         Session
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Session ID"
// @Success      200 {object} util.APIResponse{data=model.TherapySession} "Session retrieved"
// @Failure      404 {object} util.APIResponse "Session not found"
// @Router       /session/{id} [get]
func GetSession(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "session")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var session model.TherapySession
	if !findOrRespond(c, db.Preload("Therapist"), &session, id, "Session") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Session retrieved", Data: session})
}

// UpdateSession godoc
// @Summary      Update a therapy session
// @Description  Notes can change at any time; date, duration and therapist only while the session is SCHEDULED
// @Tags         Session
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Session ID"
// @Param        request body updateSessionRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.TherapySession} "Session updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Session or therapist not found"
// @Failure      409 {object} util.APIResponse "Session is no longer scheduled"
// @Router       /session/{id} [patch]
func UpdateSession(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "session")
	if !ok {
		return
	}
	var req updateSessionRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var session model.TherapySession
	if !findOrRespond(c, db, &session, id, "Session") {
		return
	}
	if req.TherapistID != nil {
		var therapist model.Therapist
		if !findOrRespond(c, db, &therapist, *req.TherapistID, "Therapist") {
			return
		}
	}

	fields := map[string]interface{}{}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.SessionDate != nil {
		fields["session_date"] = *req.SessionDate
	}
	if req.DurationMinutes != nil {
		fields["duration_minutes"] = *req.DurationMinutes
	}
	if req.TherapistID != nil {
		fields["therapist_id"] = *req.TherapistID
	}
	if len(fields) == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "No fields to update", Err: fmt.Errorf("empty update")})
		return
	}

	query := db.Model(&model.TherapySession{}).Where("id = ?", id)
	if req.reschedules() {
		query = query.Where("status = ?", model.SessionScheduled)
	}
	res := query.Updates(fields)
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update session", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallConflictError(c, util.APIErrorParams{
			Msg: "Only scheduled sessions can be rescheduled",
			Err: fmt.Errorf("session %d is %s", id, session.Status),
		})
		return
	}

	if err := db.Preload("Therapist").First(&session, id).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve session", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Session updated", Data: session})
}

// CompleteSession godoc
// @Summary      Complete a therapy session
// @Description  Record VAS scores (0..10) and mark a scheduled session completed; the therapy counter advances in the same transaction
// @Tags         Session
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Session ID"
// @Param        request body completeSessionRequest true "Outcome"
// @Success      200 {object} util.APIResponse{data=model.TherapySession} "Session completed"
// @Failure      400 {object} util.APIResponse "Invalid VAS score"
// @Failure      404 {object} util.APIResponse "Session not found"
// @Failure      409 {object} util.APIResponse "Session not scheduled, therapy suspended, or concurrent update"
// @Router       /session/{id}/complete [post]
func CompleteSession(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "session")
	if !ok {
		return
	}
	var req completeSessionRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var opts []tracker.CompleteOption
	if req.Notes != nil {
		opts = append(opts, tracker.WithSessionNotes(*req.Notes))
	}
	session, err := trackerFor(c, db).CompleteSession(c.Request.Context(), id, req.VasScoreBefore, req.VasScoreAfter, opts...)
	if err != nil {
		respondTrackerError(c, err, "Failed to complete session")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Session completed", Data: session})
}

// CancelSession godoc
// @Summary      Cancel a therapy session
// @Description  Cancel a scheduled session. Its number is kept and its prescription slot is freed.
// @Tags         Session
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Session ID"
// @Success      200 {object} util.APIResponse{data=model.TherapySession} "Session cancelled"
// @Failure      404 {object} util.APIResponse "Session not found"
// @Failure      409 {object} util.APIResponse "Session is not scheduled"
// @Router       /session/{id}/cancel [post]
func CancelSession(c *gin.Context) {
	id, ok := parseIDOrRespond(c, "session")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	session, err := trackerFor(c, db).CancelSession(c.Request.Context(), id)
	if err != nil {
		respondTrackerError(c, err, "Failed to cancel session")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Session cancelled", Data: session})
}
