package endpoint

import (
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardStats is the clinic overview.
type DashboardStats struct {
	Patients          int64            `json:"patients" example:"120"`
	ActiveRecords     int64            `json:"active_records" example:"35"`
	TherapiesByStatus map[string]int64 `json:"therapies_by_status"`
	SessionsByStatus  map[string]int64 `json:"sessions_by_status"`
	SessionsToday     int64            `json:"sessions_today" example:"14"`
	ScheduledToday    int64            `json:"scheduled_today" example:"9"`
}

// ActivityItem is a completed or cancelled session in the activity feed.
type ActivityItem struct {
	SessionID      uint       `json:"session_id" example:"42"`
	SessionNumber  int        `json:"session_number" example:"3"`
	Status         string     `json:"status" example:"COMPLETED"`
	TherapyID      uint       `json:"therapy_id" example:"7"`
	TherapyType    string     `json:"therapy_type" example:"TECAR"`
	PatientID      uint       `json:"patient_id" example:"1"`
	PatientName    string     `json:"patient_name" example:"John Doe"`
	PatientCode    string     `json:"patient_code" example:"J12"`
	TherapistName  *string    `json:"therapist_name" example:"Dr. John Smith"`
	VasScoreBefore *int       `json:"vas_score_before" example:"7"`
	VasScoreAfter  *int       `json:"vas_score_after" example:"4"`
	CompletedAt    *time.Time `json:"-"`
	CancelledAt    *time.Time `json:"-"`
	OccurredAt     *time.Time `json:"occurred_at"`
}

type statusTotal struct {
	Status string
	Total  int64
}

func countByStatus(db *gorm.DB, m interface{}) (map[string]int64, error) {
	var rows []statusTotal
	if err := db.Model(m).Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func loadDashboardStats(db *gorm.DB, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	if err := db.Model(&model.Patient{}).Count(&stats.Patients).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.ClinicalRecord{}).Where("is_active = ?", true).Count(&stats.ActiveRecords).Error; err != nil {
		return stats, err
	}
	var err error
	if stats.TherapiesByStatus, err = countByStatus(db, &model.Therapy{}); err != nil {
		return stats, err
	}
	if stats.SessionsByStatus, err = countByStatus(db, &model.TherapySession{}); err != nil {
		return stats, err
	}

	start, end := dayBounds(now)
	today := func() *gorm.DB {
		return db.Model(&model.TherapySession{}).Where("session_date >= ? AND session_date < ?", start, end)
	}
	if err := today().Where("status <> ?", model.SessionCancelled).Count(&stats.SessionsToday).Error; err != nil {
		return stats, err
	}
	if err := today().Where("status = ?", model.SessionScheduled).Count(&stats.ScheduledToday).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// GetDashboardStats godoc
// @Summary      Dashboard statistics
// @Description  Patient and record counts, therapies and sessions by status, and today's sessions
// @Tags         Dashboard
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=DashboardStats} "Statistics retrieved"
// @Router       /dashboard/stats [get]
func GetDashboardStats(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	stats, err := loadDashboardStats(db, time.Now())
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute dashboard statistics", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Statistics retrieved", Data: stats})
}

func loadRecentActivity(db *gorm.DB, limit int) ([]ActivityItem, error) {
	var items []ActivityItem
	err := db.Table("therapy_sessions").
		Select(`therapy_sessions.id AS session_id, therapy_sessions.session_number, therapy_sessions.status,
			therapies.id AS therapy_id, therapy_types.code AS therapy_type,
			patients.id AS patient_id, patients.full_name AS patient_name, patients.patient_code,
			therapists.full_name AS therapist_name,
			therapy_sessions.vas_score_before, therapy_sessions.vas_score_after,
			therapy_sessions.completed_at, therapy_sessions.cancelled_at`).
		Joins("JOIN therapies ON therapies.id = therapy_sessions.therapy_id").
		Joins("JOIN therapy_types ON therapy_types.id = therapies.therapy_type_id").
		Joins("JOIN clinical_records ON clinical_records.id = therapies.clinical_record_id").
		Joins("JOIN patients ON patients.id = clinical_records.patient_id").
		Joins("LEFT JOIN therapists ON therapists.id = therapy_sessions.therapist_id").
		Where("therapy_sessions.deleted_at IS NULL AND therapy_sessions.status IN ?",
			[]model.SessionStatus{model.SessionCompleted, model.SessionCancelled}).
		Order("therapy_sessions.updated_at DESC, therapy_sessions.id DESC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].CompletedAt != nil {
			items[i].OccurredAt = items[i].CompletedAt
		} else {
			items[i].OccurredAt = items[i].CancelledAt
		}
	}
	return items, nil
}

// GetDashboardActivity godoc
// @Summary      Recent activity
// @Description  Most recently completed or cancelled sessions with patient and therapist names
// @Tags         Dashboard
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Success      200 {object} util.APIResponse{data=[]ActivityItem} "Activity retrieved"
// @Router       /dashboard/activity [get]
func GetDashboardActivity(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	items, err := loadRecentActivity(db, parsePositiveInt(c.Query("limit"), 20, 100))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve activity", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Activity retrieved", Data: items})
}
