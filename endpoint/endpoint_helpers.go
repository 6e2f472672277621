package endpoint

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/ariebrainware/clinic-therapy/middleware"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// parseIDParam parses the "id" path parameter into a positive uint.
func parseIDParam(c *gin.Context, entity string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s ID must be a positive integer", entity)
	}
	return uint(id), nil
}

func parseIDOrRespond(c *gin.Context, entity string) (uint, bool) {
	id, err := parseIDParam(c, entity)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return 0, false
	}
	return id, true
}

// parsePositiveInt parses a positive integer from a query value returning a default
// when the value is missing or invalid. If max > 0 it caps the returned value.
func parsePositiveInt(q string, defaultVal, max int) int {
	v, err := strconv.Atoi(q)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// parseUintQuery returns 0 when the parameter is missing or invalid.
func parseUintQuery(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

type pagination struct {
	Limit  int
	Offset int
}

func parsePagination(c *gin.Context) pagination {
	return pagination{
		Limit:  parsePositiveInt(c.Query("limit"), 20, 100),
		Offset: parsePositiveInt(c.Query("offset"), 0, 0),
	}
}

func (p pagination) apply(q *gorm.DB) *gorm.DB {
	q = q.Limit(p.Limit)
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

// likePattern builds a lower-cased LIKE pattern; pair it with LOWER(column)
// so keyword filters are case-insensitive on every dialect.
func likePattern(keyword string) string {
	return "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
}

// findOrRespond loads dst by primary key, answering 404 or 500 on failure.
func findOrRespond(c *gin.Context, db *gorm.DB, dst interface{}, id uint, entity string) bool {
	if err := db.First(dst, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: entity + " not found", Err: err})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve " + strings.ToLower(entity), Err: err})
		return false
	}
	return true
}

// respondTrackerError maps tracker error kinds onto HTTP statuses.
func respondTrackerError(c *gin.Context, err error, msg string) {
	params := util.APIErrorParams{Msg: msg, Err: err}
	switch tracker.KindOf(err) {
	case tracker.KindValidation:
		util.CallUserError(c, params)
	case tracker.KindNotFound:
		util.CallErrorNotFound(c, params)
	case tracker.KindConflict:
		util.CallConflictError(c, params)
	default:
		util.CallServerError(c, params)
	}
}

// trackerFor returns a tracker bound to the request's database handle and
// logger, auditing committed changes under the calling user.
func trackerFor(c *gin.Context, db *gorm.DB) *tracker.Tracker {
	userID, _ := middleware.GetUserID(c)
	ip, agent := c.ClientIP(), c.Request.UserAgent()
	auditor := tracker.AuditorFunc(func(_ context.Context, ev tracker.Event) {
		details := make(map[string]interface{}, len(ev.Details)+1)
		for k, v := range ev.Details {
			details[k] = v
		}
		if ev.SessionID != 0 {
			details["session_id"] = ev.SessionID
		}
		util.LogAuditEvent(util.AuditEntry{
			EventType:  string(ev.Type),
			UserID:     userID,
			IP:         ip,
			UserAgent:  agent,
			EntityType: "therapy",
			EntityID:   ev.TherapyID,
			Message:    auditMessage(ev),
			Details:    details,
		})
	})
	return tracker.New(db, tracker.WithLogger(middleware.Logger(c)), tracker.WithAuditor(auditor))
}

func auditMessage(ev tracker.Event) string {
	switch ev.Type {
	case tracker.EventTherapyPrescribed:
		return fmt.Sprintf("therapy %d prescribed", ev.TherapyID)
	case tracker.EventSessionsScheduled:
		return fmt.Sprintf("%v sessions scheduled on therapy %d", ev.Details["count"], ev.TherapyID)
	case tracker.EventSessionCompleted:
		return fmt.Sprintf("session #%v of therapy %d completed", ev.Details["session_number"], ev.TherapyID)
	case tracker.EventSessionCancelled:
		return fmt.Sprintf("session #%v of therapy %d cancelled", ev.Details["session_number"], ev.TherapyID)
	case tracker.EventTherapyCompleted:
		return fmt.Sprintf("therapy %d completed", ev.TherapyID)
	case tracker.EventPrescriptionChanged:
		return fmt.Sprintf("therapy %d prescription changed from %v to %v", ev.TherapyID, ev.Details["from"], ev.Details["to"])
	default:
		return fmt.Sprintf("therapy %d: %s", ev.TherapyID, strings.ToLower(string(ev.Type)))
	}
}

var registerValidatorsOnce sync.Once

// RegisterValidators adds the custom binding tags used by request payloads:
// "vas" accepts integers on the 0..10 pain scale.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("vas", func(fl validator.FieldLevel) bool {
			switch fl.Field().Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				n := fl.Field().Int()
				return n >= model.VASMin && n <= model.VASMax
			}
			return false
		})
	})
}
