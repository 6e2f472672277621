package tracker

import (
	"context"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const fallbackDurationMinutes = 30

// ScheduleRequest describes a batch of sessions to append to a therapy.
type ScheduleRequest struct {
	TherapyID       uint
	Count           int
	StartDate       time.Time
	CadenceDays     int
	DurationMinutes int   // 0 uses the therapy type default
	TherapistID     *uint // optional
}

func (r ScheduleRequest) validate() error {
	switch {
	case r.Count < 1:
		return validationf("INVALID_COUNT", "count must be at least 1, got %d", r.Count)
	case r.CadenceDays < 0:
		return validationf("INVALID_CADENCE", "cadence_days cannot be negative, got %d", r.CadenceDays)
	case r.StartDate.IsZero():
		return validationf("INVALID_START_DATE", "start_date is required")
	case r.DurationMinutes < 0:
		return validationf("INVALID_DURATION", "duration_minutes cannot be negative, got %d", r.DurationMinutes)
	}
	return nil
}

// ScheduleSessions appends req.Count SCHEDULED sessions numbered from the
// current highest session number + 1, spaced req.CadenceDays apart.
// Cancelled sessions keep their numbers but free their prescription slot.
func (t *Tracker) ScheduleSessions(ctx context.Context, req ScheduleRequest) ([]model.TherapySession, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var created []model.TherapySession
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		th, err := findTherapy(tx, req.TherapyID)
		if err != nil {
			return err
		}
		switch th.Status {
		case model.TherapyCompleted:
			return conflictf("THERAPY_COMPLETED", "therapy %d is already completed", th.ID)
		case model.TherapySuspended:
			return conflictf("THERAPY_SUSPENDED", "therapy %d is suspended", th.ID)
		}

		active, err := countActiveSessions(tx, th.ID)
		if err != nil {
			return err
		}
		if active+req.Count > th.PrescribedSessions {
			return validationf("EXCEEDS_PRESCRIPTION",
				"scheduling %d sessions would exceed the %d prescribed (%d already active)",
				req.Count, th.PrescribedSessions, active)
		}

		var maxNumber int
		if err := tx.Model(&model.TherapySession{}).
			Where("therapy_id = ?", th.ID).
			Select("COALESCE(MAX(session_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		duration := req.DurationMinutes
		if duration == 0 {
			duration = fallbackDurationMinutes
			var tt model.TherapyType
			if err := tx.First(&tt, th.TherapyTypeID).Error; err == nil && tt.DefaultDuration > 0 {
				duration = tt.DefaultDuration
			}
		}

		created = make([]model.TherapySession, 0, req.Count)
		for i := 0; i < req.Count; i++ {
			created = append(created, model.TherapySession{
				TherapyID:       th.ID,
				SessionNumber:   maxNumber + i + 1,
				SessionDate:     req.StartDate.AddDate(0, 0, i*req.CadenceDays),
				DurationMinutes: duration,
				Status:          model.SessionScheduled,
				TherapistID:     req.TherapistID,
			})
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if th.StartDate == nil {
			fields["start_date"] = created[0].SessionDate
		}
		return saveTherapy(tx, th, fields)
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("sessions scheduled",
		zap.Uint("therapy_id", req.TherapyID),
		zap.Int("count", len(created)),
		zap.Int("first_number", created[0].SessionNumber))
	t.emit(ctx, Event{
		Type:      EventSessionsScheduled,
		TherapyID: req.TherapyID,
		Details: map[string]interface{}{
			"count":        len(created),
			"first_number": created[0].SessionNumber,
			"last_number":  created[len(created)-1].SessionNumber,
		},
	})
	return created, nil
}

func validateVAS(name string, v *int) error {
	if v == nil {
		return nil
	}
	if *v < model.VASMin || *v > model.VASMax {
		return validationf("INVALID_VAS", "%s must be between %d and %d, got %d", name, model.VASMin, model.VASMax, *v)
	}
	return nil
}

// CompleteOption adjusts what CompleteSession writes with the status change.
type CompleteOption func(*completion)

type completion struct {
	notes *string
}

// WithSessionNotes stores notes on the session in the completing transaction.
func WithSessionNotes(notes string) CompleteOption {
	return func(c *completion) { c.notes = &notes }
}

// CompleteSession marks a SCHEDULED session COMPLETED with the given VAS
// scores and increments the therapy's completed counter in the same
// transaction. Reaching the prescribed count completes the therapy.
func (t *Tracker) CompleteSession(ctx context.Context, sessionID uint, vasBefore, vasAfter *int, opts ...CompleteOption) (*model.TherapySession, error) {
	var extra completion
	for _, opt := range opts {
		opt(&extra)
	}
	if err := validateVAS("vas_score_before", vasBefore); err != nil {
		return nil, err
	}
	if err := validateVAS("vas_score_after", vasAfter); err != nil {
		return nil, err
	}

	var (
		session *model.TherapySession
		therapy *model.Therapy
	)
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findSession(tx, sessionID); err != nil {
			return err
		}
		if session.Status != model.SessionScheduled {
			return conflictf("SESSION_NOT_SCHEDULED", "session %d is %s, only SCHEDULED sessions can be completed", session.ID, session.Status)
		}
		if therapy, err = findTherapy(tx, session.TherapyID); err != nil {
			return err
		}
		if therapy.Status == model.TherapySuspended {
			return conflictf("THERAPY_SUSPENDED", "therapy %d is suspended", therapy.ID)
		}
		if therapy.CompletedSessions >= therapy.PrescribedSessions {
			return conflictf("THERAPY_COMPLETED", "therapy %d already reached its %d prescribed sessions", therapy.ID, therapy.PrescribedSessions)
		}

		now := t.now()
		fields := map[string]interface{}{
			"status":       model.SessionCompleted,
			"completed_at": now,
		}
		if vasBefore != nil {
			fields["vas_score_before"] = *vasBefore
			session.VasScoreBefore = vasBefore
		}
		if vasAfter != nil {
			fields["vas_score_after"] = *vasAfter
			session.VasScoreAfter = vasAfter
		}
		if extra.notes != nil {
			fields["notes"] = *extra.notes
			session.Notes = *extra.notes
		}
		res := tx.Model(&model.TherapySession{}).
			Where("id = ? AND status = ?", session.ID, model.SessionScheduled).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictf("SESSION_NOT_SCHEDULED", "session %d was changed by another request", session.ID)
		}
		session.Status = model.SessionCompleted
		session.CompletedAt = &now

		therapy.CompletedSessions++
		therapy.Status = therapy.ProgressStatus()
		return saveTherapy(tx, therapy, map[string]interface{}{
			"completed_sessions": therapy.CompletedSessions,
			"status":             therapy.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("session completed",
		zap.Uint("session_id", session.ID),
		zap.Uint("therapy_id", therapy.ID),
		zap.Int("completed", therapy.CompletedSessions),
		zap.Int("prescribed", therapy.PrescribedSessions))

	events := []Event{{
		Type:      EventSessionCompleted,
		TherapyID: therapy.ID,
		SessionID: session.ID,
		Details: map[string]interface{}{
			"session_number":   session.SessionNumber,
			"vas_score_before": vasBefore,
			"vas_score_after":  vasAfter,
		},
	}}
	if therapy.Status == model.TherapyCompleted {
		events = append(events, Event{Type: EventTherapyCompleted, TherapyID: therapy.ID})
	}
	t.emit(ctx, events...)
	return session, nil
}

// CancelSession marks a SCHEDULED session CANCELLED. Numbers of later
// sessions and the completed counter are left untouched.
func (t *Tracker) CancelSession(ctx context.Context, sessionID uint) (*model.TherapySession, error) {
	var session *model.TherapySession
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = findSession(tx, sessionID); err != nil {
			return err
		}
		if session.Status != model.SessionScheduled {
			return conflictf("SESSION_NOT_SCHEDULED", "session %d is %s, only SCHEDULED sessions can be cancelled", session.ID, session.Status)
		}

		now := t.now()
		res := tx.Model(&model.TherapySession{}).
			Where("id = ? AND status = ?", session.ID, model.SessionScheduled).
			Updates(map[string]interface{}{
				"status":       model.SessionCancelled,
				"cancelled_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictf("SESSION_NOT_SCHEDULED", "session %d was changed by another request", session.ID)
		}
		session.Status = model.SessionCancelled
		session.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("session cancelled", zap.Uint("session_id", session.ID), zap.Uint("therapy_id", session.TherapyID))
	t.emit(ctx, Event{
		Type:      EventSessionCancelled,
		TherapyID: session.TherapyID,
		SessionID: session.ID,
		Details:   map[string]interface{}{"session_number": session.SessionNumber},
	})
	return session, nil
}
