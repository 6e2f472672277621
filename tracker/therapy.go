package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PrescribeRequest describes a new therapy for a clinical record.
type PrescribeRequest struct {
	ClinicalRecordID   uint
	TherapyTypeID      uint
	PrescribedSessions int // 0 uses the therapy type default
	Frequency          string
	District           string
	Notes              string
}

// Prescribe creates a SCHEDULED therapy on an active clinical record.
func (t *Tracker) Prescribe(ctx context.Context, req PrescribeRequest) (*model.Therapy, error) {
	if req.PrescribedSessions < 0 {
		return nil, validationf("INVALID_PRESCRIPTION", "prescribed_sessions cannot be negative, got %d", req.PrescribedSessions)
	}

	var th *model.Therapy
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.ClinicalRecord
		if err := tx.First(&record, req.ClinicalRecordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("clinical record", req.ClinicalRecordID)
			}
			return err
		}
		if !record.IsActive {
			return conflictf("RECORD_CLOSED", "clinical record %d is closed", record.ID)
		}

		var tt model.TherapyType
		if err := tx.First(&tt, req.TherapyTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("therapy type", req.TherapyTypeID)
			}
			return err
		}

		prescribed := req.PrescribedSessions
		if prescribed == 0 {
			prescribed = tt.DefaultSessions
		}
		if prescribed < 1 {
			return validationf("INVALID_PRESCRIPTION", "prescribed_sessions must be at least 1")
		}

		th = &model.Therapy{
			ClinicalRecordID:   record.ID,
			TherapyTypeID:      tt.ID,
			PrescribedSessions: prescribed,
			Status:             model.TherapyScheduled,
			Frequency:          req.Frequency,
			District:           req.District,
			Notes:              req.Notes,
			Version:            1,
		}
		if err := tx.Create(th).Error; err != nil {
			return err
		}
		th.TherapyType = &tt
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("therapy prescribed",
		zap.Uint("therapy_id", th.ID),
		zap.Uint("clinical_record_id", th.ClinicalRecordID),
		zap.Int("prescribed", th.PrescribedSessions))
	t.emit(ctx, Event{
		Type:      EventTherapyPrescribed,
		TherapyID: th.ID,
		Details: map[string]interface{}{
			"clinical_record_id": th.ClinicalRecordID,
			"therapy_type":       th.TherapyType.Code,
			"prescribed":         th.PrescribedSessions,
		},
	})
	return th, nil
}

// GetTherapy returns the therapy with its type and its sessions ordered by
// session number.
func (t *Tracker) GetTherapy(ctx context.Context, id uint) (*model.Therapy, error) {
	var th model.Therapy
	err := t.db.WithContext(ctx).
		Preload("TherapyType").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_number ASC")
		}).
		Preload("Sessions.Therapist").
		First(&th, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("therapy", id)
		}
		return nil, err
	}
	return &th, nil
}

// TherapyUpdate lists the therapy fields to change; nil fields are kept.
type TherapyUpdate struct {
	PrescribedSessions *int
	Frequency          *string
	District           *string
	Notes              *string
}

// UpdatePrescription changes the prescribed session count. It cannot go below
// the sessions already completed or scheduled.
func (t *Tracker) UpdatePrescription(ctx context.Context, therapyID uint, prescribed int) (*model.Therapy, error) {
	return t.UpdateTherapy(ctx, therapyID, TherapyUpdate{PrescribedSessions: &prescribed})
}

// UpdateTherapy applies upd to a therapy in a single transaction. A new
// prescribed count follows the UpdatePrescription rules and recomputes the
// status; descriptive fields are written alongside it.
func (t *Tracker) UpdateTherapy(ctx context.Context, therapyID uint, upd TherapyUpdate) (*model.Therapy, error) {
	if upd.PrescribedSessions != nil && *upd.PrescribedSessions < 1 {
		return nil, validationf("INVALID_PRESCRIPTION", "prescribed_sessions must be at least 1, got %d", *upd.PrescribedSessions)
	}

	var (
		th         *model.Therapy
		previous   int
		prevStatus model.TherapyStatus
	)
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if th, err = findTherapy(tx, therapyID); err != nil {
			return err
		}
		previous, prevStatus = th.PrescribedSessions, th.Status

		fields := map[string]interface{}{}
		if upd.PrescribedSessions != nil {
			prescribed := *upd.PrescribedSessions
			active, err := countActiveSessions(tx, th.ID)
			if err != nil {
				return err
			}
			if prescribed < active {
				return validationf("BELOW_ACTIVE_SESSIONS",
					"prescribed_sessions %d is below the %d completed or scheduled sessions", prescribed, active)
			}
			th.PrescribedSessions = prescribed
			if th.Status != model.TherapySuspended {
				th.Status = th.ProgressStatus()
			}
			fields["prescribed_sessions"] = th.PrescribedSessions
			fields["status"] = th.Status
		}
		if upd.Frequency != nil {
			th.Frequency = *upd.Frequency
			fields["frequency"] = th.Frequency
		}
		if upd.District != nil {
			th.District = *upd.District
			fields["district"] = th.District
		}
		if upd.Notes != nil {
			th.Notes = *upd.Notes
			fields["notes"] = th.Notes
		}
		if len(fields) == 0 {
			return nil
		}
		return saveTherapy(tx, th, fields)
	})
	if err != nil {
		return nil, err
	}

	if upd.PrescribedSessions == nil {
		return th, nil
	}
	events := []Event{{
		Type:      EventPrescriptionChanged,
		TherapyID: th.ID,
		Details:   map[string]interface{}{"from": previous, "to": th.PrescribedSessions},
	}}
	if th.Status == model.TherapyCompleted && prevStatus != model.TherapyCompleted {
		events = append(events, Event{Type: EventTherapyCompleted, TherapyID: th.ID})
	}
	t.emit(ctx, events...)
	return th, nil
}

// Suspend pauses a SCHEDULED or IN_PROGRESS therapy.
func (t *Tracker) Suspend(ctx context.Context, therapyID uint) (*model.Therapy, error) {
	return t.transition(ctx, therapyID, EventTherapySuspended, func(th *model.Therapy) (model.TherapyStatus, error) {
		if th.Status != model.TherapyScheduled && th.Status != model.TherapyInProgress {
			return "", conflictf("INVALID_TRANSITION", "therapy %d is %s and cannot be suspended", th.ID, th.Status)
		}
		return model.TherapySuspended, nil
	})
}

// Resume returns a SUSPENDED therapy to the status implied by its progress.
func (t *Tracker) Resume(ctx context.Context, therapyID uint) (*model.Therapy, error) {
	return t.transition(ctx, therapyID, EventTherapyResumed, func(th *model.Therapy) (model.TherapyStatus, error) {
		if th.Status != model.TherapySuspended {
			return "", conflictf("INVALID_TRANSITION", "therapy %d is %s, only SUSPENDED therapies can be resumed", th.ID, th.Status)
		}
		return th.ProgressStatus(), nil
	})
}

func (t *Tracker) transition(ctx context.Context, therapyID uint, evType EventType, next func(*model.Therapy) (model.TherapyStatus, error)) (*model.Therapy, error) {
	var th *model.Therapy
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if th, err = findTherapy(tx, therapyID); err != nil {
			return err
		}
		status, err := next(th)
		if err != nil {
			return err
		}
		th.Status = status
		return saveTherapy(tx, th, map[string]interface{}{"status": status})
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("therapy status changed", zap.Uint("therapy_id", th.ID), zap.String("status", string(th.Status)))
	t.emit(ctx, Event{Type: evType, TherapyID: th.ID, Details: map[string]interface{}{"status": th.Status}})
	return th, nil
}

// CloseRecord closes a clinical record. Therapies still SCHEDULED or
// IN_PROGRESS are suspended in the same transaction.
func (t *Tracker) CloseRecord(ctx context.Context, recordID uint) (*model.ClinicalRecord, error) {
	var (
		record model.ClinicalRecord
		open   []model.Therapy
	)
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("clinical record", recordID)
			}
			return err
		}
		if !record.IsActive {
			return conflictf("RECORD_CLOSED", "clinical record %d is already closed", record.ID)
		}

		if err := tx.Where("clinical_record_id = ? AND status IN ?", record.ID,
			[]model.TherapyStatus{model.TherapyScheduled, model.TherapyInProgress}).
			Find(&open).Error; err != nil {
			return err
		}
		for i := range open {
			if err := saveTherapy(tx, &open[i], map[string]interface{}{"status": model.TherapySuspended}); err != nil {
				return err
			}
		}

		record.Close(t.now().Truncate(time.Second))
		return tx.Model(&record).Updates(map[string]interface{}{
			"is_active": false,
			"closed_at": record.ClosedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	t.log.Info("clinical record closed", zap.Uint("clinical_record_id", record.ID), zap.Int("suspended_therapies", len(open)))
	for _, th := range open {
		t.emit(ctx, Event{
			Type:      EventTherapySuspended,
			TherapyID: th.ID,
			Details:   map[string]interface{}{"status": model.TherapySuspended, "reason": "clinical record closed"},
		})
	}
	return &record, nil
}
