// Package tracker maintains the session sequence of prescribed therapies and
// derives their progress.
//
// Every mutation runs in one database transaction. The therapy row carries a
// version column; each write to it is conditioned on the version read inside
// the transaction, so concurrent completions on the same therapy serialize and
// the loser gets a conflict instead of a lost counter update.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventType names a state change recorded by an Auditor.
type EventType string

const (
	EventTherapyPrescribed   EventType = "THERAPY_PRESCRIBED"
	EventSessionsScheduled   EventType = "SESSIONS_SCHEDULED"
	EventSessionCompleted    EventType = "SESSION_COMPLETED"
	EventSessionCancelled    EventType = "SESSION_CANCELLED"
	EventTherapyCompleted    EventType = "THERAPY_COMPLETED"
	EventTherapySuspended    EventType = "THERAPY_SUSPENDED"
	EventTherapyResumed      EventType = "THERAPY_RESUMED"
	EventPrescriptionChanged EventType = "PRESCRIPTION_CHANGED"
)

// Event describes a committed change.
type Event struct {
	Type      EventType
	TherapyID uint
	SessionID uint
	Details   map[string]interface{}
}

// Auditor receives events after their transaction committed.
type Auditor interface {
	Record(ctx context.Context, ev Event)
}

// AuditorFunc adapts a function to Auditor.
type AuditorFunc func(ctx context.Context, ev Event)

// Record calls f(ctx, ev).
func (f AuditorFunc) Record(ctx context.Context, ev Event) { f(ctx, ev) }

// Tracker implements the therapy progress operations on top of a GORM handle.
type Tracker struct {
	db      *gorm.DB
	log     *zap.Logger
	now     func() time.Time
	auditor Auditor
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithClock overrides time.Now, used for completion and cancellation stamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithAuditor registers an Auditor.
func WithAuditor(a Auditor) Option {
	return func(t *Tracker) { t.auditor = a }
}

// New returns a Tracker using db for every operation.
func New(db *gorm.DB, opts ...Option) *Tracker {
	t := &Tracker{
		db:  db,
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	t.log = t.log.Named("tracker")
	return t
}

func (t *Tracker) emit(ctx context.Context, events ...Event) {
	if t.auditor == nil {
		return
	}
	for _, ev := range events {
		t.auditor.Record(ctx, ev)
	}
}

func findTherapy(tx *gorm.DB, id uint) (*model.Therapy, error) {
	var th model.Therapy
	if err := tx.First(&th, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("therapy", id)
		}
		return nil, err
	}
	return &th, nil
}

func findSession(tx *gorm.DB, id uint) (*model.TherapySession, error) {
	var s model.TherapySession
	if err := tx.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session", id)
		}
		return nil, err
	}
	return &s, nil
}

// saveTherapy writes fields to the therapy row if its version is still the
// one read in this transaction, then advances th.Version.
func saveTherapy(tx *gorm.DB, th *model.Therapy, fields map[string]interface{}) error {
	fields["version"] = th.Version + 1
	res := tx.Model(&model.Therapy{}).
		Where("id = ? AND version = ?", th.ID, th.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflictf("CONCURRENT_UPDATE", "therapy %d was modified by another request", th.ID)
	}
	th.Version++
	return nil
}

// countActiveSessions counts sessions that still occupy a prescription slot.
func countActiveSessions(tx *gorm.DB, therapyID uint) (int, error) {
	var n int64
	err := tx.Model(&model.TherapySession{}).
		Where("therapy_id = ? AND status <> ?", therapyID, model.SessionCancelled).
		Count(&n).Error
	return int(n), err
}
