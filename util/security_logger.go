package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ariebrainware/clinic-therapy/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventPasswordChanged    SecurityEventType = "PASSWORD_CHANGED"
	EventUserCreated        SecurityEventType = "USER_CREATED"
	EventUserDeleted        SecurityEventType = "USER_DELETED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
)

// SecurityEvent represents a security or audit event to be logged.
// EntityType/EntityID are set for changes to clinical data.
type SecurityEvent struct {
	EventType  SecurityEventType
	UserID     string
	Email      string
	IP         string
	UserAgent  string
	EntityType string
	EntityID   uint
	Message    string
	Details    map[string]interface{}
}

var (
	securityMu     sync.RWMutex
	securityLogger = zap.NewNop()
	securityDB     *gorm.DB
)

// SetSecurityLogger routes security events to l, named "security".
func SetSecurityLogger(l *zap.Logger) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityLogger = l.Named("security")
}

// SetSecurityLoggerDB sets the database security events are persisted to.
// Call it at startup after the DB is migrated; nil disables persistence.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityDB = db
}

func securitySinks() (*zap.Logger, *gorm.DB) {
	securityMu.RLock()
	defer securityMu.RUnlock()
	return securityLogger, securityDB
}

// sanitizeLogValue removes line breaks and truncates long values so a field
// cannot forge or flood log lines.
func sanitizeLogValue(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(value)
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent logs a security event and persists it when a DB is set.
// Persistence is best effort.
func LogSecurityEvent(event SecurityEvent) {
	logger, db := securitySinks()

	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.String("user_id", sanitizeLogValue(event.UserID)),
		zap.String("email", sanitizeLogValue(event.Email)),
		zap.String("ip", sanitizeLogValue(event.IP)),
		zap.String("user_agent", sanitizeLogValue(event.UserAgent)),
	}
	if event.EntityType != "" {
		fields = append(fields, zap.String("entity_type", event.EntityType), zap.Uint("entity_id", event.EntityID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Int("details_count", len(event.Details)))
	}
	logger.Info(sanitizeLogValue(event.Message), fields...)

	if db == nil {
		return
	}
	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}
	entry := model.SecurityLog{
		EventType:  string(event.EventType),
		UserID:     event.UserID,
		Email:      sanitizeLogValue(event.Email),
		IP:         sanitizeLogValue(event.IP),
		Location:   sanitizeLogValue(GetIPLocation(event.IP)),
		UserAgent:  sanitizeLogValue(event.UserAgent),
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Message:    sanitizeLogValue(event.Message),
		Details:    details,
	}
	if err := db.Create(&entry).Error; err != nil {
		logger.Warn("failed to persist security event", zap.Error(err))
	}
}

// AuditEntry describes a change to clinical data made by a user.
type AuditEntry struct {
	EventType  string
	UserID     uint
	IP         string
	UserAgent  string
	EntityType string
	EntityID   uint
	Message    string
	Details    map[string]interface{}
}

// LogAuditEvent records a clinical change, resolving the user's email
// through the user cache.
func LogAuditEvent(a AuditEntry) {
	_, db := securitySinks()
	LogSecurityEvent(SecurityEvent{
		EventType:  SecurityEventType(a.EventType),
		UserID:     formatUserID(a.UserID),
		Email:      GetUserEmail(db, a.UserID),
		IP:         a.IP,
		UserAgent:  a.UserAgent,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Message:    a.Message,
		Details:    a.Details,
	})
}

// ListEntityEvents returns the persisted events about one entity, newest first.
func ListEntityEvents(db *gorm.DB, entityType string, entityID uint, limit int) ([]model.SecurityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.SecurityLog
	err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    formatUserID(userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogLogout logs a logout event
func LogLogout(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    formatUserID(userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogAccountLocked logs when an account is locked
func LogAccountLocked(userID uint, email, ip, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventAccountLocked,
		UserID:    formatUserID(userID),
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Account locked: %s", reason),
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(userID, email, ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(email, ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}
