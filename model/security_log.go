package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityLog is a persisted security or audit event. Clinical mutations fill
// EntityType/EntityID so the history of a therapy or session can be listed.
type SecurityLog struct {
	gorm.Model
	EventType  string         `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	UserID     string         `json:"user_id" gorm:"column:user_id;type:varchar(64);index"`
	Email      string         `json:"email" gorm:"column:email;type:varchar(191)"`
	IP         string         `json:"ip" gorm:"column:ip;type:varchar(45)"`
	Location   string         `json:"location" gorm:"column:location;type:varchar(255)"` // "City/Country" when resolvable
	UserAgent  string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	EntityType string         `json:"entity_type" gorm:"column:entity_type;type:varchar(32);index:idx_security_log_entity"`
	EntityID   uint           `json:"entity_id" gorm:"column:entity_id;index:idx_security_log_entity"`
	Message    string         `json:"message" gorm:"column:message;type:text"`
	Details    datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
