package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionAddClient      = "ADD_CLIENT"
	ActionAdjustCredit   = "ADJUST_CREDIT"
	ActionAddNut         = "ADD_NUT"
	ActionAdjustPackages = "ADJUST_PACKAGES"
	ActionAddAdmin       = "ADD_ADMIN"
	ActionSubmitRequest  = "SUBMIT_REQUEST"
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(255);index" json:"actor"` // caller id or display name
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
