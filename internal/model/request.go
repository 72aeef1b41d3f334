package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request status constants
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// Request is a supply request submitted by an admin: a proposed consumption
// of nut packages against paid credit. It is created PENDING and moves
// exactly once to APPROVED or REJECTED; both transitions are terminal.
//
// RequesterChatID is the opaque chat address the submitter spoke from. It is
// stored with the request so the decision, which arrives much later from
// the main authority's own session, can still notify the right endpoint.
type Request struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"admin_id"`
	Admin           *Admin          `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	NutID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"nut_id"`
	Nut             *Nut            `gorm:"foreignKey:NutID" json:"nut,omitempty"`
	Packages        int             `gorm:"type:int;not null" json:"packages"`
	CreditPaid      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"credit_paid"`
	Description     string          `gorm:"type:text" json:"description"`
	RequesterChatID string          `gorm:"type:varchar(255);not null" json:"requester_chat_id"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	DecidedBy       string          `gorm:"type:varchar(255)" json:"decided_by"`
	DecidedAt       *time.Time      `json:"decided_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
