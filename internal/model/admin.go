package model

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a registered individual permitted to submit supply requests.
// Admins are created only by the main authority; the set is matched by
// exact display name when a request comes in over chat.
type Admin struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
