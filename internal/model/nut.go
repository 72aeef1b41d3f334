package model

import (
	"time"

	"github.com/google/uuid"
)

// Nut is an inventory item counted in packages. Package counts move by
// signed deltas, the same way client credit does.
type Nut struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Packages  int       `gorm:"type:int;not null;default:0" json:"packages"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
