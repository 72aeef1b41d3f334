package auth

import (
	"context"
	"errors"

	"nutscredit/internal/model"
	"nutscredit/internal/repository"

	"gorm.io/gorm"
)

// Guard answers the two authorization questions the system has: is this
// caller the configured main authority, and does this display name belong
// to a registered admin. Both checks are read-only; a miss is a normal
// denial branch, never an error.
type Guard struct {
	mainAuthorityID string
	adminRepo       repository.AdminRepository
}

func NewGuard(mainAuthorityID string, adminRepo repository.AdminRepository) *Guard {
	return &Guard{mainAuthorityID: mainAuthorityID, adminRepo: adminRepo}
}

// IsMainAuthority compares the caller's identity against the configured
// authority identifier. Identities are opaque strings.
func (g *Guard) IsMainAuthority(callerID string) bool {
	return g.mainAuthorityID != "" && callerID == g.mainAuthorityID
}

// MainAuthorityID returns the configured authority chat address.
func (g *Guard) MainAuthorityID() string {
	return g.mainAuthorityID
}

// RegisteredAdmin looks up the Admins table by exact display-name match.
// Returns (nil, nil) when no admin carries that name.
func (g *Guard) RegisteredAdmin(ctx context.Context, displayName string) (*model.Admin, error) {
	admin, err := g.adminRepo.GetByName(ctx, displayName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}
