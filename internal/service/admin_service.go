package service

import (
	"context"
	"fmt"
	"strings"

	"nutscredit/internal/auth"
	"nutscredit/internal/model"
	"nutscredit/internal/repository"
)

// DTOs
type AdminResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AdminService interface {
	// AddAdmin registers a new admin. Only the main authority may call this;
	// anyone else gets ErrNotAuthorized and nothing is written.
	AddAdmin(ctx context.Context, callerID, name string) (AdminResponse, bool, error)
	ListAdmins(ctx context.Context, page, limit int) ([]AdminResponse, int64, error)
}

type adminService struct {
	adminRepo repository.AdminRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	guard     *auth.Guard
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	guard *auth.Guard,
) AdminService {
	return &adminService{adminRepo: adminRepo, auditRepo: auditRepo, txManager: txManager, guard: guard}
}

func (s *adminService) AddAdmin(ctx context.Context, callerID, name string) (AdminResponse, bool, error) {
	if !s.guard.IsMainAuthority(callerID) {
		return AdminResponse{}, false, ErrNotAuthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return AdminResponse{}, false, ErrEmptyName
	}

	admin := &model.Admin{Name: name}
	var created bool
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.adminRepo.CreateIfAbsent(txCtx, admin)
		if txErr != nil {
			return fmt.Errorf("failed to create admin: %w", txErr)
		}
		if !created {
			return nil
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      callerID,
			Action:     model.ActionAddAdmin,
			EntityID:   admin.ID.String(),
			EntityName: name,
		})
	})
	if err != nil {
		return AdminResponse{}, false, err
	}

	if !created {
		existing, getErr := s.adminRepo.GetByName(ctx, name)
		if getErr != nil {
			return AdminResponse{}, false, fmt.Errorf("failed to load existing admin: %w", getErr)
		}
		return AdminResponse{ID: existing.ID.String(), Name: existing.Name}, false, nil
	}

	return AdminResponse{ID: admin.ID.String(), Name: admin.Name}, true, nil
}

func (s *adminService) ListAdmins(ctx context.Context, page, limit int) ([]AdminResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	admins, total, err := s.adminRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AdminResponse, 0, len(admins))
	for _, a := range admins {
		res = append(res, AdminResponse{ID: a.ID.String(), Name: a.Name})
	}

	return res, total, nil
}
