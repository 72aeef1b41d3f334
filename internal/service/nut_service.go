package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nutscredit/internal/model"
	"nutscredit/internal/repository"

	"gorm.io/gorm"
)

// DTOs
type NutResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Packages int    `json:"packages"`
}

type NutService interface {
	// AddNut inserts a new nut type. A duplicate name is a silent no-op:
	// created=false and the existing record is returned unchanged.
	AddNut(ctx context.Context, actor, name string, packages int) (NutResponse, bool, error)
	ListNuts(ctx context.Context, page, limit int) ([]NutResponse, int64, error)
	// AdjustPackages applies a signed delta to the named nut's package count.
	AdjustPackages(ctx context.Context, actor, name string, delta int) (NutResponse, error)
}

type nutService struct {
	nutRepo   repository.NutRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewNutService(
	nutRepo repository.NutRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) NutService {
	return &nutService{nutRepo: nutRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *nutService) AddNut(ctx context.Context, actor, name string, packages int) (NutResponse, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NutResponse{}, false, ErrEmptyName
	}

	nut := &model.Nut{Name: name, Packages: packages}
	var created bool
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.nutRepo.CreateIfAbsent(txCtx, nut)
		if txErr != nil {
			return fmt.Errorf("failed to create nut: %w", txErr)
		}
		if !created {
			return nil
		}

		details, _ := json.Marshal(map[string]interface{}{"packages": packages})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      actor,
			Action:     model.ActionAddNut,
			EntityID:   nut.ID.String(),
			EntityName: name,
			Details:    string(details),
		})
	})
	if err != nil {
		return NutResponse{}, false, err
	}

	if !created {
		existing, getErr := s.nutRepo.GetByName(ctx, name)
		if getErr != nil {
			return NutResponse{}, false, fmt.Errorf("failed to load existing nut: %w", getErr)
		}
		return toNutResponse(*existing), false, nil
	}

	return toNutResponse(*nut), true, nil
}

func (s *nutService) ListNuts(ctx context.Context, page, limit int) ([]NutResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	nuts, total, err := s.nutRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]NutResponse, 0, len(nuts))
	for _, n := range nuts {
		res = append(res, toNutResponse(n))
	}

	return res, total, nil
}

func (s *nutService) AdjustPackages(ctx context.Context, actor, name string, delta int) (NutResponse, error) {
	nut, err := s.nutRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NutResponse{}, ErrNutNotFound
		}
		return NutResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if adjErr := s.nutRepo.AdjustPackages(txCtx, nut.ID, delta); adjErr != nil {
			return fmt.Errorf("failed to adjust packages: %w", adjErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"delta": delta})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      actor,
			Action:     model.ActionAdjustPackages,
			EntityID:   nut.ID.String(),
			EntityName: nut.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return NutResponse{}, err
	}

	updated, err := s.nutRepo.GetByID(ctx, nut.ID)
	if err != nil {
		return NutResponse{}, fmt.Errorf("failed to reload nut: %w", err)
	}

	return toNutResponse(*updated), nil
}

func toNutResponse(n model.Nut) NutResponse {
	return NutResponse{
		ID:       n.ID.String(),
		Name:     n.Name,
		Packages: n.Packages,
	}
}
