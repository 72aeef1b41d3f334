package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nutscredit/internal/model"
	"nutscredit/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type ClientResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Credit string `json:"credit"`
}

type AdjustCreditRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type ClientService interface {
	// AddClient inserts a new client. A duplicate name is a silent no-op:
	// created=false and the existing record is returned unchanged.
	AddClient(ctx context.Context, actor, name string, credit decimal.Decimal) (ClientResponse, bool, error)
	ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error)
	// AdjustCredit applies a signed delta to the named client's balance and
	// returns the resulting record.
	AdjustCredit(ctx context.Context, actor, name string, amount decimal.Decimal) (ClientResponse, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewClientService(
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ClientService {
	return &clientService{clientRepo: clientRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *clientService) AddClient(ctx context.Context, actor, name string, credit decimal.Decimal) (ClientResponse, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ClientResponse{}, false, ErrEmptyName
	}

	client := &model.Client{Name: name, Credit: credit}
	var created bool
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.clientRepo.CreateIfAbsent(txCtx, client)
		if txErr != nil {
			return fmt.Errorf("failed to create client: %w", txErr)
		}
		if !created {
			return nil
		}

		details, _ := json.Marshal(map[string]interface{}{"credit": credit.String()})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      actor,
			Action:     model.ActionAddClient,
			EntityID:   client.ID.String(),
			EntityName: name,
			Details:    string(details),
		})
	})
	if err != nil {
		return ClientResponse{}, false, err
	}

	if !created {
		// The insert was ignored; report the record that already holds the name.
		existing, getErr := s.clientRepo.GetByName(ctx, name)
		if getErr != nil {
			return ClientResponse{}, false, fmt.Errorf("failed to load existing client: %w", getErr)
		}
		return toClientResponse(*existing), false, nil
	}

	return toClientResponse(*client), true, nil
}

func (s *clientService) ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	clients, total, err := s.clientRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}

	return res, total, nil
}

func (s *clientService) AdjustCredit(ctx context.Context, actor, name string, amount decimal.Decimal) (ClientResponse, error) {
	client, err := s.clientRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, ErrClientNotFound
		}
		return ClientResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if adjErr := s.clientRepo.AdjustCredit(txCtx, client.ID, amount); adjErr != nil {
			return fmt.Errorf("failed to adjust credit: %w", adjErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"amount": amount.String()})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      actor,
			Action:     model.ActionAdjustCredit,
			EntityID:   client.ID.String(),
			EntityName: client.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return ClientResponse{}, err
	}

	// Reload for the post-delta balance; the delta was applied in SQL, so the
	// value read before the update is stale by construction.
	updated, err := s.clientRepo.GetByID(ctx, client.ID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("failed to reload client: %w", err)
	}

	return toClientResponse(*updated), nil
}

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:     c.ID.String(),
		Name:   c.Name,
		Credit: c.Credit.StringFixed(2),
	}
}
