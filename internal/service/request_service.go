package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nutscredit/internal/auth"
	"nutscredit/internal/metrics"
	"nutscredit/internal/model"
	"nutscredit/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Decision actions as they appear in button callback payloads.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// CallbackPrefix tags decision payloads: "request:<action>:<id>". The
// payload is self-describing because the deciding session has no memory of
// the submitting session.
const CallbackPrefix = "request"

// DTOs
type SubmitRequestInput struct {
	AdminName       string // submitter's display name, matched against the Admins table
	NutName         string
	Packages        int
	CreditPaid      decimal.Decimal
	Description     string
	RequesterChatID string
}

type RequestResponse struct {
	ID          string `json:"id"`
	AdminName   string `json:"admin_name"`
	NutName     string `json:"nut_name"`
	Packages    int    `json:"packages"`
	CreditPaid  string `json:"credit_paid"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DecidedBy   string `json:"decided_by,omitempty"`
}

// DecisionResult reports the terminal state after a decide call.
// AlreadyDecided means an earlier decision won and nothing was changed or
// re-notified; Status then carries the outcome that stood.
type DecisionResult struct {
	Request        RequestResponse
	AlreadyDecided bool
}

type RequestService interface {
	// Submit records a PENDING request and dispatches the approval prompt to
	// the main authority. The record is inserted before the prompt goes out:
	// the button payloads embed the generated id.
	Submit(ctx context.Context, in SubmitRequestInput) (RequestResponse, error)
	// Decide applies a terminal status to a pending request, rewrites the
	// approval prompt in place, and notifies the requester best-effort.
	Decide(ctx context.Context, requestID uuid.UUID, action, decidedBy string, prompt MessageRef) (DecisionResult, error)
	ListRequests(ctx context.Context, status string, page, limit int) ([]RequestResponse, int64, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	nutRepo     repository.NutRepository
	adminRepo   repository.AdminRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	guard       *auth.Guard
	messenger   Messenger
	log         zerolog.Logger
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	nutRepo repository.NutRepository,
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	guard *auth.Guard,
	messenger Messenger,
	log zerolog.Logger,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		nutRepo:     nutRepo,
		adminRepo:   adminRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		guard:       guard,
		messenger:   messenger,
		log:         log,
	}
}

// ParsePackages parses a user-typed package count for a request.
func ParsePackages(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidPackages
	}
	return n, nil
}

// ParseCredit parses a user-typed credit amount.
func ParseCredit(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidCredit
	}
	return d, nil
}

func (s *requestService) Submit(ctx context.Context, in SubmitRequestInput) (RequestResponse, error) {
	if in.Packages <= 0 {
		return RequestResponse{}, ErrInvalidPackages
	}
	if in.CreditPaid.IsNegative() {
		return RequestResponse{}, ErrInvalidCredit
	}

	admin, err := s.guard.RegisteredAdmin(ctx, in.AdminName)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("failed to verify admin: %w", err)
	}
	if admin == nil {
		return RequestResponse{}, ErrAdminNotRegistered
	}

	nut, err := s.nutRepo.GetByName(ctx, in.NutName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, ErrNutNotFound
		}
		return RequestResponse{}, fmt.Errorf("failed to look up nut: %w", err)
	}

	req := &model.Request{
		AdminID:         admin.ID,
		NutID:           nut.ID,
		Packages:        in.Packages,
		CreditPaid:      in.CreditPaid,
		Description:     in.Description,
		RequesterChatID: in.RequesterChatID,
		Status:          model.RequestPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requestRepo.Create(txCtx, req); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"nut":         nut.Name,
			"packages":    in.Packages,
			"credit_paid": in.CreditPaid.String(),
		})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      admin.Name,
			Action:     model.ActionSubmitRequest,
			EntityID:   req.ID.String(),
			EntityName: nut.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return RequestResponse{}, err
	}

	metrics.RequestsSubmitted.Inc()

	// The record is committed and the id is stable; from here on delivery is
	// best-effort and never unwinds the insert.
	s.sendApprovalPrompt(ctx, req, admin.Name, nut.Name)

	return RequestResponse{
		ID:          req.ID.String(),
		AdminName:   admin.Name,
		NutName:     nut.Name,
		Packages:    req.Packages,
		CreditPaid:  req.CreditPaid.StringFixed(2),
		Description: req.Description,
		Status:      req.Status,
	}, nil
}

func (s *requestService) sendApprovalPrompt(ctx context.Context, req *model.Request, adminName, nutName string) {
	authority := s.guard.MainAuthorityID()
	if authority == "" {
		return
	}

	note := req.Description
	if note == "" {
		note = "-"
	}
	text := fmt.Sprintf(
		"📩 New request from %s\nNut: %s\nPackages: %d\nCredit Paid: %s\nNote: %s",
		adminName, nutName, req.Packages, req.CreditPaid.StringFixed(2), note,
	)
	buttons := [][]Button{{
		{Text: "✅ Approve", Data: fmt.Sprintf("%s:%s:%s", CallbackPrefix, DecisionApprove, req.ID)},
		{Text: "❌ Reject", Data: fmt.Sprintf("%s:%s:%s", CallbackPrefix, DecisionReject, req.ID)},
	}}

	if _, err := s.messenger.SendPrompt(ctx, authority, text, buttons); err != nil {
		metrics.NotificationFailures.Inc()
		s.log.Warn().Err(err).
			Str("request_id", req.ID.String()).
			Msg("approval prompt could not be delivered")
	}
}

func (s *requestService) Decide(ctx context.Context, requestID uuid.UUID, action, decidedBy string, prompt MessageRef) (DecisionResult, error) {
	var status string
	switch action {
	case DecisionApprove:
		status = model.RequestApproved
	case DecisionReject:
		status = model.RequestRejected
	default:
		return DecisionResult{}, fmt.Errorf("unknown decision action %q", action)
	}

	var req *model.Request
	var alreadyDecided bool
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load request: %w", findErr)
		}
		req = found

		// First decision wins. A second press, same outcome or not, changes
		// nothing and triggers no second notification.
		if req.Status != model.RequestPending {
			alreadyDecided = true
			return nil
		}

		now := time.Now()
		req.Status = status
		req.DecidedBy = decidedBy
		req.DecidedAt = &now
		if saveErr := s.requestRepo.Update(txCtx, req); saveErr != nil {
			return fmt.Errorf("failed to update request: %w", saveErr)
		}

		auditAction := model.ActionApproveRequest
		if status == model.RequestRejected {
			auditAction = model.ActionRejectRequest
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:    decidedBy,
			Action:   auditAction,
			EntityID: req.ID.String(),
		})
	})
	if err != nil {
		return DecisionResult{}, err
	}

	adminName, nutName := s.resolveNames(ctx, req)
	resp := RequestResponse{
		ID:          req.ID.String(),
		AdminName:   adminName,
		NutName:     nutName,
		Packages:    req.Packages,
		CreditPaid:  req.CreditPaid.StringFixed(2),
		Description: req.Description,
		Status:      req.Status,
		DecidedBy:   req.DecidedBy,
	}

	if alreadyDecided {
		return DecisionResult{Request: resp, AlreadyDecided: true}, nil
	}

	metrics.RequestsDecided.WithLabelValues(strings.ToLower(req.Status)).Inc()

	// Rewrite the approval prompt so the decision is visible in place.
	if prompt.ChatID != "" && prompt.MessageID != "" {
		var edited string
		if status == model.RequestApproved {
			edited = fmt.Sprintf("✅ Request approved by %s — %d × %s (paid: %s).",
				decidedBy, req.Packages, nutName, req.CreditPaid.StringFixed(2))
		} else {
			edited = fmt.Sprintf("❌ Request rejected by %s — %d × %s.",
				decidedBy, req.Packages, nutName)
		}
		if editErr := s.messenger.Edit(ctx, prompt, edited); editErr != nil {
			metrics.NotificationFailures.Inc()
			s.log.Warn().Err(editErr).
				Str("request_id", req.ID.String()).
				Msg("approval prompt could not be edited")
		}
	}

	// Best-effort notification back to the submitter. The status transition
	// is already committed; a delivery failure is logged and swallowed.
	if req.RequesterChatID != "" {
		var note string
		if status == model.RequestApproved {
			note = fmt.Sprintf("✅ Your request for %d × %s was approved.", req.Packages, nutName)
		} else {
			note = fmt.Sprintf("❌ Your request for %d × %s was rejected.", req.Packages, nutName)
		}
		if sendErr := s.messenger.SendText(ctx, req.RequesterChatID, note); sendErr != nil {
			metrics.NotificationFailures.Inc()
			s.log.Warn().Err(sendErr).
				Str("request_id", req.ID.String()).
				Str("chat_id", req.RequesterChatID).
				Msg("requester notification could not be delivered")
		}
	}

	return DecisionResult{Request: resp}, nil
}

// resolveNames looks up the referenced admin and nut for display. If either
// lookup fails the decision still stands; the text falls back to a
// placeholder rather than failing the whole operation.
func (s *requestService) resolveNames(ctx context.Context, req *model.Request) (adminName, nutName string) {
	adminName, nutName = "Unknown", "Unknown"
	if admin, err := s.adminRepo.GetByID(ctx, req.AdminID); err == nil {
		adminName = admin.Name
	}
	if nut, err := s.nutRepo.GetByID(ctx, req.NutID); err == nil {
		nutName = nut.Name
	}
	return adminName, nutName
}

func (s *requestService) ListRequests(ctx context.Context, status string, page, limit int) ([]RequestResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requestRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		resp := RequestResponse{
			ID:          r.ID.String(),
			Packages:    r.Packages,
			CreditPaid:  r.CreditPaid.StringFixed(2),
			Description: r.Description,
			Status:      r.Status,
			DecidedBy:   r.DecidedBy,
			AdminName:   "Unknown",
			NutName:     "Unknown",
		}
		if r.Admin != nil {
			resp.AdminName = r.Admin.Name
		}
		if r.Nut != nil {
			resp.NutName = r.Nut.Name
		}
		res = append(res, resp)
	}

	return res, total, nil
}
