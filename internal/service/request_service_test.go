package service

import (
	"context"
	"testing"

	"nutscredit/internal/auth"
	"nutscredit/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainAuthority = "chief-1"

type requestFixture struct {
	service   RequestService
	requests  *fakeRequestRepo
	nuts      *fakeNutRepo
	admins    *fakeAdminRepo
	audit     *fakeAuditRepo
	messenger *fakeMessenger
	admin     *model.Admin
	nut       *model.Nut
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	requests := newFakeRequestRepo()
	nuts := newFakeNutRepo()
	admins := newFakeAdminRepo()
	audit := newFakeAuditRepo()
	messenger := newFakeMessenger()
	guard := auth.NewGuard(mainAuthority, admins)

	admin := &model.Admin{Name: "Bob"}
	_, err := admins.CreateIfAbsent(context.Background(), admin)
	require.NoError(t, err)
	nut := &model.Nut{Name: "Almonds", Packages: 100}
	_, err = nuts.CreateIfAbsent(context.Background(), nut)
	require.NoError(t, err)

	svc := NewRequestService(requests, nuts, admins, audit, fakeTxManager{}, guard, messenger, zerolog.Nop())
	return &requestFixture{
		service:   svc,
		requests:  requests,
		nuts:      nuts,
		admins:    admins,
		audit:     audit,
		messenger: messenger,
		admin:     admin,
		nut:       nut,
	}
}

func submitInput(fx *requestFixture) SubmitRequestInput {
	return SubmitRequestInput{
		AdminName:       fx.admin.Name,
		NutName:         fx.nut.Name,
		Packages:        5,
		CreditPaid:      decimal.NewFromInt(250),
		Description:     "urgent restock",
		RequesterChatID: "chat-bob",
	}
}

func TestSubmit_CreatesPendingAndPromptsAuthority(t *testing.T) {
	fx := newRequestFixture(t)

	resp, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, resp.Status)
	assert.Equal(t, "Bob", resp.AdminName)
	assert.Equal(t, "Almonds", resp.NutName)
	assert.Equal(t, "250.00", resp.CreditPaid)

	// The approval prompt went to the main authority with both buttons
	// carrying the request id.
	require.Len(t, fx.messenger.prompts, 1)
	prompt := fx.messenger.prompts[0]
	assert.Equal(t, mainAuthority, prompt.ChatID)
	assert.Contains(t, prompt.Text, "Bob")
	assert.Contains(t, prompt.Text, "Almonds")
	require.Len(t, prompt.Buttons, 1)
	require.Len(t, prompt.Buttons[0], 2)
	assert.Equal(t, "request:approve:"+resp.ID, prompt.Buttons[0][0].Data)
	assert.Equal(t, "request:reject:"+resp.ID, prompt.Buttons[0][1].Data)

	// Audit trail captured the submission.
	require.Len(t, fx.audit.entries, 1)
	assert.Equal(t, model.ActionSubmitRequest, fx.audit.entries[0].Action)
}

func TestSubmit_Validation(t *testing.T) {
	fx := newRequestFixture(t)

	t.Run("non-positive packages", func(t *testing.T) {
		in := submitInput(fx)
		in.Packages = 0
		_, err := fx.service.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidPackages)
	})

	t.Run("negative credit", func(t *testing.T) {
		in := submitInput(fx)
		in.CreditPaid = decimal.NewFromInt(-5)
		_, err := fx.service.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidCredit)
	})

	t.Run("unregistered admin", func(t *testing.T) {
		in := submitInput(fx)
		in.AdminName = "Mallory"
		_, err := fx.service.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrAdminNotRegistered)
	})

	t.Run("unknown nut", func(t *testing.T) {
		in := submitInput(fx)
		in.NutName = "Pistachios"
		_, err := fx.service.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrNutNotFound)
	})

	// None of the failed submissions left a record behind.
	records, _, err := fx.requests.List(context.Background(), "", 1, 50)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmit_PromptFailureDoesNotUnwindInsert(t *testing.T) {
	fx := newRequestFixture(t)
	fx.messenger.promptErr = assert.AnError

	resp, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)

	stored, err := fx.requests.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, stored.Status)
}

func TestDecide_ApproveNotifiesRequesterAndEditsPrompt(t *testing.T) {
	fx := newRequestFixture(t)

	resp, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	prompt := MessageRef{ChatID: mainAuthority, MessageID: "m1"}
	result, err := fx.service.Decide(context.Background(), id, DecisionApprove, "Chief", prompt)
	require.NoError(t, err)
	assert.False(t, result.AlreadyDecided)
	assert.Equal(t, model.RequestApproved, result.Request.Status)
	assert.Equal(t, "Chief", result.Request.DecidedBy)

	stored, err := fx.requests.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)
	require.NotNil(t, stored.DecidedAt)

	// Approval prompt was rewritten in place.
	edited, ok := fx.messenger.edits[prompt]
	require.True(t, ok)
	assert.Contains(t, edited, "approved by Chief")

	// The requester got exactly one notification on their own chat.
	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, "chat-bob", fx.messenger.sent[0].ChatID)
	assert.Contains(t, fx.messenger.sent[0].Text, "approved")
}

func TestDecide_Reject(t *testing.T) {
	fx := newRequestFixture(t)

	resp, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)

	result, err := fx.service.Decide(context.Background(), uuid.MustParse(resp.ID), DecisionReject, "Chief", MessageRef{})
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, result.Request.Status)

	require.Len(t, fx.messenger.sent, 1)
	assert.Contains(t, fx.messenger.sent[0].Text, "rejected")
}

func TestDecide_FirstDecisionWins(t *testing.T) {
	fx := newRequestFixture(t)

	resp, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	_, err = fx.service.Decide(context.Background(), id, DecisionApprove, "Chief", MessageRef{})
	require.NoError(t, err)

	// The second press, with the opposite outcome, changes nothing.
	result, err := fx.service.Decide(context.Background(), id, DecisionReject, "Chief", MessageRef{})
	require.NoError(t, err)
	assert.True(t, result.AlreadyDecided)
	assert.Equal(t, model.RequestApproved, result.Request.Status)

	stored, err := fx.requests.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)

	// No second requester notification went out.
	assert.Len(t, fx.messenger.sent, 1)
}

func TestDecide_UnknownRequest(t *testing.T) {
	fx := newRequestFixture(t)

	_, err := fx.service.Decide(context.Background(), uuid.New(), DecisionApprove, "Chief", MessageRef{})
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestDecide_UnknownAction(t *testing.T) {
	fx := newRequestFixture(t)

	_, err := fx.service.Decide(context.Background(), uuid.New(), "shrug", "Chief", MessageRef{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown decision action")
}

func TestDecide_NotificationFailureDoesNotUnwindDecision(t *testing.T) {
	fx := newRequestFixture(t)

	resp, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	fx.messenger.sendErr = assert.AnError
	result, err := fx.service.Decide(context.Background(), id, DecisionApprove, "Chief", MessageRef{})
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, result.Request.Status)

	stored, err := fx.requests.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)
}

func TestListRequests_StatusFilter(t *testing.T) {
	fx := newRequestFixture(t)

	first, err := fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)
	_, err = fx.service.Submit(context.Background(), submitInput(fx))
	require.NoError(t, err)

	_, err = fx.service.Decide(context.Background(), uuid.MustParse(first.ID), DecisionApprove, "Chief", MessageRef{})
	require.NoError(t, err)

	pending, total, err := fx.service.ListRequests(context.Background(), model.RequestPending, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, model.RequestPending, pending[0].Status)

	all, total, err := fx.service.ListRequests(context.Background(), "", 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestParsePackages(t *testing.T) {
	n, err := ParsePackages(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ParsePackages("abc")
	assert.ErrorIs(t, err, ErrInvalidPackages)
}

func TestParseCredit(t *testing.T) {
	d, err := ParseCredit("12.50")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(12.5).Equal(d))

	_, err = ParseCredit("lots")
	assert.ErrorIs(t, err, ErrInvalidCredit)
}
