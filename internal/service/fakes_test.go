package service

import (
	"context"
	"sync"

	"nutscredit/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes for the repository layer. They honor the same contracts
// the gorm implementations do: name uniqueness on create, ErrRecordNotFound
// on misses, signed deltas applied in the store.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *fakeClientRepo) CreateIfAbsent(ctx context.Context, client *model.Client) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Name == client.Name {
			return false, nil
		}
	}
	client.ID = uuid.New()
	cp := *client
	r.clients[client.ID] = &cp
	return true, nil
}

func (r *fakeClientRepo) GetByName(ctx context.Context, name string) (*model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClientRepo) List(ctx context.Context, page, limit int) ([]model.Client, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClientRepo) AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Credit = c.Credit.Add(delta)
	return nil
}

type fakeNutRepo struct {
	mu   sync.Mutex
	nuts map[uuid.UUID]*model.Nut
}

func newFakeNutRepo() *fakeNutRepo {
	return &fakeNutRepo{nuts: make(map[uuid.UUID]*model.Nut)}
}

func (r *fakeNutRepo) CreateIfAbsent(ctx context.Context, nut *model.Nut) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nuts {
		if n.Name == nut.Name {
			return false, nil
		}
	}
	nut.ID = uuid.New()
	cp := *nut
	r.nuts[nut.ID] = &cp
	return true, nil
}

func (r *fakeNutRepo) GetByName(ctx context.Context, name string) (*model.Nut, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nuts {
		if n.Name == name {
			cp := *n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNutRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Nut, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.nuts[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNutRepo) List(ctx context.Context, page, limit int) ([]model.Nut, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Nut, 0, len(r.nuts))
	for _, n := range r.nuts {
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNutRepo) AdjustPackages(ctx context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nuts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.Packages += delta
	return nil
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[uuid.UUID]*model.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[uuid.UUID]*model.Admin)}
}

func (r *fakeAdminRepo) CreateIfAbsent(ctx context.Context, admin *model.Admin) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Name == admin.Name {
			return false, nil
		}
	}
	admin.ID = uuid.New()
	cp := *admin
	r.admins[admin.ID] = &cp
	return true, nil
}

func (r *fakeAdminRepo) GetByName(ctx context.Context, name string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAdminRepo) List(ctx context.Context, page, limit int) ([]model.Admin, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*model.Request)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *model.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = uuid.New()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRequestRepo) List(ctx context.Context, status string, page, limit int) ([]model.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Request, 0, len(r.requests))
	for _, req := range r.requests {
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, req *model.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out, int64(len(out)), nil
}

// sentMessage records one outbound delivery through the fake messenger.
type sentMessage struct {
	ChatID  string
	Text    string
	Buttons [][]Button
}

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []sentMessage
	prompts   []sentMessage
	edits     map[MessageRef]string
	sendErr   error
	promptErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{edits: make(map[MessageRef]string)}
}

func (m *fakeMessenger) SendText(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *fakeMessenger) SendPrompt(ctx context.Context, chatID, text string, buttons [][]Button) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.promptErr != nil {
		return MessageRef{}, m.promptErr
	}
	m.prompts = append(m.prompts, sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return MessageRef{ChatID: chatID, MessageID: uuid.NewString()}, nil
}

func (m *fakeMessenger) Edit(ctx context.Context, ref MessageRef, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits[ref] = text
	return nil
}
