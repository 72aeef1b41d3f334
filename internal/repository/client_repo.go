package repository

import (
	"context"

	"nutscredit/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientRepository defines the interface for data access of Client entities
type ClientRepository interface {
	// CreateIfAbsent inserts the client unless the name is already taken.
	// A duplicate name is a silent no-op (created=false), not an error.
	CreateIfAbsent(ctx context.Context, client *model.Client) (created bool, err error)
	GetByName(ctx context.Context, name string) (*model.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, page, limit int) ([]model.Client, int64, error)
	// AdjustCredit applies a signed delta as a single SQL read-modify-write
	// so concurrent adjustments never lose an update.
	AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository returns a new instance of ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) CreateIfAbsent(ctx context.Context, client *model.Client) (bool, error) {
	res := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(client)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *clientRepository) GetByName(ctx context.Context, name string) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Client{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at ASC").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

func (r *clientRepository) AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	res := GetDB(ctx, r.db).Model(&model.Client{}).
		Where("id = ?", id).
		Update("credit", gorm.Expr("credit + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
