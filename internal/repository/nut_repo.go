package repository

import (
	"context"

	"nutscredit/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NutRepository defines the interface for data access of Nut entities
type NutRepository interface {
	// CreateIfAbsent inserts the nut unless the name is already taken.
	// A duplicate name is a silent no-op (created=false), not an error.
	CreateIfAbsent(ctx context.Context, nut *model.Nut) (created bool, err error)
	GetByName(ctx context.Context, name string) (*model.Nut, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Nut, error)
	List(ctx context.Context, page, limit int) ([]model.Nut, int64, error)
	// AdjustPackages applies a signed delta as a single SQL read-modify-write.
	AdjustPackages(ctx context.Context, id uuid.UUID, delta int) error
}

type nutRepository struct {
	db *gorm.DB
}

// NewNutRepository returns a new instance of NutRepository
func NewNutRepository(db *gorm.DB) NutRepository {
	return &nutRepository{db: db}
}

func (r *nutRepository) CreateIfAbsent(ctx context.Context, nut *model.Nut) (bool, error) {
	res := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(nut)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *nutRepository) GetByName(ctx context.Context, name string) (*model.Nut, error) {
	var nut model.Nut
	if err := GetDB(ctx, r.db).First(&nut, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &nut, nil
}

func (r *nutRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Nut, error) {
	var nut model.Nut
	if err := GetDB(ctx, r.db).First(&nut, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &nut, nil
}

func (r *nutRepository) List(ctx context.Context, page, limit int) ([]model.Nut, int64, error) {
	var nuts []model.Nut
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Nut{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at ASC").Offset(offset).Limit(limit).Find(&nuts).Error; err != nil {
		return nil, 0, err
	}

	return nuts, total, nil
}

func (r *nutRepository) AdjustPackages(ctx context.Context, id uuid.UUID, delta int) error {
	res := GetDB(ctx, r.db).Model(&model.Nut{}).
		Where("id = ?", id).
		Update("packages", gorm.Expr("packages + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
