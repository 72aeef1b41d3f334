package repository

import (
	"context"

	"nutscredit/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminRepository defines the interface for data access of Admin entities
type AdminRepository interface {
	CreateIfAbsent(ctx context.Context, admin *model.Admin) (created bool, err error)
	GetByName(ctx context.Context, name string) (*model.Admin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	List(ctx context.Context, page, limit int) ([]model.Admin, int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository returns a new instance of AdminRepository
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CreateIfAbsent(ctx context.Context, admin *model.Admin) (bool, error) {
	res := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(admin)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *adminRepository) GetByName(ctx context.Context, name string) (*model.Admin, error) {
	var admin model.Admin
	if err := GetDB(ctx, r.db).First(&admin, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	var admin model.Admin
	if err := GetDB(ctx, r.db).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) List(ctx context.Context, page, limit int) ([]model.Admin, int64, error) {
	var admins []model.Admin
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Admin{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at ASC").Offset(offset).Limit(limit).Find(&admins).Error; err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}
