package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]model.AuditEntry, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditEntry{}).Where("account_id = ?", accountID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
