package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitFilter narrows visit listings; empty fields are ignored.
type VisitFilter struct {
	Date   string // exact YYYY-MM-DD match
	Status string
}

type VisitRepository interface {
	Create(ctx context.Context, visit *model.Visit) error
	Save(ctx context.Context, visit *model.Visit) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Visit, error)
	List(ctx context.Context, accountID uuid.UUID, filter VisitFilter) ([]model.Visit, error)
	CountOnDate(ctx context.Context, accountID uuid.UUID, date string) (int64, error)
	CountByStatus(ctx context.Context, accountID uuid.UUID, statuses ...string) (int64, error)
}

type visitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	return GetDB(ctx, r.db).Create(visit).Error
}

func (r *visitRepository) Save(ctx context.Context, visit *model.Visit) error {
	return GetDB(ctx, r.db).Save(visit).Error
}

func (r *visitRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ? AND account_id = ?", id, accountID).Delete(&model.Visit{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *visitRepository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	err := GetDB(ctx, r.db).
		Preload("Client").
		First(&visit, "id = ? AND account_id = ?", id, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) List(ctx context.Context, accountID uuid.UUID, filter VisitFilter) ([]model.Visit, error) {
	query := GetDB(ctx, r.db).Preload("Client").Where("account_id = ?", accountID)
	if filter.Date != "" {
		query = query.Where("scheduled_date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var visits []model.Visit
	err := query.Order("scheduled_date DESC, scheduled_time ASC").Find(&visits).Error
	return visits, err
}

func (r *visitRepository) CountOnDate(ctx context.Context, accountID uuid.UUID, date string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Visit{}).
		Where("account_id = ? AND scheduled_date = ?", accountID, date).
		Count(&count).Error
	return count, err
}

func (r *visitRepository) CountByStatus(ctx context.Context, accountID uuid.UUID, statuses ...string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Visit{}).
		Where("account_id = ? AND status IN ?", accountID, statuses).
		Count(&count).Error
	return count, err
}
