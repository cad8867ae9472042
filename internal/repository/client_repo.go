package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientRepository gives access to an account's clients. Every method takes
// the owning account id; an entity owned by another account behaves exactly
// like a missing one.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Save(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, accountID uuid.UUID) ([]model.Client, error)
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Save(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ? AND account_id = ?", id, accountID).Delete(&model.Client{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	err := GetDB(ctx, r.db).First(&client, "id = ? AND account_id = ?", id, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, accountID uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	err := GetDB(ctx, r.db).
		Where("account_id = ?", accountID).
		Order("name ASC").
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}
