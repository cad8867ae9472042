package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteRepository gives access to an account's quotes and their lines. Reads
// preload lines ordered by position; writes that touch the line set must run
// inside a TransactionManager transaction so quote and lines commit together.
type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	Save(ctx context.Context, quote *model.Quote) error
	ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []model.QuoteLine) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, accountID uuid.UUID, status string) ([]model.Quote, error)
	ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]model.Quote, error)
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, accountID uuid.UUID, statuses ...string) (int64, error)
	CountByNumberPrefix(ctx context.Context, accountID uuid.UUID, prefix string) (int64, error)
	SumAcceptedByIssueMonth(ctx context.Context, accountID uuid.UUID, monthPrefix string) (decimal.Decimal, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) Save(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Omit("Lines").Save(quote).Error
}

// ReplaceLines swaps the full line set of a quote. Callers replace lines and
// persist recomputed totals within one transaction.
func (r *quoteRepository) ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []model.QuoteLine) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("quote_id = ?", quoteID).Delete(&model.QuoteLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].QuoteID = quoteID
	}
	return db.Create(&lines).Error
}

func (r *quoteRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	res := db.Where("id = ? AND account_id = ?", id, accountID).Delete(&model.Quote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	// Lines cascade at the database level; repeat in the ORM for drivers that
	// skip foreign-key enforcement.
	return db.Where("quote_id = ?", id).Delete(&model.QuoteLine{}).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Client").
		First(&quote, "id = ? AND account_id = ?", id, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, accountID uuid.UUID, status string) ([]model.Quote, error) {
	query := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Client").
		Where("account_id = ?", accountID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var quotes []model.Quote
	err := query.Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepository) ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]model.Quote, error) {
	var quotes []model.Quote
	err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Client").
		Where("account_id = ? AND client_id = ?", accountID, clientID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepository) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *quoteRepository) CountByStatus(ctx context.Context, accountID uuid.UUID, statuses ...string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("account_id = ? AND status IN ?", accountID, statuses).
		Count(&count).Error
	return count, err
}

func (r *quoteRepository) CountByNumberPrefix(ctx context.Context, accountID uuid.UUID, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("account_id = ? AND number LIKE ?", accountID, prefix+"%").
		Count(&count).Error
	return count, err
}

// SumAcceptedByIssueMonth totals accepted quotes whose issue date falls in the
// given month (prefix YYYY-MM).
func (r *quoteRepository) SumAcceptedByIssueMonth(ctx context.Context, accountID uuid.UUID, monthPrefix string) (decimal.Decimal, error) {
	var row struct {
		Value decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Select("COALESCE(SUM(total), 0) as value").
		Where("account_id = ? AND status = ? AND issue_date LIKE ?",
			accountID, model.QuoteStatusAccepted, monthPrefix+"%").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Value, nil
}
