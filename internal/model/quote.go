package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus enum constants
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// QuoteNumberPrefix is the document-number prefix; numbers are formatted as
// PRES-YYYY-NNNN, sequential per account per calendar year.
const QuoteNumberPrefix = "PRES"

// RetentionDays is how long a rejected quote is kept before it becomes
// eligible for deletion.
const RetentionDays = 30

// Quote is a priced proposal document owned by one account and addressed to
// one of its clients. Subtotal, tax amount, and total are derived from the
// lines and stored alongside them; a quote's stored totals never diverge from
// its stored lines because both are written in the same transaction.
type Quote struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_quotes_account_number" json:"-"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Number        string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_quotes_account_number" json:"number"`
	Title         string          `gorm:"type:varchar(255);not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(8,4);not null;default:21" json:"tax_rate"` // percentage
	TaxApplicable bool            `gorm:"not null;default:true" json:"tax_applicable"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Status        string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IssueDate     string          `gorm:"type:varchar(10)" json:"issue_date"`  // YYYY-MM-DD
	ValidUntil    string          `gorm:"type:varchar(10)" json:"valid_until"` // YYYY-MM-DD
	RejectedAt    *time.Time      `json:"rejected_at"`                         // non-nil iff status is "rejected"
	Notes         string          `gorm:"type:text" json:"notes"`
	Lines         []QuoteLine     `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuoteLine is one priced item within a quote, ordered by Position. Lines have
// no independent lifecycle: they are created and replaced as a set with their
// parent quote.
type QuoteLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Concept     string          `gorm:"type:varchar(255);not null" json:"concept"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"` // quantity × unit_price
	Position    int             `gorm:"not null;default:0" json:"position"`
}

func (l *QuoteLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
