package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action constants
const (
	ActionCreateClient      = "CREATE_CLIENT"
	ActionDeleteClient      = "DELETE_CLIENT"
	ActionCreateVisit       = "CREATE_VISIT"
	ActionCompleteVisit     = "COMPLETE_VISIT"
	ActionDeleteVisit       = "DELETE_VISIT"
	ActionCreateQuote       = "CREATE_QUOTE"
	ActionUpdateQuote       = "UPDATE_QUOTE"
	ActionChangeQuoteStatus = "CHANGE_QUOTE_STATUS"
	ActionDeleteQuote       = "DELETE_QUOTE"
)

// AuditEntry tracks who did what and when, scoped per account like every
// other entity.
type AuditEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityKind string    `gorm:"type:varchar(30);not null" json:"entity_kind"` // client, visit, quote
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (e *AuditEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
