package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitStatus enum constants
const (
	VisitStatusPending   = "pending"
	VisitStatusConfirmed = "confirmed"
	VisitStatusCompleted = "completed"
	VisitStatusCancelled = "cancelled"
)

// VisitCategory enum constants
const (
	VisitCategoryRepair      = "repair"
	VisitCategoryInstall     = "installation"
	VisitCategoryMaintenance = "maintenance"
	VisitCategoryInspection  = "inspection"
)

// VisitPriority enum constants
const (
	VisitPriorityLow    = "low"
	VisitPriorityNormal = "normal"
	VisitPriorityHigh   = "high"
	VisitPriorityUrgent = "urgent"
)

// Visit is a scheduled or completed service appointment for a client.
// CompletedAt is set if and only if the status is "completed"; the signature
// fields may be filled on completion but are never required.
type Visit struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	ClientID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	ScheduledDate string     `gorm:"type:varchar(10);not null;index" json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string     `gorm:"type:varchar(5)" json:"scheduled_time"`                 // HH:MM, optional
	Category      string     `gorm:"type:varchar(30);not null;default:'repair'" json:"category"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority      string     `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	InternalNotes string     `gorm:"type:text" json:"internal_notes"`
	Signature     string     `gorm:"type:text" json:"signature"` // base64 image blob
	SignerName    string     `gorm:"type:varchar(255)" json:"signer_name"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Visit) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
