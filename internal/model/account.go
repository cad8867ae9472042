package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a technician's tenant identity and the root of ownership:
// every client, visit, and quote belongs to exactly one account.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Surname   string    `gorm:"type:varchar(255)" json:"surname"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Company   string    `gorm:"type:varchar(255)" json:"company"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the primary key in the application so the schema works
// on databases without a native UUID generator.
func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
