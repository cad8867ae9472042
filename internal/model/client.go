package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientKind enum constants
const (
	ClientKindIndividual = "individual"
	ClientKindBusiness   = "business"
)

// Client is a customer record owned by a single account. The phone number is
// the only mandatory contact field.
type Client struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Surname        string    `gorm:"type:varchar(255)" json:"surname"`
	Email          string    `gorm:"type:varchar(255)" json:"email"`
	Phone          string    `gorm:"type:varchar(50);not null" json:"phone"`
	SecondaryPhone string    `gorm:"type:varchar(50)" json:"secondary_phone"`
	Address        string    `gorm:"type:varchar(255)" json:"address"`
	City           string    `gorm:"type:varchar(100)" json:"city"`
	PostalCode     string    `gorm:"type:varchar(20)" json:"postal_code"`
	Province       string    `gorm:"type:varchar(100)" json:"province"`
	Kind           string    `gorm:"type:varchar(20);not null;default:'individual'" json:"kind"` // individual, business
	TaxID          string    `gorm:"type:varchar(50)" json:"tax_id"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FullName joins name and surname for display in visit and quote listings.
func (c *Client) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}
