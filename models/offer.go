package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/hantverkarai/hantverkar-api/pricing"
)

// Offer statuses. The set is closed; anything else is rejected at the
// boundary. Transitions between members are unrestricted.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Offer represents a priced customer quote owned by exactly one user.
//
// Pricing inputs are hours, hourly_rate and material_cost; everything from
// labor_cost down to total_inc_vat is derived and recomputed on every write
// that touches the inputs. There is no soft delete: deleting an offer is a
// hard delete, scoped to its owner.
type Offer struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"not null;index" json:"owner_id"` // foreign key to users, immutable after creation
	Owner   User `gorm:"foreignKey:OwnerID" json:"-"`

	CustomerName string `gorm:"not null" json:"customer_name"`
	WorkCategory string `gorm:"not null" json:"work_category"` // renovation, plumbing, electrical
	Description  string `gorm:"type:text;not null" json:"description"`
	Materials    string `gorm:"type:text;not null" json:"materials"`

	// Pricing inputs
	Hours        float64 `gorm:"not null" json:"hours"`
	HourlyRate   float64 `gorm:"not null" json:"hourly_rate"`
	MaterialCost float64 `gorm:"not null" json:"material_cost"`

	// Derived pricing fields, never set directly
	LaborCost   float64 `json:"labor_cost"`
	VatRate     float64 `gorm:"default:25" json:"vat_rate"`
	VatAmount   float64 `json:"vat_amount"`
	TotalExVat  float64 `json:"total_ex_vat"`
	TotalIncVat float64 `json:"total_inc_vat"`

	// Legal terms, required before an offer leaves draft
	ValidUntil    time.Time `gorm:"not null" json:"valid_until"`
	DeliveryTerms string    `gorm:"not null" json:"delivery_terms"`
	PaymentTerms  string    `gorm:"not null" json:"payment_terms"`

	Status string `gorm:"not null;default:'draft'" json:"status"`

	// Optional site photo stored in S3
	PhotoS3Key *string `json:"photo_s3_key,omitempty"`
	PhotoURL   *string `gorm:"-" json:"photo_url,omitempty"` // computed, presigned

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Offer model
func (Offer) TableName() string {
	return "offers"
}

// ValidStatus reports whether s is a member of the offer status set.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// RecomputePricing rederives all pricing fields from the current inputs.
// Every code path that mutates hours, hourly_rate or material_cost must call
// this before persisting, so stored totals can never go stale.
func (o *Offer) RecomputePricing() {
	b := pricing.Calculate(pricing.Input{
		Category:     o.WorkCategory,
		Hours:        o.Hours,
		HourlyRate:   o.HourlyRate,
		MaterialCost: o.MaterialCost,
	})
	o.HourlyRate = b.HourlyRate
	o.LaborCost = b.LaborCost
	o.VatRate = b.VatRate
	o.VatAmount = b.VatAmount
	o.TotalExVat = b.TotalExVat
	o.TotalIncVat = b.TotalIncVat
}

// OwnedBy is a query scope restricting offers to one owner. Every offer
// lookup goes through this scope so a record belonging to another user is
// indistinguishable from an absent one.
func OwnedBy(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}
