package transport

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AddLeadRequest adopts an acquired lead into the pipeline.
type AddLeadRequest struct {
	ExternalID      string  `json:"externalId" validate:"required,notblank,max=200"`
	Name            string  `json:"name" validate:"required,notblank,max=200"`
	Category        string  `json:"category" validate:"max=200"`
	Address         string  `json:"address" validate:"max=500"`
	Phone           string  `json:"phone" validate:"max=40"`
	Website         string  `json:"website" validate:"max=500"`
	Rating          float64 `json:"rating" validate:"min=0,max=5"`
	ReviewCount     int     `json:"reviewCount" validate:"min=0"`
	ExternalMapLink string  `json:"externalMapLink" validate:"max=1000"`
}

// UpdateLeadRequest edits the mutable fields. Omitted fields are unchanged.
type UpdateLeadRequest struct {
	Priority       *string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags           *[]string `json:"tags" validate:"omitempty,max=50,dive,max=60"`
	PotentialValue *float64  `json:"potentialValue" validate:"omitempty,min=0,max=1000000000000"`
	Notes          *string   `json:"notes" validate:"omitempty,max=10000"`
}

// ChangeStatusRequest moves a lead to another column.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=prospecting contacted negotiation won lost"`
}

// GoalRequest saves the monthly revenue goal.
type GoalRequest struct {
	MonthlyTarget float64 `json:"monthlyTarget" validate:"min=0,max=1000000000000"`
	ResetDay      int     `json:"resetDay" validate:"required,min=1,max=31"`
}

// LeadResponse is one pipeline lead.
type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	ExternalID      string     `json:"externalId"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Address         string     `json:"address"`
	Phone           *string    `json:"phone"`
	Website         *string    `json:"website"`
	Rating          float64    `json:"rating"`
	ReviewCount     int        `json:"reviewCount"`
	ExternalMapLink string     `json:"externalMapLink"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	Tags            []string   `json:"tags"`
	PotentialValue  float64    `json:"potentialValue"`
	Notes           string     `json:"notes"`
	AddedAt         time.Time  `json:"addedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	RecycleAt       *time.Time `json:"recycleAt"`
}

// ListLeadsResponse is returned by GET /pipeline/leads.
type ListLeadsResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// GoalResponse is the saved goal.
type GoalResponse struct {
	MonthlyTarget float64 `json:"monthlyTarget"`
	ResetDay      int     `json:"resetDay"`
}

// RevenueResponse is returned by GET /pipeline/revenue.
type RevenueResponse struct {
	PeriodStart time.Time `json:"periodStart"`
	WonValue    float64   `json:"wonValue"`
	Target      float64   `json:"target"`
	Progress    float64   `json:"progress"`
}

// ToCents converts a decimal currency amount to integer cents.
func ToCents(value float64) int64 {
	return int64(math.Round(value * 100))
}

// FromCents converts integer cents to a decimal currency amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
