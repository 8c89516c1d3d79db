package transport

import "time"

// AcquireRequest is the body of POST /acquisitions.
type AcquireRequest struct {
	Mode               string `json:"mode" validate:"required,oneof=free guided"`
	FreeText           string `json:"freeText" validate:"required_if=Mode free,max=300"`
	Niche              string `json:"niche" validate:"required_if=Mode guided,max=120"`
	Region             string `json:"region" validate:"omitempty,region"`
	City               string `json:"city" validate:"max=120"`
	ExcludedCity       string `json:"excludedCity" validate:"max=120"`
	RequireContactInfo bool   `json:"requireContactInfo"`
	TargetCount        int    `json:"targetCount" validate:"required,min=1"`
	AddToPipeline      bool   `json:"addToPipeline"`
}

// LeadResponse is one acquired lead.
type LeadResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Address         string  `json:"address"`
	Phone           *string `json:"phone"`
	Website         *string `json:"website"`
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"reviewCount"`
	ExternalMapLink string  `json:"externalMapLink"`
}

// AcquireResponse is returned by POST /acquisitions.
type AcquireResponse struct {
	Leads     []LeadResponse `json:"leads"`
	Requested int            `json:"requested"`
	Accepted  int            `json:"accepted"`
	Remaining int            `json:"remaining"`
	Cancelled bool           `json:"cancelled"`
}

// HistoryEntryResponse is one row of GET /acquisitions/today.
type HistoryEntryResponse struct {
	LeadID    string    `json:"leadId"`
	LeadName  string    `json:"leadName"`
	LeadPhone *string   `json:"leadPhone"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodayResponse wraps today's acquisitions.
type TodayResponse struct {
	Items []HistoryEntryResponse `json:"items"`
	Total int                    `json:"total"`
}
