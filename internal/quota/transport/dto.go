package transport

import "time"

// QuotaResponse is returned by GET /quota.
type QuotaResponse struct {
	PlanID      string    `json:"planId"`
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	Reserved    int       `json:"reserved"`
	Remaining   int       `json:"remaining"`
	PeriodStart time.Time `json:"periodStart"`
	NextReset   time.Time `json:"nextReset"`
}
