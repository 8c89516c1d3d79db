// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"beleads_backend/platform/events"
	"beleads_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Acquisition Domain Events
// =============================================================================

// AcquiredLead is the lead payload carried by acquisition events.
type AcquiredLead struct {
	ExternalID      string  `json:"externalId"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Address         string  `json:"address"`
	Phone           string  `json:"phone,omitempty"`
	Website         string  `json:"website,omitempty"`
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"reviewCount"`
	ExternalMapLink string  `json:"externalMapLink,omitempty"`
}

// LeadsAcquired is published after a search committed its accepted leads.
// AddToPipeline asks the pipeline module to adopt every lead.
type LeadsAcquired struct {
	BaseEvent
	SubscriberID  uuid.UUID      `json:"subscriberId"`
	Query         string         `json:"query"`
	Mode          string         `json:"mode"`
	Leads         []AcquiredLead `json:"leads"`
	AddToPipeline bool           `json:"addToPipeline"`
}

func (e LeadsAcquired) EventName() string { return "acquisition.leads.acquired" }

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// LeadStatusChanged is published when a user moves a pipeline lead.
type LeadStatusChanged struct {
	BaseEvent
	SubscriberID uuid.UUID  `json:"subscriberId"`
	LeadID       uuid.UUID  `json:"leadId"`
	OldStatus    string     `json:"oldStatus"`
	NewStatus    string     `json:"newStatus"`
	RecycleAt    *time.Time `json:"recycleAt,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "pipeline.lead.status_changed" }

// LeadRecycled is published when a lost lead returns to prospecting.
type LeadRecycled struct {
	BaseEvent
	SubscriberID uuid.UUID `json:"subscriberId"`
	LeadID       uuid.UUID `json:"leadId"`
	RecycledAt   time.Time `json:"recycledAt"`
}

func (e LeadRecycled) EventName() string { return "pipeline.lead.recycled" }
