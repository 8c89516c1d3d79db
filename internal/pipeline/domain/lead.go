// Package domain holds the CRM lead aggregate, its lifecycle rules, the
// recycle scan and revenue aggregation.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is a pipeline column.
type Status string

const (
	StatusProspecting Status = "prospecting"
	StatusContacted   Status = "contacted"
	StatusNegotiation Status = "negotiation"
	StatusWon         Status = "won"
	StatusLost        Status = "lost"
)

// Priority ranks leads within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultRecycleCooldown is how long a lost lead waits before recycling.
const DefaultRecycleCooldown = 45 * 24 * time.Hour

// RecycleMarker prefixes the note appended when a lead is recycled.
const RecycleMarker = "[Smart Recycle]"

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusProspecting, StatusContacted, StatusNegotiation, StatusWon, StatusLost:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// ParsePriority validates a priority string.
func ParsePriority(value string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(value))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", value)
	}
}

// Source is the acquisition-time lead copied by value into the CRM.
type Source struct {
	ExternalID      string
	Name            string
	Category        string
	Address         string
	Phone           string
	Website         string
	Rating          float64
	ReviewCount     int
	ExternalMapLink string
}

// CRMLead is a lead adopted into the pipeline.
// RecycleAt is set if and only if Status is lost.
type CRMLead struct {
	ID                  uuid.UUID
	SubscriberID        uuid.UUID
	ExternalID          string
	Name                string
	Category            string
	Address             string
	Phone               string
	Website             string
	Rating              float64
	ReviewCount         int
	ExternalMapLink     string
	Status              Status
	Priority            Priority
	Tags                []string
	PotentialValueCents int64
	Notes               string
	AddedAt             time.Time
	UpdatedAt           time.Time
	RecycleAt           *time.Time
}

// NewCRMLead adopts src into the pipeline in the prospecting column.
func NewCRMLead(subscriberID uuid.UUID, src Source, now time.Time) CRMLead {
	return CRMLead{
		ID:              uuid.New(),
		SubscriberID:    subscriberID,
		ExternalID:      strings.TrimSpace(src.ExternalID),
		Name:            src.Name,
		Category:        src.Category,
		Address:         src.Address,
		Phone:           src.Phone,
		Website:         src.Website,
		Rating:          src.Rating,
		ReviewCount:     src.ReviewCount,
		ExternalMapLink: src.ExternalMapLink,
		Status:          StatusProspecting,
		Priority:        PriorityMedium,
		Tags:            []string{},
		AddedAt:         now,
		UpdatedAt:       now,
	}
}

// ChangeStatus moves the lead to any column. Moving to lost schedules a
// recycle at now + cooldown; moving anywhere else clears it.
func (l *CRMLead) ChangeStatus(status Status, now time.Time, cooldown time.Duration) {
	l.Status = status
	if status == StatusLost {
		at := now.Add(cooldown)
		l.RecycleAt = &at
	} else {
		l.RecycleAt = nil
	}
	l.UpdatedAt = now
}

// RecycleDue reports whether the automatic lost -> prospecting edge should fire.
func (l *CRMLead) RecycleDue(now time.Time) bool {
	return l.RecycleAt != nil && !l.RecycleAt.After(now)
}

// Recycle returns a lost lead to prospecting and records why in the notes.
func (l *CRMLead) Recycle(now time.Time) {
	note := fmt.Sprintf("%s %s: moved back to prospecting after the cooldown in lost.", RecycleMarker, now.UTC().Format("2006-01-02"))
	if strings.TrimSpace(l.Notes) == "" {
		l.Notes = note
	} else {
		l.Notes = strings.TrimRight(l.Notes, "\n") + "\n" + note
	}
	l.Status = StatusProspecting
	l.RecycleAt = nil
	l.UpdatedAt = now
}

// SetTags replaces the tag set. Tags are trimmed, blanks dropped and
// duplicates (ignoring case) removed, keeping first-seen order.
func (l *CRMLead) SetTags(tags []string, now time.Time) {
	l.Tags = NormalizeTags(tags)
	l.UpdatedAt = now
}

// NormalizeTags applies the tag set rules.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Clone returns a deep copy.
func (l CRMLead) Clone() CRMLead {
	out := l
	out.Tags = append([]string(nil), l.Tags...)
	if l.RecycleAt != nil {
		at := *l.RecycleAt
		out.RecycleAt = &at
	}
	return out
}
