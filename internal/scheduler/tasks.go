package scheduler

import (
	"encoding/json"
	"time"

	"beleads_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskPipelinePersist = "pipeline.lead.persist"

const TaskPipelineDelete = "pipeline.lead.delete"

type PipelineLeadPayload struct {
	ID                  string     `json:"id"`
	SubscriberID        string     `json:"subscriberId"`
	ExternalID          string     `json:"externalId"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	Address             string     `json:"address"`
	Phone               string     `json:"phone,omitempty"`
	Website             string     `json:"website,omitempty"`
	Rating              float64    `json:"rating"`
	ReviewCount         int        `json:"reviewCount"`
	ExternalMapLink     string     `json:"externalMapLink,omitempty"`
	Status              string     `json:"status"`
	Priority            string     `json:"priority"`
	Tags                []string   `json:"tags"`
	PotentialValueCents int64      `json:"potentialValueCents"`
	Notes               string     `json:"notes"`
	AddedAt             time.Time  `json:"addedAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	RecycleAt           *time.Time `json:"recycleAt,omitempty"`
}

type PipelineDeletePayload struct {
	SubscriberID string `json:"subscriberId"`
	LeadID       string `json:"leadId"`
}

func NewPipelinePersistTask(lead domain.CRMLead) (*asynq.Task, error) {
	data, err := json.Marshal(PipelineLeadPayload{
		ID:                  lead.ID.String(),
		SubscriberID:        lead.SubscriberID.String(),
		ExternalID:          lead.ExternalID,
		Name:                lead.Name,
		Category:            lead.Category,
		Address:             lead.Address,
		Phone:               lead.Phone,
		Website:             lead.Website,
		Rating:              lead.Rating,
		ReviewCount:         lead.ReviewCount,
		ExternalMapLink:     lead.ExternalMapLink,
		Status:              string(lead.Status),
		Priority:            string(lead.Priority),
		Tags:                lead.Tags,
		PotentialValueCents: lead.PotentialValueCents,
		Notes:               lead.Notes,
		AddedAt:             lead.AddedAt,
		UpdatedAt:           lead.UpdatedAt,
		RecycleAt:           lead.RecycleAt,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPipelinePersist, data), nil
}

func ParsePipelinePersistPayload(task *asynq.Task) (domain.CRMLead, error) {
	var payload PipelineLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return domain.CRMLead{}, err
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return domain.CRMLead{}, err
	}
	subscriberID, err := uuid.Parse(payload.SubscriberID)
	if err != nil {
		return domain.CRMLead{}, err
	}
	status, err := domain.ParseStatus(payload.Status)
	if err != nil {
		return domain.CRMLead{}, err
	}
	priority, err := domain.ParsePriority(payload.Priority)
	if err != nil {
		return domain.CRMLead{}, err
	}

	return domain.CRMLead{
		ID:                  id,
		SubscriberID:        subscriberID,
		ExternalID:          payload.ExternalID,
		Name:                payload.Name,
		Category:            payload.Category,
		Address:             payload.Address,
		Phone:               payload.Phone,
		Website:             payload.Website,
		Rating:              payload.Rating,
		ReviewCount:         payload.ReviewCount,
		ExternalMapLink:     payload.ExternalMapLink,
		Status:              status,
		Priority:            priority,
		Tags:                payload.Tags,
		PotentialValueCents: payload.PotentialValueCents,
		Notes:               payload.Notes,
		AddedAt:             payload.AddedAt,
		UpdatedAt:           payload.UpdatedAt,
		RecycleAt:           payload.RecycleAt,
	}, nil
}

func NewPipelineDeleteTask(subscriberID, leadID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(PipelineDeletePayload{
		SubscriberID: subscriberID.String(),
		LeadID:       leadID.String(),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPipelineDelete, data), nil
}

func ParsePipelineDeletePayload(task *asynq.Task) (uuid.UUID, uuid.UUID, error) {
	var payload PipelineDeletePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}
	subscriberID, err := uuid.Parse(payload.SubscriberID)
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}
	return subscriberID, leadID, nil
}
