package handler

import (
	"net/http"

	"beleads_backend/internal/acquisition/domain"
	"beleads_backend/internal/acquisition/repository"
	"beleads_backend/internal/acquisition/service"
	"beleads_backend/internal/acquisition/transport"
	"beleads_backend/platform/httpkit"
	"beleads_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for lead acquisition.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new acquisition handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Acquire runs one search and returns the accepted leads.
// POST /api/v1/acquisitions
func (h *Handler) Acquire(c *gin.Context) {
	var req transport.AcquireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Acquire(c.Request.Context(), identity.SubscriberID(), domain.Request{
		Mode:               domain.Mode(req.Mode),
		FreeText:           req.FreeText,
		Niche:              req.Niche,
		Region:             req.Region,
		City:               req.City,
		ExcludedCity:       req.ExcludedCity,
		RequireContactInfo: req.RequireContactInfo,
		TargetCount:        req.TargetCount,
		AddToPipeline:      req.AddToPipeline,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	leads := make([]transport.LeadResponse, 0, len(result.Leads))
	for _, l := range result.Leads {
		leads = append(leads, toLeadResponse(l))
	}
	httpkit.OK(c, transport.AcquireResponse{
		Leads:     leads,
		Requested: result.Requested,
		Accepted:  result.Accepted,
		Remaining: result.Remaining,
		Cancelled: result.Cancelled,
	})
}

// Today lists the leads acquired today.
// GET /api/v1/acquisitions/today
func (h *Handler) Today(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	entries, err := h.svc.Today(c.Request.Context(), identity.SubscriberID())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toHistoryResponse(e))
	}
	httpkit.OK(c, transport.TodayResponse{Items: items, Total: len(items)})
}

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:              l.ID,
		Name:            l.Name,
		Category:        l.Category,
		Address:         l.Address,
		Phone:           optional(l.Phone),
		Website:         optional(l.Website),
		Rating:          l.Rating,
		ReviewCount:     l.ReviewCount,
		ExternalMapLink: l.ExternalMapLink,
	}
}

func toHistoryResponse(e repository.Entry) transport.HistoryEntryResponse {
	return transport.HistoryEntryResponse{
		LeadID:    e.LeadID,
		LeadName:  e.LeadName,
		LeadPhone: optional(e.LeadPhone),
		Query:     e.Query,
		Mode:      string(e.Mode),
		CreatedAt: e.CreatedAt,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
