package handler

import (
	"net/http"

	"beleads_backend/internal/pipeline/domain"
	"beleads_backend/internal/pipeline/service"
	"beleads_backend/internal/pipeline/transport"
	"beleads_backend/platform/httpkit"
	"beleads_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

// Handler handles HTTP requests for the CRM pipeline.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pipeline handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns the subscriber's pipeline with due recycles applied.
// GET /api/v1/pipeline/leads
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leads, err := h.svc.List(c.Request.Context(), identity.SubscriberID())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, toLeadResponse(l))
	}
	httpkit.OK(c, transport.ListLeadsResponse{Items: items, Total: len(items)})
}

// Add adopts a lead into the pipeline.
// POST /api/v1/pipeline/leads
func (h *Handler) Add(c *gin.Context) {
	var req transport.AddLeadRequest
	if !h.bind(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	lead, err := h.svc.AddToPipeline(c.Request.Context(), identity.SubscriberID(), domain.Source{
		ExternalID:      req.ExternalID,
		Name:            req.Name,
		Category:        req.Category,
		Address:         req.Address,
		Phone:           req.Phone,
		Website:         req.Website,
		Rating:          req.Rating,
		ReviewCount:     req.ReviewCount,
		ExternalMapLink: req.ExternalMapLink,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toLeadResponse(lead))
}

// Get returns one lead.
// GET /api/v1/pipeline/leads/:id
func (h *Handler) Get(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), identity.SubscriberID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

// Update edits priority, tags, value and notes.
// PATCH /api/v1/pipeline/leads/:id
func (h *Handler) Update(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bind(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	patch := service.LeadPatch{Tags: req.Tags, Notes: req.Notes}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
		patch.Priority = &priority
	}
	if req.PotentialValue != nil {
		cents := transport.ToCents(*req.PotentialValue)
		patch.PotentialValueCents = &cents
	}

	lead, err := h.svc.Update(c.Request.Context(), identity.SubscriberID(), leadID, patch)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

// ChangeStatus moves a lead to another column.
// PUT /api/v1/pipeline/leads/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	var req transport.ChangeStatusRequest
	if !h.bind(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.ChangeStatus(c.Request.Context(), identity.SubscriberID(), leadID, status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

// Delete removes a lead from the pipeline.
// DELETE /api/v1/pipeline/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), identity.SubscriberID(), leadID)) {
		return
	}
	httpkit.NoContent(c)
}

// GetGoal returns the monthly revenue goal.
// GET /api/v1/pipeline/goal
func (h *Handler) GetGoal(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	goal, err := h.svc.GetGoal(c.Request.Context(), identity.SubscriberID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toGoalResponse(goal))
}

// SetGoal saves the monthly revenue goal.
// PUT /api/v1/pipeline/goal
func (h *Handler) SetGoal(c *gin.Context) {
	var req transport.GoalRequest
	if !h.bind(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	goal, err := h.svc.SetGoal(c.Request.Context(), identity.SubscriberID(), transport.ToCents(req.MonthlyTarget), req.ResetDay)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toGoalResponse(goal))
}

// Revenue returns won value against the goal for the current window.
// GET /api/v1/pipeline/revenue
func (h *Handler) Revenue(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	rev, err := h.svc.Revenue(c.Request.Context(), identity.SubscriberID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.RevenueResponse{
		PeriodStart: rev.PeriodStart,
		WonValue:    transport.FromCents(rev.WonValueCents),
		Target:      transport.FromCents(rev.TargetCents),
		Progress:    rev.Progress,
	})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func toLeadResponse(l domain.CRMLead) transport.LeadResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.LeadResponse{
		ID:              l.ID,
		ExternalID:      l.ExternalID,
		Name:            l.Name,
		Category:        l.Category,
		Address:         l.Address,
		Phone:           optional(l.Phone),
		Website:         optional(l.Website),
		Rating:          l.Rating,
		ReviewCount:     l.ReviewCount,
		ExternalMapLink: l.ExternalMapLink,
		Status:          string(l.Status),
		Priority:        string(l.Priority),
		Tags:            tags,
		PotentialValue:  transport.FromCents(l.PotentialValueCents),
		Notes:           l.Notes,
		AddedAt:         l.AddedAt,
		UpdatedAt:       l.UpdatedAt,
		RecycleAt:       l.RecycleAt,
	}
}

func toGoalResponse(g domain.Goal) transport.GoalResponse {
	return transport.GoalResponse{
		MonthlyTarget: transport.FromCents(g.MonthlyTargetCents),
		ResetDay:      g.ResetDay,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
