package handler

import (
	"beleads_backend/internal/quota/service"
	"beleads_backend/internal/quota/transport"
	"beleads_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for quota.
type Handler struct {
	ledger *service.Ledger
}

// New creates a new quota handler.
func New(ledger *service.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// Get returns the caller's credit balance for the current period.
// GET /api/v1/quota
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	snap, err := h.ledger.Snapshot(c.Request.Context(), identity.SubscriberID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.QuotaResponse{
		PlanID:      snap.PlanID,
		Limit:       snap.Limit,
		Used:        snap.Used,
		Reserved:    snap.Reserved,
		Remaining:   snap.Remaining,
		PeriodStart: snap.PeriodStart,
		NextReset:   snap.NextReset,
	})
}
