package handler

import (
	"time"

	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes maintenance operations
type AdminHandler struct {
	BaseHandler
	overdueService *propertyapp.OverdueService
	now            func() time.Time
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(overdueService *propertyapp.OverdueService) *AdminHandler {
	return &AdminHandler{
		overdueService: overdueService,
		now:            time.Now,
	}
}

// OverdueSweepRequest optionally moves the reference date of a sweep
type OverdueSweepRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// OverdueSweep godoc
// @ID           runOverdueSweep
// @Summary      Mark past-due entries as Overdue
// @Description  Pending and Partial entries whose next due date lies before as_of (default now)
// @Description  become Overdue
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body OverdueSweepRequest false "Sweep options"
// @Success      200 {object} APIResponse[propertyapp.OverdueSweepResult]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/overdue-sweep [post]
func (h *AdminHandler) OverdueSweep(c *gin.Context) {
	var req OverdueSweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	asOf := h.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	result, err := h.overdueService.MarkOverdue(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
