package handler

import (
	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/gin-gonic/gin"
)

// EstateHandler handles estate-related API endpoints
type EstateHandler struct {
	BaseHandler
	estateService *propertyapp.EstateService
}

// NewEstateHandler creates a new EstateHandler
func NewEstateHandler(estateService *propertyapp.EstateService) *EstateHandler {
	return &EstateHandler{estateService: estateService}
}

// Create godoc
// @ID           createEstate
// @Summary      Create a new estate
// @Tags         estates
// @Accept       json
// @Produce      json
// @Param        request body propertyapp.CreateEstateRequest true "Estate creation request"
// @Success      201 {object} APIResponse[propertyapp.EstateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates [post]
func (h *EstateHandler) Create(c *gin.Context) {
	var req propertyapp.CreateEstateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	estate, err := h.estateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, estate)
}

// GetByID godoc
// @ID           getEstateById
// @Summary      Get estate by ID
// @Tags         estates
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Success      200 {object} APIResponse[propertyapp.EstateResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id} [get]
func (h *EstateHandler) GetByID(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	estate, err := h.estateService.GetByID(c.Request.Context(), estateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estate)
}

// List godoc
// @ID           listEstates
// @Summary      List estates
// @Tags         estates
// @Produce      json
// @Param        search query string false "Search term"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]propertyapp.EstateResponse]
// @Security     BearerAuth
// @Router       /estates [get]
func (h *EstateHandler) List(c *gin.Context) {
	var filter propertyapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	estates, total, err := h.estateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, estates, total, pageOrFirst(filter.Page), filter.PageSize)
}

// Update godoc
// @ID           updateEstate
// @Summary      Update an estate
// @Tags         estates
// @Accept       json
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        request body propertyapp.UpdateEstateRequest true "Estate update request"
// @Success      200 {object} APIResponse[propertyapp.EstateResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id} [put]
func (h *EstateHandler) Update(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	var req propertyapp.UpdateEstateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	estate, err := h.estateService.Update(c.Request.Context(), estateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estate)
}

// Delete godoc
// @ID           deleteEstate
// @Summary      Delete an estate
// @Description  Rejected with ESTATE_NOT_EMPTY while the estate has entries
// @Tags         estates
// @Param        id path string true "Estate ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id} [delete]
func (h *EstateHandler) Delete(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	if err := h.estateService.Delete(c.Request.Context(), estateID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary godoc
// @ID           getEstateSummary
// @Summary      Aggregate totals of an estate
// @Description  Entry count, total amount, total paid, outstanding and counts per payment status
// @Tags         estates
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Success      200 {object} APIResponse[propertyapp.EstateSummaryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/summary [get]
func (h *EstateHandler) Summary(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	summary, err := h.estateService.Summary(c.Request.Context(), estateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
