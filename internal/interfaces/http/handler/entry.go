package handler

import (
	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EntryHandler handles the entries of an estate
type EntryHandler struct {
	BaseHandler
	entryService *propertyapp.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService *propertyapp.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

func (h *EntryHandler) parseIDs(c *gin.Context) (estateID, entryID uuid.UUID, ok bool) {
	if estateID, ok = h.parseUUIDParam(c, "id", "estate"); !ok {
		return
	}
	entryID, ok = h.parseUUIDParam(c, "entryId", "entry")
	return
}

// Create godoc
// @ID           createEntry
// @Summary      Add an entry to an estate
// @Description  The payment status is derived from the amounts unless Overdue is requested
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        request body propertyapp.CreateEntryRequest true "Entry creation request"
// @Success      201 {object} APIResponse[propertyapp.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/entries [post]
func (h *EntryHandler) Create(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	var req propertyapp.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entry, err := h.entryService.Create(c.Request.Context(), estateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetByID godoc
// @ID           getEntryById
// @Summary      Get an estate entry
// @Tags         entries
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        entryId path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[propertyapp.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/entries/{entryId} [get]
func (h *EntryHandler) GetByID(c *gin.Context) {
	estateID, entryID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	entry, err := h.entryService.GetByID(c.Request.Context(), estateID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List godoc
// @ID           listEntries
// @Summary      List the entries of an estate
// @Tags         entries
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        status query string false "Payment status" Enums(Paid, Partial, Pending, Overdue)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        plot query string false "Plot number"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]propertyapp.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/entries [get]
func (h *EntryHandler) List(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	var filter propertyapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	entries, total, err := h.entryService.List(c.Request.Context(), estateID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, pageOrFirst(filter.Page), filter.PageSize)
}

// Update godoc
// @ID           updateEntry
// @Summary      Update an estate entry
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        entryId path string true "Entry ID" format(uuid)
// @Param        request body propertyapp.UpdateEntryRequest true "Entry update request"
// @Success      200 {object} APIResponse[propertyapp.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/entries/{entryId} [put]
func (h *EntryHandler) Update(c *gin.Context) {
	estateID, entryID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	var req propertyapp.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entry, err := h.entryService.Update(c.Request.Context(), estateID, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete godoc
// @ID           deleteEntry
// @Summary      Delete an estate entry
// @Tags         entries
// @Param        id path string true "Estate ID" format(uuid)
// @Param        entryId path string true "Entry ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/entries/{entryId} [delete]
func (h *EntryHandler) Delete(c *gin.Context) {
	estateID, entryID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), estateID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
