package handler

import (
	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *propertyapp.ClientService
	entryService  *propertyapp.EntryService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *propertyapp.ClientService, entryService *propertyapp.EntryService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		entryService:  entryService,
	}
}

// Create godoc
// @ID           createClient
// @Summary      Create a new client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body propertyapp.CreateClientRequest true "Client creation request"
// @Success      201 {object} APIResponse[propertyapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req propertyapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get client by ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[propertyapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	clientID, ok := h.parseUUIDParam(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Description  Search matches name, email and phone
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search term"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]propertyapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var filter propertyapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	clients, total, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, pageOrFirst(filter.Page), filter.PageSize)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body propertyapp.UpdateClientRequest true "Client update request"
// @Success      200 {object} APIResponse[propertyapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := h.parseUUIDParam(c, "id", "client")
	if !ok {
		return
	}

	var req propertyapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Description  Rejected with CLIENT_IN_USE while entries reference the client
// @Tags         clients
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	clientID, ok := h.parseUUIDParam(c, "id", "client")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), clientID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListEntries godoc
// @ID           listClientEntries
// @Summary      List the estate entries of a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        status query string false "Payment status" Enums(Paid, Partial, Pending, Overdue)
// @Success      200 {object} APIResponse[[]propertyapp.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/entries [get]
func (h *ClientHandler) ListEntries(c *gin.Context) {
	clientID, ok := h.parseUUIDParam(c, "id", "client")
	if !ok {
		return
	}

	var filter propertyapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	entries, total, err := h.entryService.ListByClient(c.Request.Context(), clientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, pageOrFirst(filter.Page), filter.PageSize)
}
