package handler

import (
	"encoding/json"
	"path/filepath"
	"strconv"

	importapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/import"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/tabular"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImportHandler loads estate entries from uploaded spreadsheets
type ImportHandler struct {
	BaseHandler
	importService *importapp.EntryImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importapp.EntryImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportEntries godoc
// @ID           importEntries
// @Summary      Import estate entries from CSV or XLSX
// @Description  Rows that fail validation are reported and skipped; the rest are imported.
// @Description  mapping is a JSON object from entry field (client, amount, amount_paid, plots,
// @Description  next_due_date, notes) to the file header holding it.
// @Tags         entries
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        file formData file true "CSV or XLSX file"
// @Param        format formData string false "csv or xlsx, taken from the file name when empty"
// @Param        mapping formData string false "Field to header mapping as JSON"
// @Param        create_clients formData bool false "Create clients for unknown names"
// @Success      200 {object} APIResponse[importapp.EntryImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estates/{id}/entries/import [post]
func (h *ImportHandler) ImportEntries(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BindError(c, err)
		return
	}

	formatName := c.PostForm("format")
	if formatName == "" {
		formatName = filepath.Ext(fileHeader.Filename)
	}
	format, err := tabular.ParseFormat(formatName)
	if err != nil {
		h.ErrorWithCode(c, dto.CodeInvalidImportType, "Unsupported import format, use csv or xlsx")
		return
	}

	opts := importapp.EntryImportOptions{}
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts.Mapping); err != nil {
			h.BadRequest(c, "mapping must be a JSON object of field to column header")
			return
		}
	}
	if raw := c.PostForm("create_clients"); raw != "" {
		if opts.CreateClients, err = strconv.ParseBool(raw); err != nil {
			h.BadRequest(c, "create_clients must be true or false")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), estateID, format, file, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
