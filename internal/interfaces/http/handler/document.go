package handler

import (
	"net/http"

	invoicingapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// DocumentHandler serves rendered receipts
type DocumentHandler struct {
	BaseHandler
	documentService *invoicingapp.ReceiptDocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *invoicingapp.ReceiptDocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Receipt godoc
// @ID           getInvoiceReceipt
// @Summary      Render the receipt of an invoice
// @Description  format=html (default) returns the page inline; format=pdf returns a download
// @Description  and answers 501 when PDF rendering is disabled
// @Tags         invoices
// @Produce      text/html
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        format query string false "Output format" Enums(html, pdf)
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/receipt [get]
func (h *DocumentHandler) Receipt(c *gin.Context) {
	invoiceID, ok := h.parseUUIDParam(c, "id", "invoice")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	switch c.DefaultQuery("format", "html") {
	case "html":
		doc, err := h.documentService.RenderHTML(ctx, invoiceID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, doc.ContentType, doc.Data)
	case "pdf":
		doc, err := h.documentService.RenderPDF(ctx, invoiceID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Attachment(c, doc.Filename, doc.ContentType, doc.Data)
	default:
		h.BadRequest(c, "format must be html or pdf")
	}
}

// Archive godoc
// @ID           archiveInvoiceReceipt
// @Summary      Store the receipt in object storage
// @Description  Returns a presigned download URL. Answers 501 when no storage is configured.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoicingapp.ArchiveResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/archive [post]
func (h *DocumentHandler) Archive(c *gin.Context) {
	invoiceID, ok := h.parseUUIDParam(c, "id", "invoice")
	if !ok {
		return
	}

	archived, err := h.documentService.Archive(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, archived)
}
