package handler

import (
	invoicingapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler records payments against estate entries
type ReceiptHandler struct {
	BaseHandler
	receiptService *invoicingapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *invoicingapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Issue godoc
// @ID           issueReceipt
// @Summary      Record a payment and issue a receipt
// @Description  Applies the payment to the entry and stores an invoice for it. A payment above
// @Description  the outstanding balance is capped; the response reports the excess. A repeated
// @Description  Idempotency-Key is rejected with 409.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "Estate ID" format(uuid)
// @Param        entryId path string true "Entry ID" format(uuid)
// @Param        Idempotency-Key header string false "Client chosen key for safe retries"
// @Param        request body invoicingapp.IssueReceiptRequest true "Payment"
// @Success      201 {object} APIResponse[invoicingapp.ReceiptResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse "PARTIAL_COMPLETION carries entry_id and applied_amount"
// @Security     BearerAuth
// @Router       /estates/{id}/entries/{entryId}/receipts [post]
func (h *ReceiptHandler) Issue(c *gin.Context) {
	estateID, ok := h.parseUUIDParam(c, "id", "estate")
	if !ok {
		return
	}
	entryID, ok := h.parseUUIDParam(c, "entryId", "entry")
	if !ok {
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req invoicingapp.IssueReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IssuedBy = userID

	result, err := h.receiptService.IssueReceipt(c.Request.Context(), estateID, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
