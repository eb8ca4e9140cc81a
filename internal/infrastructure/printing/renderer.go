package printing

import (
	"context"
	"fmt"
	"html"
	"time"
)

// RenderRequest is one HTML document to print
type RenderRequest struct {
	HTML        string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	// Title becomes the PDF document title
	Title string
	// FooterHTML is a Chrome footer template printed on every page; the
	// pageNumber and totalPages classes are filled in by Chrome
	FooterHTML string
	// Timeout overrides the renderer's default
	Timeout time.Duration
}

// RenderResult is a printed document
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer prints HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
)

// RenderError is a failed template execution or PDF print, tagged with
// one of the ErrCode constants
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

// receiptFooter numbers the pages of a multi-page receipt
func receiptFooter(title string) string {
	return fmt.Sprintf(`<div style="width:100%%;font-size:8px;color:#666;text-align:center;">%s &middot; page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`,
		html.EscapeString(title))
}
