package invoicing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ObjectStorage stores rendered receipt documents
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ReceiptRecorder receives business metrics about issued receipts
type ReceiptRecorder interface {
	RecordReceipt(ctx context.Context, status string, applied, excess decimal.Decimal, elapsed time.Duration)
	RecordPartialCompletion(ctx context.Context)
}

// ReceiptTemplate renders a receipt document to HTML
type ReceiptTemplate interface {
	Render(doc *ReceiptDocument) ([]byte, error)
}

// PDFConverter turns an HTML document into a PDF
type PDFConverter interface {
	ConvertHTML(ctx context.Context, html []byte, title string) ([]byte, error)
}
