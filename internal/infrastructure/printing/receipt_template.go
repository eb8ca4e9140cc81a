package printing

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	invoicingapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/invoicing"
	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReceiptTemplateConfig carries the issuer and currency printed on receipts
type ReceiptTemplateConfig struct {
	OrganizationName string
	CurrencySymbol   string
	// CurrencyName and MinorUnitName are used for the amount in words,
	// e.g. "Naira" and "Kobo"
	CurrencyName  string
	MinorUnitName string
}

// ReceiptTemplate renders receipts with html/template
type ReceiptTemplate struct {
	cfg     ReceiptTemplateConfig
	tmpl    *template.Template
	printer *message.Printer
	title   cases.Caser
}

var _ invoicingapp.ReceiptTemplate = (*ReceiptTemplate)(nil)

// NewReceiptTemplate parses the receipt layout
func NewReceiptTemplate(cfg ReceiptTemplateConfig) (*ReceiptTemplate, error) {
	if cfg.OrganizationName == "" {
		cfg.OrganizationName = "Property Flow Organizer"
	}
	if cfg.CurrencyName == "" {
		cfg.CurrencyName = "Naira"
	}
	if cfg.MinorUnitName == "" {
		cfg.MinorUnitName = "Kobo"
	}

	t := &ReceiptTemplate{
		cfg:     cfg,
		printer: message.NewPrinter(language.English),
		title:   cases.Title(language.English),
	}
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"money": t.formatMoney,
		"words": t.amountInWords,
		"date":  formatDate,
		"upper": strings.ToUpper,
	}).Parse(receiptLayout)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse receipt template", err)
	}
	t.tmpl = tmpl
	return t, nil
}

type receiptView struct {
	Org      string
	Currency string
	*invoicingapp.ReceiptDocument
}

// Render implements invoicingapp.ReceiptTemplate
func (t *ReceiptTemplate) Render(doc *invoicingapp.ReceiptDocument) ([]byte, error) {
	var buf bytes.Buffer
	view := receiptView{Org: t.cfg.OrganizationName, Currency: t.cfg.CurrencySymbol, ReceiptDocument: doc}
	if err := t.tmpl.Execute(&buf, view); err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to render receipt", err)
	}
	return buf.Bytes(), nil
}

// formatMoney prints the currency symbol and a grouped amount with two
// decimals, e.g. ₦1,250,000.00
func (t *ReceiptTemplate) formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	grouped := t.printer.Sprintf("%d", decimal.RequireFromString(whole).IntPart())
	return sign + t.cfg.CurrencySymbol + grouped + "." + frac
}

// amountInWords spells an amount out, e.g. "One Million Naira And Fifty
// Kobo Only"
func (t *ReceiptTemplate) amountInWords(d decimal.Decimal) string {
	d = d.Abs().Round(2)
	whole := d.Truncate(0)
	minor := d.Sub(whole).Mul(decimal.NewFromInt(100)).IntPart()

	words := num2words.Convert(int(whole.IntPart())) + " " + t.cfg.CurrencyName
	if minor > 0 {
		words += " and " + num2words.Convert(int(minor)) + " " + t.cfg.MinorUnitName
	}
	return t.title.String(words + " only")
}

func formatDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("02 Jan 2006")
	case *time.Time:
		if d == nil {
			return ""
		}
		return d.Format("02 Jan 2006")
	}
	return ""
}

const receiptLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Receipt {{.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 20px; margin: 0; }
  .muted { color: #666; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #222; padding-bottom: 8px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th, td { padding: 6px 4px; border-bottom: 1px solid #ddd; text-align: left; }
  td.amount, th.amount { text-align: right; }
  .totals td { border: none; }
  .words { margin-top: 12px; font-style: italic; }
  .status { font-weight: bold; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Org}}</h1>
    <div class="muted">Payment Receipt</div>
  </div>
  <div>
    <div>Receipt No: <strong>{{.Number}}</strong></div>
    <div>Date: {{date .IssuedDate}}</div>
    <div class="status">{{upper .Status}}</div>
  </div>
</div>

<p>
  Received from <strong>{{if .ClientName}}{{.ClientName}}{{else}}Unnamed client{{end}}</strong>
  {{- if .ClientAddress}}<br><span class="muted">{{.ClientAddress}}</span>{{end}}
  {{- if .ClientPhone}}<br><span class="muted">{{.ClientPhone}}</span>{{end}}
</p>
{{if .EstateName}}<p>Estate: <strong>{{.EstateName}}</strong>{{if .EstateLocation}}, {{.EstateLocation}}{{end}}
{{- if .PlotNumber}}<br>Plot(s): {{.PlotNumber}}{{end}}</p>{{end}}

<table>
  <thead><tr><th>Description</th><th>Plot(s)</th><th class="amount">Amount</th></tr></thead>
  <tbody>
  {{- range .Lines}}
    <tr><td>{{.Description}}</td><td>{{.PlotDetails}}</td><td class="amount">{{money .Amount}}</td></tr>
  {{- end}}
  </tbody>
</table>

<table class="totals">
  <tr><td>Property price</td><td class="amount">{{money .PropertyAmount}}</td></tr>
  <tr><td><strong>Amount received</strong></td><td class="amount"><strong>{{money .AmountPaid}}</strong></td></tr>
  {{- if .TotalPaid}}
  <tr><td>Total paid to date</td><td class="amount">{{money .TotalPaid}}</td></tr>
  {{- end}}
  {{- if .Balance}}
  <tr><td>Balance</td><td class="amount">{{money .Balance}}</td></tr>
  {{- end}}
</table>

<div class="words">{{words .AmountPaid}}</div>
{{if .DueDate}}<p>Next payment due: {{date .DueDate}}</p>{{end}}
{{if .Notes}}<p class="muted">{{.Notes}}</p>{{end}}
</body>
</html>
`
