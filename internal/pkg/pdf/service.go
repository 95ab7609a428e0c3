// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
)

// Service renders checkout confirmation receipts
type Service struct {
	storeName string
	now       func() time.Time
}

// NewService creates a new receipt service
func NewService(cfg *config.Config) *Service {
	return &Service{
		storeName: cfg.App.Name,
		now:       time.Now,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string        `json:"receipt_number"`
	IssuedAt      string        `json:"issued_at"`
	StoreName     string        `json:"store_name"`
	Shipping      string        `json:"shipping"`
	Lines         []ReceiptLine `json:"lines"`
	Totals        cart.Totals   `json:"totals"`
}

// ReceiptLine is one cart line with its extended price
type ReceiptLine struct {
	Title      string          `json:"title"`
	VariantKey string          `json:"variant_key"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// BuildReceipt assembles the receipt for a cart snapshot
func (s *Service) BuildReceipt(snapshot cart.Snapshot, totals cart.Totals, shipping string) ReceiptData {
	lines := make([]ReceiptLine, 0, len(snapshot))
	for _, item := range snapshot {
		price := decimal.NewFromFloat(item.UnitPrice)
		lines = append(lines, ReceiptLine{
			Title:      item.Title,
			VariantKey: item.VariantKey,
			Quantity:   item.Quantity,
			UnitPrice:  price,
			LineTotal:  price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	if shipping == "" {
		shipping = "domestic"
	}

	return ReceiptData{
		ReceiptNumber: "RCP-" + strings.ToUpper(uuid.NewString()[:8]),
		IssuedAt:      s.now().Format("January 2, 2006 15:04"),
		StoreName:     s.storeName,
		Shipping:      shipping,
		Lines:         lines,
		Totals:        totals,
	}
}

// RenderHTML renders the receipt as an HTML page
func (s *Service) RenderHTML(data ReceiptData) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF converts the HTML receipt to PDF. Requires the wkhtmltopdf binary.
func (s *Service) RenderPDF(data ReceiptData) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(receiptTemplate))

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Order confirmation {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        h1 { font-size: 24px; color: #2563eb; margin-bottom: 4px; }
        .meta { color: #666; margin-bottom: 24px; }
        table { width: 100%; border-collapse: collapse; }
        th { background: #f8f9fa; text-align: left; padding: 8px; border-bottom: 2px solid #dee2e6; }
        td { padding: 8px; border-bottom: 1px solid #dee2e6; }
        .num { text-align: right; }
        .totals td { border: none; }
        .grand td { font-weight: bold; font-size: 16px; border-top: 2px solid #333; }
    </style>
</head>
<body>
    <h1>{{.StoreName}}</h1>
    <div class="meta">Order confirmation {{.ReceiptNumber}} &middot; {{.IssuedAt}}</div>
    {{if .Lines}}
    <table>
        <thead>
            <tr><th>Item</th><th>Variant</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td>{{.Title}}</td>
                <td>{{.VariantKey}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .UnitPrice}}</td>
                <td class="num">{{money .LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>
    {{else}}
    <p>Your cart is empty.</p>
    {{end}}
    <table class="totals">
        <tr><td>Items</td><td class="num">{{.Totals.TotalQuantity}}</td></tr>
        <tr><td>Subtotal</td><td class="num">{{money .Totals.Subtotal}}</td></tr>
        <tr><td>Shipping ({{.Shipping}})</td><td class="num">{{money .Totals.ShippingFee}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">{{money .Totals.Total}}</td></tr>
    </table>
</body>
</html>
`
