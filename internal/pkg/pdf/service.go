// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	restaurant string
	loc        *time.Location
	tmpl       *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		restaurant: cfg.Restaurant.Name,
		loc:        cfg.Location(),
		tmpl: template.Must(template.New("receipt").Funcs(template.FuncMap{
			"brl": order.FormatBRL,
		}).Parse(receiptTemplate)),
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Restaurant string
	OrderID    string
	Table      int
	Date       string
	Lines      []receiptLine
	Total      decimal.Decimal
	Units      int
}

type receiptLine struct {
	Quantity int
	Name     string
	Variant  string
	Flavors  string
	Note     string
	Subtotal decimal.Decimal
}

// GenerateReceipt renders an order as a PDF receipt
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.ReceiptHTML(o)
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
	pdfg.Grayscale.Set(true)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.Encoding.Set("utf-8")
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// ReceiptHTML renders the receipt page
func (s *Service) ReceiptHTML(o *order.Order) (string, error) {
	data := ReceiptData{
		Restaurant: s.restaurant,
		OrderID:    o.ID,
		Table:      o.Table,
		Date:       o.CreatedAt.In(s.loc).Format("02/01/2006 15:04"),
		Total:      o.Total,
		Units:      o.ItemCount(),
	}
	for _, it := range o.Items {
		line := receiptLine{
			Quantity: it.Quantity,
			Name:     it.Name,
			Variant:  it.VariantName,
			Subtotal: it.Subtotal(),
		}
		if it.IsCompound() {
			line.Flavors = it.Description
		}
		if it.Note != nil {
			line.Note = *it.Note
		}
		data.Lines = append(data.Lines, line)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Pedido {{.OrderID}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 16px; color: #222; }
        h1 { font-size: 20px; margin: 0 0 4px 0; }
        .meta { font-size: 12px; color: #555; margin-bottom: 12px; }
        table { width: 100%; border-collapse: collapse; font-size: 13px; }
        td { padding: 6px 4px; border-bottom: 1px solid #ddd; vertical-align: top; }
        .qty { width: 36px; }
        .amount { text-align: right; white-space: nowrap; }
        .detail { font-size: 11px; color: #666; }
        .total td { font-weight: bold; border-bottom: none; font-size: 15px; }
    </style>
</head>
<body>
    <h1>{{.Restaurant}}</h1>
    <div class="meta">
        Pedido {{.OrderID}}<br>
        Mesa {{.Table}} &middot; {{.Date}}
    </div>
    <table>
        {{range .Lines}}
        <tr>
            <td class="qty">{{.Quantity}}x</td>
            <td>
                {{.Name}}{{if .Variant}} ({{.Variant}}){{end}}
                {{if .Flavors}}<div class="detail">{{.Flavors}}</div>{{end}}
                {{if .Note}}<div class="detail">Obs: {{.Note}}</div>{{end}}
            </td>
            <td class="amount">R$ {{brl .Subtotal}}</td>
        </tr>
        {{end}}
        <tr class="total">
            <td></td>
            <td>Total ({{.Units}} itens)</td>
            <td class="amount">R$ {{brl .Total}}</td>
        </tr>
    </table>
</body>
</html>
`
