// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/order"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": money,
	"date":  func(t time.Time) string { return t.Format("January 2, 2006") },
}).Parse(receiptTemplate))

// Service renders order receipts to PDF
type Service struct {
	company CompanyInfo
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		company: CompanyInfo{
			Name:    cfg.Company.Name,
			Address: cfg.Company.Address,
			Phone:   cfg.Company.Phone,
			Email:   cfg.Company.Email,
			Website: cfg.Company.Website,
		},
		now: time.Now,
	}
}

// RenderReceipt generates a PDF receipt for an order
func (s *Service) RenderReceipt(o *order.Order) ([]byte, error) {
	htmlContent, err := s.generateHTML(s.receiptData(o))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

func (s *Service) receiptData(o *order.Order) ReceiptData {
	issued := o.CreatedAt
	if issued.IsZero() {
		issued = s.now()
	}
	return ReceiptData{
		ReceiptNumber: "RCPT-" + o.Reference(),
		IssuedAt:      issued,
		Order:         o,
		Company:       s.company,
	}
}

func (s *Service) generateHTML(data ReceiptData) (string, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// ReceiptData is the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedAt      time.Time
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo is printed in the receipt header
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// money formats an amount as "Rs 1,234" with paisa only when present
func money(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	text := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(text, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := "Rs " + grouped.String()
	if frac != "00" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .company-info, .receipt-info { flex: 1; }
        .receipt-info { text-align: right; }
        .receipt-title { font-size: 28px; font-weight: bold; color: #111827; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .items-table .num { text-align: right; width: 90px; }
        .totals { float: right; width: 320px; }
        .totals table { width: 100%; border-collapse: collapse; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; }
        .totals .label { text-align: right; font-weight: bold; }
        .totals .amount { text-align: right; width: 120px; }
        .total-row { font-size: 18px; font-weight: bold; }
        .status-badge { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; text-transform: uppercase; }
        .status-pending { background-color: #fef3c7; color: #92400e; }
        .status-other { background-color: #dcfce7; color: #166534; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            {{if .Company.Phone}}<p>Phone: {{.Company.Phone}}</p>{{end}}
            {{if .Company.Email}}<p>Email: {{.Company.Email}}</p>{{end}}
            <p>{{.Company.Website}}</p>
        </div>
        <div class="receipt-info">
            <div class="receipt-title">RECEIPT</div>
            <p><strong>Receipt #:</strong> {{.ReceiptNumber}}</p>
            <p><strong>Order Date:</strong> {{date .IssuedAt}}</p>
            <p><strong>Order ID:</strong> {{.Order.ID}}</p>
            <p><span class="status-badge {{if .Order.IsPending}}status-pending{{else}}status-other{{end}}">{{.Order.Status}}</span></p>
        </div>
    </div>

    <div>
        <div class="section-title">Ship To:</div>
        <p><strong>{{.Order.Name}}</strong></p>
        <p>{{.Order.ShippingAddress}}, {{.Order.City}}</p>
        <p>Phone: {{.Order.Phone}}</p>
        {{if .Order.Email}}<p>Email: {{.Order.Email}}</p>{{end}}
        <p>Payment: {{.Order.PaymentMethod}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>
                    <strong>{{.Name}}</strong>
                    {{if .Variant}}<br><small>{{.Variant}}</small>{{end}}
                </td>
                <td class="num">{{.Qty}}</td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{money .LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{money .Order.PriceSummary.Total}}</td>
            </tr>
            {{with .Order.PriceSummary.Discount}}
            <tr>
                <td class="label">Discount{{with $.Order.PriceSummary.PromoCode}} ({{.}}){{end}}:</td>
                <td class="amount">-{{money .}}</td>
            </tr>
            {{end}}
            <tr>
                <td class="label">Delivery:</td>
                <td class="amount">{{money .Order.PriceSummary.DeliveryCharge}}</td>
            </tr>
            <tr class="total-row">
                <td class="label">Grand Total:</td>
                <td class="amount">{{money .Order.PriceSummary.GrandTotal}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for shopping with {{.Company.Name}}!</p>
        {{if .Company.Email}}<p>Questions about this order? Contact us at {{.Company.Email}}{{if .Company.Phone}} or {{.Company.Phone}}{{end}}</p>{{end}}
    </div>
</body>
</html>
`
