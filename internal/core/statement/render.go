package statement

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"
	"time"

	"statement-service/internal/domain"

	"github.com/jung-kurt/gofpdf"
	"github.com/metakeule/fmtdate"
	"github.com/shopspring/decimal"
)

const (
	pageWidth   = 210.0 // A4 portrait, mm
	leftMargin  = 10.0
	tableWidth  = 190.0
	logoBoxW    = 60.0
	logoBoxH    = 25.0
	footerNote  = "Thank you for your business. Please arrange settlement of the total balance due within your agreed credit terms. For any discrepancy on this statement, contact our accounts office quoting the invoice number concerned."
	titleText   = "Statement of Account"
	fontDefault = "Helvetica"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// RenderResult is a rendered statement document: raw bytes plus the derived
// file name. The renderer never persists anything itself.
type RenderResult struct {
	FileName string
	Content  []byte
}

// StatementFileName derives the deterministic document name from the customer
// and the statement end date.
func StatementFileName(customerName, endDate string) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimSpace(customerName), "_")
	name = strings.Trim(name, "_")
	return fmt.Sprintf("SOA_%s_%s.pdf", name, endDate)
}

// RenderStatement lays the ledger out as a paginated portrait document: logo
// or title header, customer/period/operating-unit block, opening-balance
// banner, one row per entry, total-balance-due banner and a wrapped courtesy
// note. The document creation date is pinned to the statement end date so the
// same ledger always renders to the same bytes.
func RenderStatement(ledger *domain.Ledger, logo []byte) (*RenderResult, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(creationDate(ledger.Config.EndDate))
	// Resource dictionaries are map-ordered unless sorted; without this the
	// same ledger renders to different bytes run to run.
	pdf.SetCatalogSort(true)
	pdf.SetMargins(leftMargin, 12, leftMargin)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	drawLogoOrTitle(pdf, logo)

	pdf.SetFont(fontDefault, "B", 13)
	pdf.CellFormat(tableWidth, 7, ledger.CustomerName, "", 1, "C", false, 0, "")
	pdf.SetFont(fontDefault, "", 10)
	pdf.CellFormat(tableWidth, 5, "Period: "+ledger.Config.PeriodString(), "", 1, "C", false, 0, "")
	if ledger.Config.OperatingUnit != "" {
		pdf.CellFormat(tableWidth, 5, "Operating Unit: "+ledger.Config.OperatingUnit, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	drawTableHeader(pdf)

	// Opening balance banner.
	pdf.SetFont(fontDefault, "B", 9)
	pdf.SetFillColor(225, 232, 240)
	pdf.CellFormat(159, 7, "Opening Balance", "1", 0, "L", true, 0, "")
	pdf.CellFormat(31, 7, formatAmount(ledger.OpeningBalance), "1", 1, "R", true, 0, "")

	pdf.SetFont(fontDefault, "", 9)
	for _, entry := range ledger.Entries {
		pdf.CellFormat(22, 6, entry.TrxDate, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, entry.Number, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, entry.Region, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, entry.SiteLocation, "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, string(entry.RenderType), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, formatAmount(entry.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(31, 6, formatAmount(entry.Balance), "1", 1, "R", false, 0, "")
	}

	// Closing banner.
	pdf.SetFont(fontDefault, "B", 10)
	pdf.SetFillColor(44, 62, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(159, 8, "Total Balance Due", "1", 0, "L", true, 0, "")
	pdf.CellFormat(31, 8, formatAmount(ledger.ClosingBalance), "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.Ln(6)
	pdf.SetFont(fontDefault, "I", 8)
	pdf.MultiCell(tableWidth, 4, footerNote, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering statement: %w", err)
	}
	return &RenderResult{
		FileName: StatementFileName(ledger.CustomerName, ledger.Config.EndDate),
		Content:  buf.Bytes(),
	}, nil
}

func drawTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(fontDefault, "B", 9)
	pdf.SetFillColor(236, 240, 241)
	pdf.CellFormat(22, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Number", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Region", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Site", "1", 0, "C", true, 0, "")
	pdf.CellFormat(22, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(31, 7, "Balance", "1", 1, "C", true, 0, "")
}

// drawLogoOrTitle embeds the logo centered and scaled into a fixed bounding
// box, keeping aspect ratio. Missing or undecodable images fall back to the
// fixed title string.
func drawLogoOrTitle(pdf *gofpdf.Fpdf, logo []byte) {
	if len(logo) > 0 {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(logo))
		if err == nil && cfg.Width > 0 && cfg.Height > 0 {
			imageType := strings.ToUpper(format)
			if imageType == "JPEG" {
				imageType = "JPG"
			}
			w := logoBoxW
			h := w * float64(cfg.Height) / float64(cfg.Width)
			if h > logoBoxH {
				h = logoBoxH
				w = h * float64(cfg.Width) / float64(cfg.Height)
			}
			opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
			pdf.RegisterImageOptionsReader("statement-logo", opts, bytes.NewReader(logo))
			if pdf.Err() {
				pdf.ClearError()
			} else {
				x := (pageWidth - w) / 2
				y := pdf.GetY()
				pdf.ImageOptions("statement-logo", x, y, w, h, false, opts, 0, "")
				pdf.SetY(y + h + 4)
				return
			}
		}
	}

	pdf.SetFont(fontDefault, "B", 16)
	pdf.CellFormat(tableWidth, 10, titleText, "", 1, "C", false, 0, "")
	pdf.Ln(2)
}

// formatAmount renders a decimal with thousands separators and two decimal
// places; negative values keep a visible minus sign.
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// creationDate pins the document timestamp to the statement end date; a
// malformed date falls back to a fixed instant rather than wall-clock time so
// rendering stays reproducible.
func creationDate(endDate string) time.Time {
	if t, err := fmtdate.Parse("YYYY-MM-DD", endDate); err == nil {
		return t
	}
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
}
