package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"gorm.io/gorm"
)

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

type EarningsService struct {
	DB       *gorm.DB
	Renderer PDFRenderer
}

func NewEarningsService(db *gorm.DB) *EarningsService {
	return &EarningsService{DB: db, Renderer: ChromePDFRenderer{Timeout: 30 * time.Second}}
}

type EarningsSummary struct {
	Earnings []models.Earning `json:"earnings"`
	Total    float64          `json:"total"`
	Count    int64            `json:"count"`
}

// List returns one page of the tutor's ledger plus the all-time total.
func (s *EarningsService) List(ctx context.Context, who Identity, page utils.Page) (*EarningsSummary, error) {
	if who.Role != models.RoleTutor {
		return nil, Forbidden("only tutors have earnings")
	}
	db := s.DB.WithContext(ctx)

	var agg struct {
		Total float64
		Count int64
	}
	if err := db.Model(&models.Earning{}).
		Where("tutor_id = ?", who.ID).
		Select("coalesce(sum(amount), 0) as total, count(*) as count").
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	if page.Limit == 0 {
		page = utils.NewPage(page.Page, page.Limit)
	}
	earnings := []models.Earning{}
	if err := db.Where("tutor_id = ?", who.ID).
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&earnings).Error; err != nil {
		return nil, err
	}
	return &EarningsSummary{Earnings: earnings, Total: roundCents(agg.Total), Count: agg.Count}, nil
}

type statementLine struct {
	Date        string
	Description string
	Amount      string
}

type statementData struct {
	TutorName string
	Period    string
	Lines     []statementLine
	Total     string
	Generated string
}

var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
h1 { font-size: 22px; margin-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
td.amount, th.amount { text-align: right; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>Earnings statement</h1>
<div>{{.TutorName}} &middot; {{.Period}}</div>
<table>
<thead><tr><th>Date</th><th>Description</th><th class="amount">Amount</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.Date}}</td><td>{{.Description}}</td><td class="amount">{{.Amount}}</td></tr>
{{else}}<tr><td colspan="3">No earnings in this period.</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="2">Total</td><td class="amount">{{.Total}}</td></tr></tfoot>
</table>
<p><small>Generated {{.Generated}}</small></p>
</body>
</html>`))

// StatementHTML renders the tutor's earnings for the calendar month holding
// month (UTC).
func (s *EarningsService) StatementHTML(ctx context.Context, who Identity, month time.Time) (string, error) {
	if who.Role != models.RoleTutor {
		return "", Forbidden("only tutors have earnings")
	}
	db := s.DB.WithContext(ctx)

	var tutor models.User
	if err := db.Select("id", "name").First(&tutor, "id = ?", who.ID).Error; err != nil {
		return "", err
	}

	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	var earnings []models.Earning
	if err := db.Where("tutor_id = ? AND created_at >= ? AND created_at < ?", who.ID, from, to).
		Order("created_at ASC").
		Find(&earnings).Error; err != nil {
		return "", err
	}

	data := statementData{
		TutorName: tutor.Name,
		Period:    from.Format("January 2006"),
		Generated: time.Now().UTC().Format("January 2, 2006 15:04 MST"),
	}
	var total float64
	for _, e := range earnings {
		total += e.Amount
		data.Lines = append(data.Lines, statementLine{
			Date:        e.CreatedAt.Format("Jan 2, 2006"),
			Description: e.Description,
			Amount:      fmt.Sprintf("%.2f", e.Amount),
		})
	}
	data.Total = fmt.Sprintf("%.2f", roundCents(total))

	var rendered bytes.Buffer
	if err := statementTemplate.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func (s *EarningsService) StatementPDF(ctx context.Context, who Identity, month time.Time) ([]byte, error) {
	html, err := s.StatementHTML(ctx, who, month)
	if err != nil {
		return nil, err
	}
	if s.Renderer == nil {
		return nil, fmt.Errorf("no pdf renderer configured")
	}
	return s.Renderer.RenderPDF(ctx, html)
}

// ChromePDFRenderer prints HTML through a headless Chrome session.
type ChromePDFRenderer struct {
	Timeout time.Duration
}

func (r ChromePDFRenderer) RenderPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
