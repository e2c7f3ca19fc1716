package pdf

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"propertystore/internal/models"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	DealSummary(w io.Writer, data DealSummaryData) error
}

// SummaryGenerator рисует карточку сделки для печати.
type SummaryGenerator struct {
	FontPath string // путь до TTF с кириллицей, например "assets/fonts/DejaVuSans.ttf"
	fontName string
}

type DealSummaryData struct {
	Deal        *models.Deal
	Client      *models.Client
	Stages      []models.DealStage
	GeneratedAt time.Time
}

func NewSummaryGenerator(fontPath string) *SummaryGenerator {
	return &SummaryGenerator{FontPath: fontPath}
}

func (g *SummaryGenerator) DealSummary(w io.Writer, data DealSummaryData) error {
	if data.Deal == nil {
		return fmt.Errorf("deal is required")
	}
	d := data.Deal

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, true)
	pdf.SetAuthor("propertystore", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.setupFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.MultiCell(0, 9, d.Title, "", "C", false)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, "Сформировано "+data.GeneratedAt.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	stageNames := map[string]string{}
	for _, s := range data.Stages {
		stageNames[s.ID] = s.Name
	}
	stageName := func(id string) string {
		if n, ok := stageNames[id]; ok {
			return n
		}
		return id
	}

	g.sectionTitle(pdf, "Сделка")
	status := "В работе"
	if !d.IsActive {
		status = "Завершена"
	} else if d.IsOverdue {
		status = "Просрочена"
	}
	g.kvLine(pdf, "Статус", status)
	g.kvLine(pdf, "Этап", stageName(d.CurrentStageID))
	g.kvLine(pdf, "На этапе с", d.StageStartedAt.Format("02.01.2006 15:04"))
	if d.StageDeadline != nil {
		g.kvLine(pdf, "Срок этапа", d.StageDeadline.Format("02.01.2006 15:04"))
	}
	if d.DealAmount != nil {
		g.kvLine(pdf, "Сумма", formatAmount(*d.DealAmount))
	}
	if d.ExpectedCloseDate != nil {
		g.kvLine(pdf, "План закрытия", d.ExpectedCloseDate.Format("02.01.2006"))
	}
	if d.ClosedAt != nil {
		g.kvLine(pdf, "Закрыта", d.ClosedAt.Format("02.01.2006 15:04"))
	}
	if d.Notes != nil && *d.Notes != "" {
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, *d.Notes, "", "L", false)
	}
	g.hr(pdf)

	if c := data.Client; c != nil {
		g.sectionTitle(pdf, "Клиент")
		g.kvLine(pdf, "Имя", c.Name)
		g.kvLine(pdf, "Телефон", c.Phone)
		if c.Email != nil {
			g.kvLine(pdf, "Email", *c.Email)
		}
		g.hr(pdf)
	}

	g.sectionTitle(pdf, "История")
	pdf.SetFont(g.fontName, "", 10)
	for _, h := range d.History {
		line := h.ChangedAt.Format("02.01.2006 15:04") + "  "
		if h.FromStageID == nil {
			line += "создана в этапе «" + stageName(h.ToStageID) + "»"
		} else {
			line += "«" + stageName(*h.FromStageID) + "» → «" + stageName(h.ToStageID) + "»"
		}
		if h.Notes != nil && *h.Notes != "" {
			line += ": " + *h.Notes
		}
		pdf.MultiCell(0, 5, line, "", "L", false)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Стр. %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return pdf.Output(w)
}

// без TTF кириллица не отрисуется, но документ всё равно соберётся
func (g *SummaryGenerator) setupFont(pdf *gofpdf.Fpdf) {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			g.fontName = "DejaVu"
			pdf.AddUTF8Font(g.fontName, "", g.FontPath)
			pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
			return
		}
	}
	g.fontName = "Helvetica"
}

func (g *SummaryGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *SummaryGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *SummaryGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

// formatAmount: 12500000.5 -> "12 500 000.50"
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
