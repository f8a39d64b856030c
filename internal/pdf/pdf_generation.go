package pdf

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/skyaboveme/yourgency/internal/models"
)

// Generator: интерфейс (удобно мокать в тестах)
type Generator interface {
	PipelineReport(w io.Writer, data ReportData) error
}

// ReportGenerator: реализация на gofpdf.
type ReportGenerator struct {
	FontPath string // TTF с кириллицей/юникодом; пусто: встроенный Helvetica
	fontName string
}

// ReportData: всё, что попадает в отчёт по воронке.
type ReportData struct {
	Summary     models.Summary
	Deals       []models.Deal
	GeneratedAt time.Time
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &ReportGenerator{FontPath: fontPath, fontName: name}
}

func (g *ReportGenerator) PipelineReport(w io.Writer, data ReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Pipeline report", false)
	pdf.SetAuthor("Yourgency CRM", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := g.addFont(pdf)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "Pipeline report", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, data.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== KPI
	g.sectionTitle(pdf, "Summary")
	s := data.Summary
	g.kvLine(pdf, "Active prospects", fmt.Sprintf("%d", s.ActiveProspects))
	g.kvLine(pdf, "Win rate", fmt.Sprintf("%.1f%%", s.WinRate))
	g.kvLine(pdf, "At risk", fmt.Sprintf("%d", s.AtRisk))
	g.kvLine(pdf, "Accounts", fmt.Sprintf("%d", s.Accounts))
	pdf.Ln(1)
	for _, sc := range s.Distribution {
		g.kvLine(pdf, sc.Name, fmt.Sprintf("%d", sc.Value))
	}
	g.hr(pdf)

	// ===== Сделки по стадиям
	g.sectionTitle(pdf, "Deals")
	deals := append([]models.Deal(nil), data.Deals...)
	sort.SliceStable(deals, func(i, j int) bool {
		return stageIndex(deals[i].Stage) < stageIndex(deals[j].Stage)
	})

	widths := []float64{60, 30, 25, 55}
	header := []string{"Company", "Stage", "Score", "Owner"}
	pdf.SetFont(g.fontName, "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	for _, d := range deals {
		score := "-"
		if d.Score != nil {
			score = fmt.Sprintf("%.0f", d.Score.Composite)
		}
		cells := []string{tr(d.CompanyName), d.Stage.Label(), score, tr(d.AssignedToName)}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, truncate(pdf, c, widths[i]-2), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pipeline report: %w", err)
	}
	return nil
}

// === helpers ===

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

// addFont подключает TTF, если задан. Для встроенного шрифта строки
// переводятся в cp1252.
func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath == "" {
		return pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	return func(s string) string { return s }
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func stageIndex(s models.Stage) int {
	for i, st := range models.Stages {
		if st == s {
			return i
		}
	}
	return len(models.Stages)
}
