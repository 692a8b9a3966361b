// Package report renders a project's calculations as a paginated PDF.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"labcalc/internal/history"
)

// ErrEmptyProject is returned when a project has no calculations to export.
var ErrEmptyProject = errors.New("project has no calculations")

const (
	title       = "Laboratory Calculations Report"
	suiteName   = "Laboratory Calculations Suite"
	margin      = 20.0
	bodyBottom  = 260.0
	lineHeight  = 4.0
	blockGap    = 7.0
	headerBandH = 40.0
)

type rgb struct{ r, g, b int }

var (
	slate900 = rgb{30, 41, 59}
	slate600 = rgb{71, 85, 105}
	slate500 = rgb{100, 116, 139}
	slate400 = rgb{148, 163, 184}
	slate200 = rgb{226, 232, 240}
	slate50  = rgb{248, 250, 252}
	white    = rgb{255, 255, 255}
)

// Filename is the download name of a project's report.
func Filename(projectName string) string {
	name := strings.Join(strings.Fields(projectName), "_")
	name = strings.NewReplacer(`"`, "", "/", "_", `\`, "_").Replace(name)
	if name == "" {
		name = "project"
	}
	return name + "_calculations.pdf"
}

// Render writes the PDF report of p to w.
func Render(w io.Writer, p history.Project, generated time.Time) error {
	pdf, err := build(p, generated)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func build(p history.Project, generated time.Time) (*fpdf.Fpdf, error) {
	if len(p.Calculations) == 0 {
		return nil, ErrEmptyProject
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - %s", title, p.Name), true)
	pdf.SetCreator(suiteName, true)
	pdf.SetCreationDate(generated)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()

	textColor := func(c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
	centered := func(y float64, s string) {
		s = tr(s)
		pdf.Text((pageW-pdf.GetStringWidth(s))/2, y, s)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		textColor(slate400)
		centered(pageH-10, fmt.Sprintf("Page %d of {nb} | %s", pdf.PageNo(), suiteName))
	})

	pdf.AddPage()

	pdf.SetFillColor(slate900.r, slate900.g, slate900.b)
	pdf.Rect(0, 0, pageW, headerBandH, "F")
	textColor(white)
	pdf.SetFont("Helvetica", "B", 20)
	centered(18, title)
	pdf.SetFont("Helvetica", "", 12)
	centered(28, p.Name)
	pdf.SetFont("Helvetica", "", 10)
	centered(36, "Generated: "+generated.Format("2006-01-02 15:04:05 MST"))

	y := 55.0
	textColor(slate900)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(margin, y, "Summary")
	y += 8
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(margin, y, fmt.Sprintf("Total Calculations: %d", len(p.Calculations)))
	y += 5
	pdf.Text(margin, y, "Project Created: "+p.CreatedAt.Format("2006-01-02"))
	y += 15

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(margin, y, "Calculations")
	y += 10

	boxW := pageW - 30
	for i, rec := range p.Calculations {
		pdf.SetFont("Helvetica", "", 9)
		lines := pdf.SplitText(tr("Equation: "+rec.Equation), boxW-20)
		boxH := 26 + lineHeight*float64(len(lines))

		if y+boxH > bodyBottom {
			pdf.AddPage()
			y = margin
		}

		pdf.SetFillColor(slate50.r, slate50.g, slate50.b)
		pdf.SetDrawColor(slate200.r, slate200.g, slate200.b)
		pdf.Rect(15, y-5, boxW, boxH, "FD")

		pdf.SetFont("Helvetica", "B", 11)
		textColor(slate900)
		pdf.Text(margin, y+3, tr(fmt.Sprintf("%d. %s", i+1, rec.FormulaName)))

		pdf.SetFont("Helvetica", "", 10)
		textColor(slate600)
		result := strings.TrimSpace(fmt.Sprintf("Result: %s = %s %s", rec.Result.Label, rec.Result.Value, rec.Result.Unit))
		pdf.Text(margin, y+12, tr(result))

		pdf.SetFont("Helvetica", "", 9)
		textColor(slate500)
		for j, line := range lines {
			pdf.Text(margin, y+21+lineHeight*float64(j), line)
		}

		y += boxH + blockGap
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return pdf, nil
}
