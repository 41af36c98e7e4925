// Package pdf renders report documents with go-pdf/fpdf.
package pdf

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"

	report "github.com/okian/skillnav/internal/domain/report"
	"github.com/okian/skillnav/pkg/metrics"
)

const (
	collaborator = "pdf"

	margin     = 18.0 // mm, about 50pt
	bodySize   = 12.0
	titleSize  = 20.0
	lineHeight = 6.0

	chartWidth  = 150.0
	chartHeight = 90.0
	chartTicks  = 5
)

// skyblue bars.
var barColor = [3]int{135, 206, 235}

// Renderer writes Letter-sized PDF reports.
type Renderer struct {
	font string
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithFont sets the core font family, e.g. "Helvetica" or "Times".
func WithFont(family string) Option {
	return func(r *Renderer) {
		if family != "" {
			r.font = family
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{font: "Helvetica"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes doc to w: page one holds the chart and details, page two
// the recommendations.
func (r *Renderer) Render(ctx context.Context, w io.Writer, doc report.Document) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordExternalCall(collaborator, float64(time.Since(start).Milliseconds()), err)
	}()
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(doc.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	r.title(pdf, tr(doc.Title))
	r.chart(pdf, tr, doc)
	r.details(pdf, tr, doc.Details)

	pdf.AddPage()
	r.title(pdf, report.RecommendationsTitle)
	r.recommendations(pdf, tr, doc.Recommendations)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func (r *Renderer) title(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont(r.font, "B", titleSize)
	pdf.CellFormat(0, 12, text, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) chart(pdf *fpdf.Fpdf, tr func(string) string, doc report.Document) {
	pageW, _ := pdf.GetPageSize()
	left := (pageW-chartWidth)/2 + 8
	top := pdf.GetY() + 8
	plotW, plotH := chartWidth-8, chartHeight-28
	bottom := top + plotH

	pdf.SetFont(r.font, "B", bodySize)
	pdf.SetXY(margin, top-8)
	pdf.CellFormat(pageW-2*margin, 6, tr(doc.ChartTitle), "", 0, "C", false, 0, "")

	// Axes and ticks.
	hi := niceCeil(doc.ChartMax())
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.3)
	pdf.Line(left, top, left, bottom)
	pdf.Line(left, bottom, left+plotW, bottom)
	pdf.SetFont(r.font, "", 8)
	for i := 0; i <= chartTicks; i++ {
		v := hi * float64(i) / chartTicks
		y := bottom - plotH*float64(i)/chartTicks
		pdf.Line(left-1.5, y, left, y)
		label := fmt.Sprintf("%g", math.Round(v*10)/10)
		pdf.Text(left-2.5-pdf.GetStringWidth(label), y+1, label)
	}

	if n := len(doc.Chart); n > 0 {
		slot := plotW / float64(n)
		barW := slot * 0.6
		pdf.SetFillColor(barColor[0], barColor[1], barColor[2])
		for i, b := range doc.Chart {
			h := plotH * b.Value / hi
			x := left + slot*float64(i) + (slot-barW)/2
			pdf.Rect(x, bottom-h, barW, h, "F")

			// Labels are rotated like a slanted tick axis.
			cx := x + barW/2
			pdf.TransformBegin()
			pdf.TransformRotate(45, cx, bottom+3)
			label := tr(b.Label)
			pdf.Text(cx-pdf.GetStringWidth(label), bottom+3, label)
			pdf.TransformEnd()
		}
	}

	pdf.SetFont(r.font, "", 10)
	pdf.Text(left+plotW/2-pdf.GetStringWidth(doc.ChartXLabel)/2, top+chartHeight-4, tr(doc.ChartXLabel))
	pdf.TransformBegin()
	pdf.TransformRotate(90, left-12, top+plotH/2)
	pdf.Text(left-12-pdf.GetStringWidth(doc.ChartYLabel)/2, top+plotH/2, tr(doc.ChartYLabel))
	pdf.TransformEnd()

	pdf.SetXY(margin, top+chartHeight+4)
}

func (r *Renderer) details(pdf *fpdf.Fpdf, tr func(string) string, fields []report.Field) {
	for _, f := range fields {
		r.labelled(pdf, tr, "", f.Label, f.Value, len(f.Items) > 0)
		for _, it := range f.Items {
			r.labelled(pdf, tr, "- ", it.Label, it.Value, false)
		}
	}
}

func (r *Renderer) labelled(pdf *fpdf.Fpdf, tr func(string) string, prefix, label, value string, header bool) {
	pdf.SetFont(r.font, "", bodySize)
	pdf.Write(lineHeight, prefix)
	pdf.SetFont(r.font, "B", bodySize)
	pdf.Write(lineHeight, tr(label)+":")
	if !header {
		pdf.SetFont(r.font, "", bodySize)
		pdf.Write(lineHeight, " "+tr(value))
	}
	pdf.Ln(lineHeight + 2)
}

func (r *Renderer) recommendations(pdf *fpdf.Fpdf, tr func(string) string, lines []report.Line) {
	for _, l := range lines {
		if l.Bullet {
			pdf.SetFont(r.font, "B", bodySize)
			pdf.Write(lineHeight, "- ")
		}
		pdf.SetFont(r.font, "", bodySize)
		pdf.Write(lineHeight, tr(l.Text))
		pdf.Ln(lineHeight + 2)
	}
}

// niceCeil rounds up to 1, 2 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}
