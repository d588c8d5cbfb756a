package notas

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minCurveSpread = 0.5

// CurveOptions sizes the bell-curve canvas.
type CurveOptions struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
	Steps   int     `json:"steps"` // segments; Steps+1 samples
}

func (o CurveOptions) withDefaults() CurveOptions {
	if o.Width == 0 {
		o.Width = defaultCanvasWidth
	}
	if o.Height == 0 {
		o.Height = defaultCanvasHeight
	}
	if o.Padding == 0 {
		o.Padding = defaultCanvasPadding
	}
	if o.Steps == 0 {
		o.Steps = defaultCurveSteps
	}
	return o
}

// CurvePoint is one sample of the density, in data units.
type CurvePoint struct {
	X, Y float64
}

func normalPDF(x, mean, std float64) float64 {
	return math.Exp(-0.5*math.Pow((x-mean)/std, 2)) / (std * math.Sqrt(2*math.Pi))
}

// spread substitutes a floor for a zero or undefined deviation.
func spread(stdDev float64) float64 {
	if stdDev == 0 || math.IsNaN(stdDev) {
		return minCurveSpread
	}
	return stdDev
}

// SampleCurve evaluates the density on steps+1 evenly spaced points of
// [0, maxX] and returns the samples with the largest density.
func SampleCurve(mean, stdDev, maxX float64, steps int) ([]CurvePoint, float64) {
	std := spread(stdDev)
	points := make([]CurvePoint, 0, steps+1)
	maxY := 0.0
	for i := 0; i <= steps; i++ {
		x := float64(i) / float64(steps) * maxX
		y := normalPDF(x, mean, std)
		if y > maxY {
			maxY = y
		}
		points = append(points, CurvePoint{X: x, Y: y})
	}
	return points, maxY
}

type canvas struct {
	CurveOptions
	maxX, maxY float64
}

func (c canvas) x(v float64) float64 {
	return c.Padding + v/c.maxX*(c.Width-2*c.Padding)
}

func (c canvas) y(v float64) float64 {
	return c.Height - c.Padding - v/c.maxY*(c.Height-2*c.Padding)
}

func (c canvas) baseline() float64 {
	return c.Height - c.Padding
}

// RenderCurve draws the normal curve for stats as an SVG element.
func RenderCurve(stats Stats, opts CurveOptions) string {
	opts = opts.withDefaults()
	maxX := stats.HighestPossible
	if !(maxX > 0) {
		maxX = defaultHighestPossible
	}
	hasCurve := stats.Total > 0 && !math.IsNaN(stats.Average)
	std := spread(stats.StdDev)

	points, maxY := SampleCurve(stats.Average, stats.StdDev, maxX, opts.Steps)
	c := canvas{CurveOptions: opts, maxX: maxX, maxY: maxY}
	base := svgNum(c.baseline())

	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%s" height="%s" style="display: block; margin: 10px auto;">`+"\n",
		svgNum(opts.Width), svgNum(opts.Height))

	for _, t := range []float64{stats.PassThreshold, stats.SobresalienteThreshold} {
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#e0e0e0" stroke-width="1" opacity="0.6"/>`+"\n",
			svgNum(c.x(t)), svgNum(opts.Padding), svgNum(c.x(t)), base)
	}

	if hasCurve && maxY > 0 {
		path := curvePath(points, c)
		fmt.Fprintf(&b, `<path d="%s L %s %s L %s %s Z" fill="#e9e9e9" opacity="0.4"/>`+"\n",
			path, svgNum(c.x(maxX)), base, svgNum(c.x(0)), base)
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="#666" stroke-width="2"/>`+"\n", path)

		avgX := svgNum(c.x(stats.Average))
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#666" stroke-width="1" stroke-dasharray="2"/>`+"\n",
			avgX, base, avgX, svgNum(c.y(normalPDF(stats.Average, stats.Average, std))))

		if stats.User != nil {
			ux := svgNum(c.x(stats.User.Grade))
			uy := svgNum(c.y(normalPDF(stats.User.Grade, stats.Average, std)))
			fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#4edfff" stroke-width="2"/>`+"\n", ux, base, ux, uy)
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="4" fill="#4edfff"/>`+"\n", ux, uy)
		}
	}

	fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#e0e0e0" stroke-width="1"/>`+"\n",
		svgNum(opts.Padding), base, svgNum(opts.Width-opts.Padding), base)

	labelY := svgNum(opts.Height - 5)
	label := func(x float64, fill, text string) {
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" font-size="9" fill="%s">%s</text>`+"\n",
			svgNum(x), labelY, fill, text)
	}
	label(c.x(0), "#888", "0")
	label(c.x(stats.PassThreshold), "#888", FormatNumber(stats.PassThreshold))
	if hasCurve {
		label(c.x(stats.Average), "#777", "μ ("+FormatDecimal2(stats.Average)+")")
	}
	label(c.x(stats.SobresalienteThreshold), "#888", FormatNumber(stats.SobresalienteThreshold))
	label(c.x(maxX), "#888", FormatNumber(maxX))

	b.WriteString("</svg>")
	return b.String()
}

func curvePath(points []CurvePoint, c canvas) string {
	parts := make([]string, 0, len(points))
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		parts = append(parts, cmd+" "+strconv.FormatFloat(c.x(p.X), 'f', 1, 64)+" "+strconv.FormatFloat(c.y(p.Y), 'f', 1, 64))
	}
	return strings.Join(parts, " ")
}
