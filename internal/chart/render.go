// Package chart turns performance history into canvas drawing instructions.
package chart

import (
	"fmt"
	"math"

	"ai-teacher/internal/domain"
)

const (
	Padding       = 50.0
	GridLines     = 5
	DefaultWidth  = 800.0
	DefaultHeight = 300.0

	// MinDimension is the smallest canvas side that leaves a plot area inside the padding.
	MinDimension = 2 * Padding

	backgroundColor = "#f8fafc"
	gridColor       = "#e2e8f0"
	labelColor      = "#64748b"
	titleColor      = "#1e293b"
	lineColor       = "#667eea"
	markerRing      = "#ffffff"
	gradientTop     = "rgba(102, 126, 234, 0.3)"
	gradientBottom  = "rgba(102, 126, 234, 0.05)"

	labelFont = "12px Inter, sans-serif"
	dateFont  = "10px Inter, sans-serif"
	titleFont = "bold 14px Inter, sans-serif"
)

// Placeholder is plotted when there is no history yet.
var Placeholder = []float64{60, 65, 70, 75, 80, 75, 85, 90, 85}

// OpKind identifies a drawing primitive.
type OpKind string

const (
	OpFillRect OpKind = "fill_rect"
	OpLine     OpKind = "line"
	OpText     OpKind = "text"
	OpArea     OpKind = "area"
	OpPolyline OpKind = "polyline"
	OpCircle   OpKind = "circle"
)

// Point is a position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GradientStop is one color stop of a vertical linear gradient.
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Instruction is a single drawing step. Only the fields relevant to Kind are set.
type Instruction struct {
	Kind      OpKind         `json:"kind"`
	Points    []Point        `json:"points,omitempty"`
	Width     float64        `json:"width,omitempty"`
	Height    float64        `json:"height,omitempty"`
	Radius    float64        `json:"radius,omitempty"`
	Text      string         `json:"text,omitempty"`
	Font      string         `json:"font,omitempty"`
	Align     string         `json:"align,omitempty"`
	Baseline  string         `json:"baseline,omitempty"`
	Fill      string         `json:"fill,omitempty"`
	Stroke    string         `json:"stroke,omitempty"`
	LineWidth float64        `json:"line_width,omitempty"`
	Gradient  []GradientStop `json:"gradient,omitempty"`
}

// Chart is the rendered result plus the scale it was drawn with.
type Chart struct {
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Padding      float64       `json:"padding"`
	ChartWidth   float64       `json:"chart_width"`
	ChartHeight  float64       `json:"chart_height"`
	MinValue     float64       `json:"min_value"`
	MaxValue     float64       `json:"max_value"`
	Range        float64       `json:"range"`
	Placeholder  bool          `json:"placeholder"`
	Values       []float64     `json:"values"`
	Points       []Point       `json:"points"`
	Instructions []Instruction `json:"instructions"`
}

// Render lays out the score line chart for history on a width×height canvas.
// A side of MinDimension or less falls back to 800×300. The output depends only on its inputs.
func Render(history []domain.PerformanceRecord, width, height float64) Chart {
	if width <= MinDimension {
		width = DefaultWidth
	}
	if height <= MinDimension {
		height = DefaultHeight
	}

	values := make([]float64, 0, len(history))
	for _, h := range history {
		values = append(values, h.Score)
	}
	placeholder := len(values) == 0
	if placeholder {
		values = append(values, Placeholder...)
	}

	c := Chart{
		Width:       width,
		Height:      height,
		Padding:     Padding,
		ChartWidth:  width - 2*Padding,
		ChartHeight: height - 2*Padding,
		Placeholder: placeholder,
		Values:      values,
	}
	c.MinValue, c.MaxValue, c.Range = scale(values)
	c.Points = c.mapPoints(values)

	c.add(Instruction{Kind: OpFillRect, Points: []Point{{0, 0}}, Width: width, Height: height, Fill: backgroundColor})
	c.drawGrid()
	if placeholder {
		c.drawAxisLabels(nil)
	} else {
		c.drawAxisLabels(history)
	}
	if len(c.Points) > 1 {
		c.drawArea()
	}
	c.add(Instruction{Kind: OpPolyline, Points: c.Points, Stroke: lineColor, LineWidth: 3})
	for _, p := range c.Points {
		c.add(Instruction{Kind: OpCircle, Points: []Point{p}, Radius: 6, Fill: markerRing})
		c.add(Instruction{Kind: OpCircle, Points: []Point{p}, Radius: 4, Fill: lineColor})
	}
	c.add(Instruction{
		Kind: OpText, Points: []Point{{20, 10}}, Text: "Score (%)",
		Font: titleFont, Align: "center", Baseline: "top", Fill: titleColor,
	})
	return c
}

func scale(values []float64) (minValue, maxValue, rng float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	minValue = math.Max(0, lo-10)
	maxValue = math.Min(100, hi+10)
	rng = maxValue - minValue
	if rng <= 0 {
		rng = 100
	}
	return minValue, maxValue, rng
}

func (c *Chart) stepX(n int) float64 {
	return c.ChartWidth / float64(max(1, n-1))
}

func (c *Chart) mapPoints(values []float64) []Point {
	step := c.stepX(len(values))
	points := make([]Point, len(values))
	for i, v := range values {
		normalized := (v - c.MinValue) / c.Range
		points[i] = Point{
			X: c.Padding + step*float64(i),
			Y: c.Padding + c.ChartHeight - normalized*c.ChartHeight,
		}
	}
	return points
}

func (c *Chart) drawGrid() {
	for i := 0; i <= GridLines; i++ {
		y := c.Padding + (c.ChartHeight/GridLines)*float64(i)
		value := c.MaxValue - (c.Range/GridLines)*float64(i)
		c.add(Instruction{
			Kind:      OpLine,
			Points:    []Point{{c.Padding, y}, {c.Width - c.Padding, y}},
			Stroke:    gridColor,
			LineWidth: 1,
		})
		c.add(Instruction{
			Kind: OpText, Points: []Point{{c.Padding - 10, y}},
			Text: fmt.Sprintf("%d%%", roundHalfUp(value)),
			Font: labelFont, Align: "right", Baseline: "middle", Fill: labelColor,
		})
	}
}

func (c *Chart) drawAxisLabels(history []domain.PerformanceRecord) {
	base := c.Height - c.Padding
	for i, p := range c.Points {
		label := fmt.Sprintf("Q%d", i+1)
		if history == nil {
			c.add(Instruction{Kind: OpText, Points: []Point{{p.X, base + 10}}, Text: label,
				Font: labelFont, Align: "center", Baseline: "top", Fill: labelColor})
			continue
		}
		c.add(Instruction{Kind: OpText, Points: []Point{{p.X, base + 5}}, Text: label,
			Font: labelFont, Align: "center", Baseline: "top", Fill: labelColor})
		c.add(Instruction{Kind: OpText, Points: []Point{{p.X, base + 20}}, Text: ShortDate(history[i].Timestamp),
			Font: dateFont, Align: "center", Baseline: "top", Fill: labelColor})
	}
}

func (c *Chart) drawArea() {
	bottom := c.Padding + c.ChartHeight
	outline := make([]Point, 0, len(c.Points)+2)
	outline = append(outline, Point{c.Padding, bottom})
	outline = append(outline, c.Points...)
	outline = append(outline, Point{c.Points[len(c.Points)-1].X, bottom})
	c.add(Instruction{
		Kind:   OpArea,
		Points: outline,
		Gradient: []GradientStop{
			{Offset: 0, Color: gradientTop},
			{Offset: 1, Color: gradientBottom},
		},
	})
}

func (c *Chart) add(in Instruction) {
	c.Instructions = append(c.Instructions, in)
}

// roundHalfUp rounds .5 toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
