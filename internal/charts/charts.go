package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ivanoskov/keloladuit/internal/ledger"
	"github.com/ivanoskov/keloladuit/internal/service"
)

var (
	colorExpense = drawing.ColorFromHex("ef4444")
	colorIncome  = drawing.ColorFromHex("22c55e")
)

// ChartGenerator renders ledger views as PNG images
type ChartGenerator struct {
	Width  int
	Height int
}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{Width: 1200, Height: 600}
}

func background() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   50,
			Right:  50,
			Bottom: 50,
		},
		FillColor: chart.ColorWhite,
	}
}

func axisStyle() chart.Style {
	return chart.Style{
		FontSize:  12,
		FontColor: chart.ColorBlack,
	}
}

// yRange always spans at least one unit so go-chart never sees a zero range
func yRange(values []float64) *chart.ContinuousRange {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	if top < 1 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

func rupiahAxis(v interface{}) string {
	if f, ok := v.(float64); ok {
		return service.FormatRupiah(decimal.NewFromFloat(f).Round(0))
	}
	return ""
}

// GenerateExpenseTrend draws the trailing monthly expense series. It returns
// nil without error when there is nothing to draw.
func (g *ChartGenerator) GenerateExpenseTrend(points []ledger.SeriesPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		v := p.TotalExpense.InexactFloat64()
		values = append(values, v)
		bars = append(bars, chart.Value{
			Label: service.MonthLabel(p.Month),
			Value: v,
			Style: chart.Style{
				StrokeColor: colorExpense,
				FillColor:   colorExpense.WithAlpha(180),
			},
		})
	}

	graph := chart.BarChart{
		Title:      "Pengeluaran Bulanan",
		TitleStyle: axisStyle(),
		Width:      g.Width,
		Height:     g.Height,
		BarWidth:   barWidth(g.Width, len(bars)),
		Background: background(),
		XAxis:      axisStyle(),
		YAxis: chart.YAxis{
			Range:          yRange(values),
			ValueFormatter: rupiahAxis,
			Style:          axisStyle(),
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render expense trend: %w", err)
	}
	return buffer.Bytes(), nil
}

// GenerateMonthTotals compares a month's income and expense
func (g *ChartGenerator) GenerateMonthTotals(sum ledger.Summary) ([]byte, error) {
	if sum.Count == 0 {
		return nil, nil
	}
	income := sum.TotalIncome.InexactFloat64()
	expense := sum.TotalExpense.InexactFloat64()

	graph := chart.BarChart{
		Title:      service.MonthLabel(sum.Month),
		TitleStyle: axisStyle(),
		Width:      g.Width,
		Height:     g.Height,
		BarWidth:   120,
		Background: background(),
		XAxis:      axisStyle(),
		YAxis: chart.YAxis{
			Range:          yRange([]float64{income, expense}),
			ValueFormatter: rupiahAxis,
			Style:          axisStyle(),
		},
		Bars: []chart.Value{
			{
				Label: "Pemasukan: " + service.FormatRupiah(sum.TotalIncome),
				Value: income,
				Style: chart.Style{StrokeColor: colorIncome, FillColor: colorIncome},
			},
			{
				Label: "Pengeluaran: " + service.FormatRupiah(sum.TotalExpense),
				Value: expense,
				Style: chart.Style{StrokeColor: colorExpense, FillColor: colorExpense},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render month totals: %w", err)
	}
	return buffer.Bytes(), nil
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 60
	}
	w := (width - 200) / (bars * 2)
	if w > 80 {
		return 80
	}
	if w < 10 {
		return 10
	}
	return w
}
