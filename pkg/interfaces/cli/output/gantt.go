package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// GanttChart lays out a plan on a day grid: one row per production line
// (node, product) and per shipping lane (origin, destination, product)
type GanttChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	StartTime    time.Time
	EndTime      time.Time
}

// GanttBar represents a single bar in the Gantt chart
type GanttBar struct {
	Row      string
	State    entities.State
	Quantity float64
	Start    time.Time
	// End is exclusive; production bars span one day
	End   time.Time
	X     int
	Width int
	Color string
	Label string
}

// NewGanttChart sizes a chart for the plan's horizon
func NewGanttChart(result *dto.PlanningResult) *GanttChart {
	rows := len(ganttRows(result))
	if rows == 0 {
		rows = 1
	}
	rowHeight := 30
	start := entities.Day(result.Start)
	end := entities.AddDays(result.End, 1)
	for _, s := range result.Shipments {
		if s.DepartureDate.Before(start) {
			start = s.DepartureDate
		}
		if !s.DeliveryDate.Before(end) {
			end = entities.AddDays(s.DeliveryDate, 1)
		}
	}

	return &GanttChart{
		Width:        1200,
		Height:       rows*rowHeight + 170,
		MarginLeft:   220,
		MarginTop:    60,
		MarginRight:  100,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		StartTime:    start,
		EndTime:      end,
	}
}

// GenerateSVG creates an SVG representation of the Gantt chart
func (gc *GanttChart) GenerateSVG(result *dto.PlanningResult) string {
	rows := ganttRows(result)
	if len(rows) == 0 {
		return gc.generateEmptyChart()
	}

	var svg strings.Builder

	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height)
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.row-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.plan-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.bar-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title" text-anchor="middle">Production &amp; Distribution Schedule %s to %s</text>`,
		gc.Width/2, result.Start.Format(entities.DateLayout), result.End.Format(entities.DateLayout))

	bars := gc.createBars(result)

	gc.drawTimeAxis(&svg, len(rows))
	for i, row := range rows {
		gc.drawRow(&svg, i, row, bars[row])
	}
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func productionRow(node entities.NodeID, product entities.ProductID) string {
	return fmt.Sprintf("make %s / %s", node, product)
}

func laneRow(origin, destination entities.NodeID, product entities.ProductID) string {
	return fmt.Sprintf("%s → %s / %s", origin, destination, product)
}

// ganttRows lists production rows first, then lanes, each sorted by name
func ganttRows(result *dto.PlanningResult) []string {
	seen := make(map[string]bool)
	var makeRows, lanes []string
	for _, p := range result.Production {
		row := productionRow(p.Node, p.Product)
		if !seen[row] {
			seen[row] = true
			makeRows = append(makeRows, row)
		}
	}
	for _, s := range result.Shipments {
		row := laneRow(s.Origin, s.Destination, s.Product)
		if !seen[row] {
			seen[row] = true
			lanes = append(lanes, row)
		}
	}
	sort.Strings(makeRows)
	sort.Strings(lanes)
	return append(makeRows, lanes...)
}

// createBars converts production and shipments into bars keyed by row
func (gc *GanttChart) createBars(result *dto.PlanningResult) map[string][]GanttBar {
	bars := make(map[string][]GanttBar)

	for _, p := range result.Production {
		bar := gc.place(GanttBar{
			Row:      productionRow(p.Node, p.Product),
			State:    p.State,
			Quantity: p.Quantity,
			Start:    p.Date,
			End:      entities.AddDays(p.Date, 1),
			Color:    stateColor(p.State),
		})
		bar.Label = fmt.Sprintf("%s %s: make %.0f %s", p.Date.Format(entities.DateLayout), p.Node, p.Quantity, p.Product)
		bars[bar.Row] = append(bars[bar.Row], bar)
	}

	for _, s := range result.Shipments {
		end := s.DeliveryDate
		if !end.After(s.DepartureDate) {
			end = entities.AddDays(s.DepartureDate, 1)
		}
		bar := gc.place(GanttBar{
			Row:      laneRow(s.Origin, s.Destination, s.Product),
			State:    s.DepartureState,
			Quantity: s.Quantity,
			Start:    s.DepartureDate,
			End:      end,
			Color:    stateColor(s.DepartureState),
		})
		bar.Label = fmt.Sprintf("%s → %s: %.0f %s cohort %s, %s on arrival",
			s.DepartureDate.Format(entities.DateLayout), s.DeliveryDate.Format(entities.DateLayout),
			s.Quantity, s.Product, s.CohortDate.Format(entities.DateLayout), s.ArrivalState)
		bars[bar.Row] = append(bars[bar.Row], bar)
	}

	for row := range bars {
		sort.SliceStable(bars[row], func(i, j int) bool {
			return bars[row][i].Start.Before(bars[row][j].Start)
		})
	}
	return bars
}

// place computes the horizontal extent of a bar
func (gc *GanttChart) place(bar GanttBar) GanttBar {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	total := gc.EndTime.Sub(gc.StartTime)
	if total <= 0 {
		total = 24 * time.Hour
	}

	bar.X = gc.MarginLeft + int(float64(bar.Start.Sub(gc.StartTime))/float64(total)*float64(chartWidth))
	bar.Width = int(float64(bar.End.Sub(bar.Start)) / float64(total) * float64(chartWidth))
	if bar.Width < 2 {
		bar.Width = 2
	}
	return bar
}

// drawTimeAxis draws one label and grid line per day, thinned to weekly on
// long horizons
func (gc *GanttChart) drawTimeAxis(svg *strings.Builder, numRows int) {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	total := gc.EndTime.Sub(gc.StartTime)
	days := entities.DaysBetween(gc.StartTime, gc.EndTime)
	step := 1
	if days > 31 {
		step = 7
	}
	gridBottom := gc.MarginTop + numRows*gc.RowHeight

	for d := 0; d <= days; d += step {
		t := entities.AddDays(gc.StartTime, d)
		x := gc.MarginLeft + int(float64(t.Sub(gc.StartTime))/float64(total)*float64(chartWidth))
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, gc.MarginTop, x, gridBottom)
		if d < days {
			fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">%s</text>`, x+2, gridBottom+15, t.Format("Jan 2"))
		}
	}

	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, gridBottom, gc.Width-gc.MarginRight, gridBottom)
}

func (gc *GanttChart) drawRow(svg *strings.Builder, i int, row string, bars []GanttBar) {
	y := gc.MarginTop + i*gc.RowHeight

	fmt.Fprintf(svg, `<text x="%d" y="%d" class="row-label" text-anchor="end">%s</text>`,
		gc.MarginLeft-15, y+gc.RowHeight/2+4, escape(row))
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, y+gc.RowHeight, gc.Width-gc.MarginRight, y+gc.RowHeight)

	for _, bar := range bars {
		gc.drawBar(svg, bar, y)
	}
}

func (gc *GanttChart) drawBar(svg *strings.Builder, bar GanttBar, rowY int) {
	barHeight := gc.RowHeight - 4
	barY := rowY + 2

	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="plan-bar"><title>%s</title></rect>`,
		bar.X, barY, bar.Width, barHeight, bar.Color, escape(bar.Label))

	if bar.Width > 40 {
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="bar-text" text-anchor="middle">%.0f</text>`,
			bar.X+bar.Width/2, barY+barHeight/2+3, bar.Quantity)
	}
}

// drawLegend draws a legend explaining the colors
func (gc *GanttChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 120
	legendY := gc.Height - gc.MarginBottom + 20

	items := []entities.State{entities.Ambient, entities.Frozen, entities.Thawed}
	for i, state := range items {
		x := legendX + (i-2)*90
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, x, legendY, stateColor(state))
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">%s</text>`, x+18, legendY+8, state)
	}
}

func stateColor(s entities.State) string {
	switch s {
	case entities.Frozen:
		return "#2196F3"
	case entities.Thawed:
		return "#FF9800"
	default:
		return "#4CAF50"
	}
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// generateEmptyChart creates an empty chart when the plan moves nothing
func (gc *GanttChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Production Planned</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2)
}

// generateSVGOutput writes schedule.svg into the output directory
func generateSVGOutput(result *dto.PlanningResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for SVG format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	chart := NewGanttChart(result)
	filename := filepath.Join(config.OutputDir, "schedule.svg")
	if err := os.WriteFile(filename, []byte(chart.GenerateSVG(result)), 0644); err != nil {
		return fmt.Errorf("failed to write SVG file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Schedule chart saved to: %s\n", filename)
	}
	return nil
}
