package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/orchestration"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Writer receives text and stdout output; nil means os.Stdout
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate creates output in the specified format
func Generate(result *dto.PlanningResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(result, config)
	case "json":
		return writeJSON(result, "plan.json", config)
	case "csv":
		return generateCSVOutput(result, config)
	case "svg":
		return generateSVGOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateRolling renders a stitched rolling-horizon result. CSV and SVG
// output are written per window into numbered subdirectories.
func GenerateRolling(result *orchestration.RollingResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateRollingText(result, config)
	case "json":
		return writeJSON(result, "rolling.json", config)
	case "csv", "svg":
		if config.OutputDir == "" {
			return fmt.Errorf("output directory required for %s format", config.Format)
		}
		for _, w := range result.Windows {
			windowConfig := config
			windowConfig.OutputDir = filepath.Join(config.OutputDir, fmt.Sprintf("window_%02d", w.Number))
			if err := Generate(w.Result, windowConfig); err != nil {
				return fmt.Errorf("failed to write window %d: %w", w.Number, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.PlanningResult, config Config) error {
	w := config.writer()

	fmt.Fprintf(w, "📊 Production Plan %s → %s\n", result.Start.Format(entities.DateLayout), result.End.Format(entities.DateLayout))
	fmt.Fprintf(w, "==========================================\n\n")

	fmt.Fprintf(w, "Run:         %s\n", result.RunID)
	fmt.Fprintf(w, "Status:      %s (%s)\n", result.Solve.Status, result.Solve.Backend)
	fmt.Fprintf(w, "Solve Time:  %v\n", result.Solve.SolveTime.Round(time.Millisecond))
	if result.Solve.Gap != nil {
		fmt.Fprintf(w, "MIP Gap:     %.4f%%\n", *result.Solve.Gap*100)
	}
	if result.Solve.Message != "" {
		fmt.Fprintf(w, "Message:     %s\n", result.Solve.Message)
	}
	fmt.Fprintln(w)

	if !result.HasPlan() {
		fmt.Fprintf(w, "❌ No plan available\n")
		writeWarnings(w, result.Warnings)
		return nil
	}

	fmt.Fprintf(w, "💰 Costs:\n")
	c := result.Costs
	for _, row := range []struct {
		label string
		value string
	}{
		{"Production", c.Production.StringFixed(2)},
		{"Labor", c.Labor.StringFixed(2)},
		{"Transport", c.Transport.StringFixed(2)},
		{"Holding", c.Holding.StringFixed(2)},
		{"Shortage", c.Shortage.StringFixed(2)},
		{"Waste", c.Waste.StringFixed(2)},
		{"Total", c.Total.StringFixed(2)},
	} {
		fmt.Fprintf(w, "  %-12s %14s\n", row.label, row.value)
	}
	fmt.Fprintln(w)

	t := result.Totals
	fmt.Fprintf(w, "Produced: %.0f  Shipped: %.0f  Demand: %.0f  Satisfied: %.0f  Short: %.0f  Fill Rate: %.1f%%\n\n",
		t.Production, t.Shipped, t.Demand, t.Satisfied, t.Shortage, t.FillRate()*100)

	if len(result.Production) > 0 {
		fmt.Fprintf(w, "🏭 Production:\n")
		fmt.Fprintf(w, "%-12s %-10s %-12s %-8s %12s\n", "Date", "Node", "Product", "State", "Quantity")
		fmt.Fprintf(w, "%-12s %-10s %-12s %-8s %12s\n", "------------", "----------", "------------", "--------", "------------")
		for _, p := range result.Production {
			fmt.Fprintf(w, "%-12s %-10s %-12s %-8s %12.1f\n",
				p.Date.Format(entities.DateLayout), p.Node, p.Product, p.State, p.Quantity)
		}
		fmt.Fprintln(w)
	}

	if len(result.ShipmentTotals) > 0 {
		fmt.Fprintf(w, "🚚 Shipments:\n")
		fmt.Fprintf(w, "%-12s %-10s %-10s %-12s %12s\n", "Delivery", "Origin", "Dest", "Product", "Quantity")
		fmt.Fprintf(w, "%-12s %-10s %-10s %-12s %12s\n", "------------", "----------", "----------", "------------", "------------")
		for _, s := range result.ShipmentTotals {
			fmt.Fprintf(w, "%-12s %-10s %-10s %-12s %12.1f\n",
				s.DeliveryDate.Format(entities.DateLayout), s.Origin, s.Destination, s.Product, s.Quantity)
		}
		fmt.Fprintln(w)
	}

	if len(result.Labor) > 0 {
		fmt.Fprintf(w, "👷 Labor:\n")
		fmt.Fprintf(w, "%-12s %-10s %-6s %8s %8s %8s %12s\n", "Date", "Node", "Fixed", "Used", "OT", "Paid", "Cost")
		for _, l := range result.Labor {
			fmt.Fprintf(w, "%-12s %-10s %-6t %8.2f %8.2f %8.2f %12s\n",
				l.Date.Format(entities.DateLayout), l.Node, l.Fixed, l.HoursUsed, l.OvertimeHours, l.PaidHours, l.Cost.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	var shortages []dto.DemandSummary
	for _, d := range result.Demand {
		if d.Shortage > 1e-6 {
			shortages = append(shortages, d)
		}
	}
	if len(shortages) > 0 {
		fmt.Fprintf(w, "⚠️  Shortages:\n")
		fmt.Fprintf(w, "%-12s %-10s %-12s %12s %12s\n", "Date", "Node", "Product", "Demand", "Short")
		for _, d := range shortages {
			fmt.Fprintf(w, "%-12s %-10s %-12s %12.1f %12.1f\n",
				d.Date.Format(entities.DateLayout), d.Node, d.Product, d.Demand, d.Shortage)
		}
		fmt.Fprintln(w)
	}

	writeWarnings(w, result.Warnings)
	return nil
}

func writeWarnings(w io.Writer, warnings []dto.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  Warnings (%d):\n", len(warnings))
	for _, warn := range warnings {
		fmt.Fprintf(w, "  [%s] %s\n", warn.Source, warn.Message)
	}
	fmt.Fprintln(w)
}

func generateRollingText(result *orchestration.RollingResult, config Config) error {
	w := config.writer()

	fmt.Fprintf(w, "📊 Rolling Horizon (%d windows)\n", len(result.Windows))
	fmt.Fprintf(w, "==============================\n\n")
	fmt.Fprintf(w, "%-4s %-12s %-12s %-12s %-10s %14s\n", "#", "Start", "End", "Commit", "Status", "Cost")
	for _, win := range result.Windows {
		cost := "-"
		if win.Result.HasPlan() {
			cost = win.Result.Costs.Total.StringFixed(2)
		}
		fmt.Fprintf(w, "%-4d %-12s %-12s %-12s %-10s %14s\n",
			win.Number,
			win.Start.Format(entities.DateLayout),
			win.End.Format(entities.DateLayout),
			win.CommitEnd.Format(entities.DateLayout),
			win.Result.Solve.Status,
			cost)
	}
	fmt.Fprintln(w)

	t := result.Totals
	fmt.Fprintf(w, "Committed: produced %.0f, shipped %.0f, demand %.0f, satisfied %.0f, short %.0f (fill rate %.1f%%)\n",
		t.Production, t.Shipped, t.Demand, t.Satisfied, t.Shortage, t.FillRate()*100)
	if result.Ending != nil {
		fmt.Fprintf(w, "Ending state on %s: %.0f units (%d cohorts, %d in transit)\n",
			result.Ending.SnapshotDate.Format(entities.DateLayout), result.Ending.Total(),
			len(result.Ending.Entries), len(result.Ending.InTransit))
	}
	return nil
}

// writeJSON writes v to stdout, or to name inside the output directory
func writeJSON(v any, name string, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, name)
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one CSV table per plan section
func generateCSVOutput(result *dto.PlanningResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"production.csv", []string{"node", "product", "date", "state", "quantity", "mixes"}, productionRows(result)},
		{"shipments.csv", []string{"origin", "destination", "product", "cohort_date", "departure_date", "delivery_date", "departure_state", "arrival_state", "quantity"}, shipmentRows(result)},
		{"inventory.csv", []string{"node", "product", "cohort_date", "date", "state", "quantity"}, inventoryRows(result)},
		{"demand.csv", []string{"node", "product", "date", "demand", "satisfied", "shortage"}, demandRows(result)},
		{"labor.csv", []string{"node", "date", "fixed", "hours_used", "fixed_hours", "overtime_hours", "paid_hours", "cost"}, laborRows(result)},
		{"trucks.csv", []string{"truck_id", "lane", "date", "product", "units", "pallets"}, truckRows(result)},
		{"costs.csv", []string{"component", "cost"}, costRows(result)},
	}

	for _, table := range tables {
		filename := filepath.Join(config.OutputDir, table.name)
		if err := writeCSV(filename, table.header, table.rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", table.name, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 %s\n", filename)
		}
	}
	return nil
}

func writeCSV(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func day(t time.Time) string {
	return t.Format(entities.DateLayout)
}

func productionRows(result *dto.PlanningResult) [][]string {
	var rows [][]string
	for _, p := range result.Production {
		rows = append(rows, []string{string(p.Node), string(p.Product), day(p.Date), p.State.String(), num(p.Quantity), num(p.Mixes)})
	}
	return rows
}

func shipmentRows(result *dto.PlanningResult) [][]string {
	var rows [][]string
	for _, s := range result.Shipments {
		rows = append(rows, []string{
			string(s.Origin), string(s.Destination), string(s.Product),
			day(s.CohortDate), day(s.DepartureDate), day(s.DeliveryDate),
			s.DepartureState.String(), s.ArrivalState.String(), num(s.Quantity),
		})
	}
	return rows
}

func inventoryRows(result *dto.PlanningResult) [][]string {
	var rows [][]string
	for _, inv := range result.Inventory {
		rows = append(rows, []string{string(inv.Node), string(inv.Product), day(inv.CohortDate), day(inv.Date), inv.State.String(), num(inv.Quantity)})
	}
	return rows
}

func demandRows(result *dto.PlanningResult) [][]string {
	var rows [][]string
	for _, d := range result.Demand {
		rows = append(rows, []string{string(d.Node), string(d.Product), day(d.Date), num(d.Demand), num(d.Satisfied), num(d.Shortage)})
	}
	return rows
}

func laborRows(result *dto.PlanningResult) [][]string {
	var rows [][]string
	for _, l := range result.Labor {
		rows = append(rows, []string{
			string(l.Node), day(l.Date), strconv.FormatBool(l.Fixed),
			num(l.HoursUsed), num(l.FixedHours), num(l.OvertimeHours), num(l.PaidHours), l.Cost.StringFixed(2),
		})
	}
	return rows
}

func truckRows(result *dto.PlanningResult) [][]string {
	var rows [][]string
	for _, t := range result.Trucks {
		rows = append(rows, []string{t.TruckID, t.Lane, day(t.Date), string(t.Product), num(t.Units), num(t.Pallets)})
	}
	return rows
}

func costRows(result *dto.PlanningResult) [][]string {
	c := result.Costs
	return [][]string{
		{"production", c.Production.StringFixed(2)},
		{"labor", c.Labor.StringFixed(2)},
		{"transport", c.Transport.StringFixed(2)},
		{"holding", c.Holding.StringFixed(2)},
		{"shortage", c.Shortage.StringFixed(2)},
		{"waste", c.Waste.StringFixed(2)},
		{"total", c.Total.StringFixed(2)},
	}
}
