package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	loader "github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Hubs     int // Regional hubs fed by the plant; each can freeze and thaw
	Stores   int // Demand stores, spread over the hubs
	Products int
	Days     int // Length of the planning window
	Start    time.Time
	// Inventory is opening hub stock as a multiple of one day of demand
	Inventory float64
	// FrozenLanes is the share of hub-to-store lanes that run frozen
	FrozenLanes float64
	Trucks      bool // Schedule Mon/Wed/Fri trucks on plant-to-hub lanes
	OutputDir   string
	Seed        int64 // Random seed for reproducible generation
	Verbose     bool
	Out         io.Writer
}

// GenerateCommand writes a synthetic scenario directory
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Start.IsZero() {
		config.Start = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

type generatedStore struct {
	id      string
	hub     string
	transit int
	frozen  bool
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out,
			"🔧 Generating scenario with %d hubs, %d stores, %d products over %d days\n",
			cmd.config.Hubs, cmd.config.Stores, cmd.config.Products, cmd.config.Days)
		fmt.Fprintf(cmd.config.Out, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	hubs := make([]string, cmd.config.Hubs)
	for i := range hubs {
		hubs[i] = fmt.Sprintf("HUB%02d", i+1)
	}
	stores := make([]generatedStore, cmd.config.Stores)
	for i := range stores {
		stores[i] = generatedStore{
			id:      fmt.Sprintf("STORE%03d", i+1),
			hub:     hubs[i%len(hubs)],
			transit: 1 + cmd.rand.Intn(2),
			frozen:  cmd.rand.Float64() < cmd.config.FrozenLanes,
		}
	}
	products := make([]string, cmd.config.Products)
	for i := range products {
		products[i] = fmt.Sprintf("SKU%02d", i+1)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"manifest", cmd.generateManifest},
		{"nodes", func() error { return cmd.generateNodes(hubs, stores) }},
		{"routes", func() error { return cmd.generateRoutes(hubs, stores) }},
		{"products", func() error { return cmd.generateProducts(products) }},
		{"forecast", func() error { return cmd.generateForecast(stores, products) }},
		{"labor", cmd.generateLabor},
		{"inventory", func() error { return cmd.generateInventory(hubs, stores, products) }},
		{"trucks", func() error { return cmd.generateTrucks(hubs) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to generate %s: %w", step.name, err)
		}
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out, "✅ Scenario written to %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	c := cmd.config
	switch {
	case c.OutputDir == "":
		return fmt.Errorf("output directory is required")
	case c.Hubs <= 0 || c.Stores <= 0 || c.Products <= 0:
		return fmt.Errorf("hubs, stores and products must be positive")
	case c.Days <= 1:
		return fmt.Errorf("days must be at least 2, got %d", c.Days)
	case c.FrozenLanes < 0 || c.FrozenLanes > 1:
		return fmt.Errorf("frozen lane share must be in [0,1], got %g", c.FrozenLanes)
	case c.Inventory < 0:
		return fmt.Errorf("inventory multiplier cannot be negative")
	}
	return nil
}

func (cmd *GenerateCommand) end() time.Time {
	return entities.AddDays(cmd.config.Start, cmd.config.Days-1)
}

func (cmd *GenerateCommand) generateManifest() error {
	manifest := map[string]any{
		"name":          filepath.Base(cmd.config.OutputDir),
		"start":         cmd.config.Start.Format(entities.DateLayout),
		"end":           cmd.end().Format(entities.DateLayout),
		"snapshot_date": cmd.config.Start.Format(entities.DateLayout),
		"costs": map[string]string{
			"production_cost_per_unit":     "1.10",
			"shortage_penalty_per_unit":    "25",
			"waste_multiplier":             "1.5",
			"storage_ambient_per_unit_day": "0.02",
			"storage_frozen_per_unit_day":  "0.01",
		},
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cmd.config.OutputDir, loader.ManifestFile), data, 0644)
}

func (cmd *GenerateCommand) generateNodes(hubs []string, stores []generatedStore) error {
	rows := [][]string{{"MFG", "Plant", "true", "false", "true", "ambient", "1400", "0.5", "0.25", "0.5"}}
	for _, h := range hubs {
		rows = append(rows, []string{h, "Hub " + h, "false", "false", "true", "both", "", "", "", ""})
	}
	for _, s := range stores {
		rows = append(rows, []string{s.id, "Store " + s.id, "false", "true", "true", "ambient", "", "", "", ""})
	}
	return cmd.writeTable(loader.NodesFile, []string{"id", "name", "can_manufacture", "has_demand", "can_store", "storage_mode", "production_rate", "startup_hours", "shutdown_hours", "changeover_hours"}, rows)
}

func (cmd *GenerateCommand) generateRoutes(hubs []string, stores []generatedStore) error {
	var rows [][]string
	for _, h := range hubs {
		rows = append(rows, []string{"MFG", h, "1", "ambient", "0.25"})
	}
	for _, s := range stores {
		state := "ambient"
		if s.frozen {
			state = "frozen"
		}
		cost := 0.30 + 0.05*float64(s.transit)
		rows = append(rows, []string{s.hub, s.id, strconv.Itoa(s.transit), state, strconv.FormatFloat(cost, 'f', 2, 64)})
	}
	return cmd.writeTable(loader.RoutesFile, []string{"origin", "destination", "transit_days", "transport_state", "cost_per_unit"}, rows)
}

func (cmd *GenerateCommand) generateProducts(products []string) error {
	var rows [][]string
	for _, p := range products {
		ambient := 7 + cmd.rand.Intn(14) // 7-20 days
		thawed := max(3, ambient-3)
		rows = append(rows, []string{
			p, "Product " + p,
			strconv.Itoa(ambient), "120", strconv.Itoa(thawed),
			strconv.Itoa(1 + cmd.rand.Intn(3)),
			"", "",
		})
	}
	return cmd.writeTable(loader.ProductsFile, []string{"id", "name", "ambient_days", "frozen_days", "thawed_days", "min_acceptable_days", "units_per_mix", "units_per_pallet"}, rows)
}

// dailyDemand is the mean demand of one store for one product
func (cmd *GenerateCommand) dailyDemand() float64 {
	return float64(20 + cmd.rand.Intn(80))
}

func (cmd *GenerateCommand) generateForecast(stores []generatedStore, products []string) error {
	var rows [][]string
	for _, s := range stores {
		for _, p := range products {
			mean := cmd.dailyDemand()
			// nothing can reach a store before its lane transit
			for d := s.transit + 1; d < cmd.config.Days; d++ {
				date := entities.AddDays(cmd.config.Start, d)
				if date.Weekday() == time.Sunday {
					continue
				}
				qty := mean * (0.7 + 0.6*cmd.rand.Float64())
				rows = append(rows, []string{s.id, p, date.Format(entities.DateLayout), strconv.FormatFloat(float64(int(qty)), 'f', -1, 64)})
			}
		}
	}
	return cmd.writeTable(loader.ForecastFile, []string{"node", "product", "date", "quantity"}, rows)
}

// generateLabor staffs weekdays with a fixed shift, Saturday on demand and
// leaves Sunday out of the calendar
func (cmd *GenerateCommand) generateLabor() error {
	var rows [][]string
	for d := 0; d < cmd.config.Days; d++ {
		date := entities.AddDays(cmd.config.Start, d)
		switch date.Weekday() {
		case time.Sunday:
			continue
		case time.Saturday:
			rows = append(rows, []string{date.Format(entities.DateLayout), "false", "", "", "", "", "40", "4", "12"})
		default:
			rows = append(rows, []string{date.Format(entities.DateLayout), "true", "12", "2", "25", "37.5", "", "", ""})
		}
	}
	return cmd.writeTable(loader.LaborFile, []string{"date", "is_fixed", "fixed_hours", "overtime_hours", "regular_rate", "overtime_rate", "non_fixed_rate", "minimum_hours", "capacity_hours"}, rows)
}

func (cmd *GenerateCommand) generateInventory(hubs []string, stores []generatedStore, products []string) error {
	if cmd.config.Inventory <= 0 {
		return nil
	}
	storesPerHub := make(map[string]int)
	for _, s := range stores {
		storesPerHub[s.hub]++
	}

	cohort := entities.AddDays(cmd.config.Start, -1).Format(entities.DateLayout)
	var rows [][]string
	for _, h := range hubs {
		for _, p := range products {
			qty := float64(storesPerHub[h]) * 60 * cmd.config.Inventory
			if qty <= 0 {
				continue
			}
			rows = append(rows, []string{h, p, "ambient", strconv.FormatFloat(qty, 'f', 0, 64), cohort})
		}
	}
	return cmd.writeTable(loader.InventoryFile, []string{"node", "product", "state", "quantity", "cohort_date"}, rows)
}

func (cmd *GenerateCommand) generateTrucks(hubs []string) error {
	if !cmd.config.Trucks {
		return nil
	}
	var rows [][]string
	for _, h := range hubs {
		rows = append(rows, []string{"T-" + h, "MFG", h, "mon;wed;fri", "20000", ""})
	}
	return cmd.writeTable(loader.TrucksFile, []string{"id", "origin", "destination", "weekdays", "capacity_units", "pallet_capacity"}, rows)
}

func (cmd *GenerateCommand) writeTable(name string, header []string, rows [][]string) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out, "  %-16s %d rows\n", name, len(rows))
	}
	return nil
}
