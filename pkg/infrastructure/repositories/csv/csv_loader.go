package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/memory"
)

// File names inside a scenario directory
const (
	ManifestFile  = "scenario.yaml"
	NodesFile     = "nodes.csv"
	RoutesFile    = "routes.csv"
	ProductsFile  = "products.csv"
	ForecastFile  = "forecast.csv"
	LaborFile     = "labor.csv"
	InventoryFile = "inventory.csv"
	InTransitFile = "in_transit.csv"
	TrucksFile    = "trucks.csv"
)

var (
	nodesHeader     = []string{"id", "name", "can_manufacture", "has_demand", "can_store", "storage_mode", "production_rate", "startup_hours", "shutdown_hours", "changeover_hours"}
	routesHeader    = []string{"origin", "destination", "transit_days", "transport_state", "cost_per_unit"}
	productsHeader  = []string{"id", "name", "ambient_days", "frozen_days", "thawed_days", "min_acceptable_days", "units_per_mix", "units_per_pallet"}
	forecastHeader  = []string{"node", "product", "date", "quantity"}
	laborHeader     = []string{"date", "is_fixed", "fixed_hours", "overtime_hours", "regular_rate", "overtime_rate", "non_fixed_rate", "minimum_hours", "capacity_hours"}
	inventoryHeader = []string{"node", "product", "state", "quantity", "cohort_date"}
	inTransitHeader = []string{"destination", "product", "arrival_state", "cohort_date", "delivery_date", "quantity"}
	trucksHeader    = []string{"id", "origin", "destination", "weekdays", "capacity_units", "pallet_capacity"}
)

// Manifest is the scenario.yaml file of a scenario directory
type Manifest struct {
	Name string `yaml:"name"`
	// Start and End are the default planning window (YYYY-MM-DD)
	Start        string                 `yaml:"start"`
	End          string                 `yaml:"end"`
	SnapshotDate string                 `yaml:"snapshot_date"`
	Costs        entities.CostStructure `yaml:"costs"`
}

// Window parses the manifest's default planning window
func (m Manifest) Window() (time.Time, time.Time, error) {
	if m.Start == "" || m.End == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("scenario %q has no default planning window", m.Name)
	}
	start, err := entities.ParseDate(m.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start %q: %w", m.Start, err)
	}
	end, err := entities.ParseDate(m.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end %q: %w", m.End, err)
	}
	return start, end, nil
}

// Dataset is a loaded scenario directory
type Dataset struct {
	Manifest Manifest
	Scenario *entities.Scenario
}

// Loader handles loading scenario directories of CSV tables
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDirectory reads every table of a scenario directory into a memory
// store and assembles the scenario. inventory.csv, in_transit.csv and
// trucks.csv are optional.
func (l *Loader) LoadDirectory(dir string) (*Dataset, error) {
	manifest, err := l.LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	store := memory.NewScenarioStore()

	nodes, err := l.LoadNodes(filepath.Join(dir, NodesFile))
	if err != nil {
		return nil, err
	}
	if err := store.Network.LoadNodes(nodes); err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}

	routes, err := l.LoadRoutes(filepath.Join(dir, RoutesFile))
	if err != nil {
		return nil, err
	}
	if err := store.Network.LoadRoutes(routes); err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	products, err := l.LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}
	if err := store.Products.LoadProducts(products); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	forecast, err := l.LoadForecast(filepath.Join(dir, ForecastFile))
	if err != nil {
		return nil, err
	}
	if err := store.Forecast.LoadForecast(forecast); err != nil {
		return nil, fmt.Errorf("failed to load forecast: %w", err)
	}

	labor, err := l.LoadLabor(filepath.Join(dir, LaborFile))
	if err != nil {
		return nil, err
	}
	if err := store.Labor.LoadLaborDays(labor); err != nil {
		return nil, fmt.Errorf("failed to load labor calendar: %w", err)
	}

	if err := store.Costs.LoadCostStructure(&manifest.Costs); err != nil {
		return nil, fmt.Errorf("failed to load costs: %w", err)
	}

	snapshot, err := l.loadSnapshot(dir, manifest)
	if err != nil {
		return nil, err
	}
	if err := store.Inventory.LoadSnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	trucks, err := l.LoadTrucks(filepath.Join(dir, TrucksFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := store.Trucks.LoadTruckSchedules(trucks); err != nil {
		return nil, fmt.Errorf("failed to load trucks: %w", err)
	}

	scenario, err := store.Scenario()
	if err != nil {
		return nil, err
	}
	return &Dataset{Manifest: *manifest, Scenario: scenario}, nil
}

func (l *Loader) loadSnapshot(dir string, manifest *Manifest) (*entities.InventorySnapshot, error) {
	entries, err := l.LoadInventory(filepath.Join(dir, InventoryFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	inTransit, err := l.LoadInTransit(filepath.Join(dir, InTransitFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if len(entries) == 0 && len(inTransit) == 0 {
		return nil, nil
	}

	snapshotDate := manifest.SnapshotDate
	if snapshotDate == "" {
		snapshotDate = manifest.Start
	}
	date, err := entities.ParseDate(snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("inventory requires a snapshot_date or start in %s: %w", ManifestFile, err)
	}
	return &entities.InventorySnapshot{SnapshotDate: date, Entries: entries, InTransit: inTransit}, nil
}

// LoadManifest loads scenario.yaml
func (l *Loader) LoadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", filename, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, err)
	}
	return &manifest, nil
}

// LoadNodes loads nodes from a CSV file
func (l *Loader) LoadNodes(filename string) ([]*entities.Node, error) {
	records, err := readTable(filename, "nodes", nodesHeader)
	if err != nil {
		return nil, err
	}

	var nodes []*entities.Node
	for i, record := range records {
		node, err := parseNode(record)
		if err != nil {
			return nil, fmt.Errorf("nodes CSV row %d: %w", i+2, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// LoadRoutes loads routes from a CSV file
func (l *Loader) LoadRoutes(filename string) ([]*entities.Route, error) {
	records, err := readTable(filename, "routes", routesHeader)
	if err != nil {
		return nil, err
	}

	var routes []*entities.Route
	for i, record := range records {
		transit, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("routes CSV row %d: invalid transit_days: %s", i+2, record[2])
		}
		state, err := entities.ParseState(record[3])
		if err != nil {
			return nil, fmt.Errorf("routes CSV row %d: %w", i+2, err)
		}
		cost, err := decimal.NewFromString(record[4])
		if err != nil {
			return nil, fmt.Errorf("routes CSV row %d: invalid cost_per_unit: %s", i+2, record[4])
		}
		route, err := entities.NewRoute(entities.NodeID(record[0]), entities.NodeID(record[1]), transit, state, cost)
		if err != nil {
			return nil, fmt.Errorf("routes CSV row %d: %w", i+2, err)
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readTable(filename, "products", productsHeader)
	if err != nil {
		return nil, err
	}

	var products []*entities.Product
	for i, record := range records {
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadForecast loads forecast entries from a CSV file
func (l *Loader) LoadForecast(filename string) ([]*entities.ForecastEntry, error) {
	records, err := readTable(filename, "forecast", forecastHeader)
	if err != nil {
		return nil, err
	}

	var entries []*entities.ForecastEntry
	for i, record := range records {
		date, err := parseDate(record[2])
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: %w", i+2, err)
		}
		qty, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: invalid quantity: %s", i+2, record[3])
		}
		entry, err := entities.NewForecastEntry(entities.NodeID(record[0]), entities.ProductID(record[1]), date, qty)
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LoadLabor loads the labor calendar from a CSV file
func (l *Loader) LoadLabor(filename string) ([]*entities.LaborDay, error) {
	records, err := readTable(filename, "labor", laborHeader)
	if err != nil {
		return nil, err
	}

	var days []*entities.LaborDay
	for i, record := range records {
		day, err := parseLaborDay(record)
		if err != nil {
			return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
		}
		days = append(days, day)
	}
	return days, nil
}

// LoadInventory loads on-hand inventory from a CSV file
func (l *Loader) LoadInventory(filename string) ([]entities.InventoryEntry, error) {
	records, err := readTable(filename, "inventory", inventoryHeader)
	if err != nil {
		return nil, err
	}

	var entries []entities.InventoryEntry
	for i, record := range records {
		state, err := entities.ParseState(record[2])
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		qty, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: invalid quantity: %s", i+2, record[3])
		}
		var cohort time.Time
		if strings.TrimSpace(record[4]) != "" {
			if cohort, err = parseDate(record[4]); err != nil {
				return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
			}
		}
		entry, err := entities.NewInventoryEntry(entities.NodeID(record[0]), entities.ProductID(record[1]), state, qty, cohort)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// LoadInTransit loads shipments already on the road from a CSV file
func (l *Loader) LoadInTransit(filename string) ([]entities.InTransitEntry, error) {
	records, err := readTable(filename, "in_transit", inTransitHeader)
	if err != nil {
		return nil, err
	}

	var entries []entities.InTransitEntry
	for i, record := range records {
		state, err := entities.ParseState(record[2])
		if err != nil {
			return nil, fmt.Errorf("in_transit CSV row %d: %w", i+2, err)
		}
		cohort, err := parseDate(record[3])
		if err != nil {
			return nil, fmt.Errorf("in_transit CSV row %d: %w", i+2, err)
		}
		delivery, err := parseDate(record[4])
		if err != nil {
			return nil, fmt.Errorf("in_transit CSV row %d: %w", i+2, err)
		}
		qty, err := strconv.ParseFloat(record[5], 64)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("in_transit CSV row %d: invalid quantity: %s", i+2, record[5])
		}
		entries = append(entries, entities.InTransitEntry{
			Destination:  entities.NodeID(record[0]),
			Product:      entities.ProductID(record[1]),
			ArrivalState: state,
			CohortDate:   cohort,
			DeliveryDate: delivery,
			Quantity:     qty,
		})
	}
	return entries, nil
}

// LoadTrucks loads truck schedules from a CSV file. Weekdays are separated
// by semicolons, e.g. "mon;wed;fri".
func (l *Loader) LoadTrucks(filename string) ([]*entities.TruckSchedule, error) {
	records, err := readTable(filename, "trucks", trucksHeader)
	if err != nil {
		return nil, err
	}

	var trucks []*entities.TruckSchedule
	for i, record := range records {
		weekdays, err := parseWeekdays(record[3])
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		capacity, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: invalid capacity_units: %s", i+2, record[4])
		}
		pallets, err := parseOptionalInt(record[5])
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: invalid pallet_capacity: %s", i+2, record[5])
		}
		truck, err := entities.NewTruckSchedule(record[0], entities.NodeID(record[1]), entities.NodeID(record[2]), weekdays, capacity, pallets)
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		trucks = append(trucks, truck)
	}
	return trucks, nil
}

// Helper functions for parsing CSV records

// readTable opens a CSV file, checks its header and returns the data rows.
// A missing file surfaces fs.ErrNotExist through the wrapped error.
func readTable(filename, name string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseNode(record []string) (*entities.Node, error) {
	var caps entities.Capabilities
	var err error
	if caps.CanManufacture, err = parseBool(record[2]); err != nil {
		return nil, fmt.Errorf("invalid can_manufacture: %s", record[2])
	}
	if caps.HasDemand, err = parseBool(record[3]); err != nil {
		return nil, fmt.Errorf("invalid has_demand: %s", record[3])
	}
	if caps.CanStore, err = parseBool(record[4]); err != nil {
		return nil, fmt.Errorf("invalid can_store: %s", record[4])
	}
	mode, err := entities.ParseStorageMode(record[5])
	if err != nil {
		return nil, err
	}

	hours := make([]float64, 4)
	names := []string{"production_rate", "startup_hours", "shutdown_hours", "changeover_hours"}
	for j := range hours {
		if hours[j], err = parseOptionalFloat(record[6+j]); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", names[j], record[6+j])
		}
	}

	node, err := entities.NewNode(entities.NodeID(record[0]), caps, mode, hours[0])
	if err != nil {
		return nil, err
	}
	node.Name = record[1]
	node.StartupHours = hours[1]
	node.ShutdownHours = hours[2]
	node.ChangeoverHours = hours[3]
	if node.StartupHours < 0 || node.ShutdownHours < 0 || node.ChangeoverHours < 0 {
		return nil, fmt.Errorf("node %s: overhead hours cannot be negative", node.ID)
	}
	return node, nil
}

func parseProduct(record []string) (*entities.Product, error) {
	days := make([]int, 4)
	names := []string{"ambient_days", "frozen_days", "thawed_days", "min_acceptable_days"}
	for j := range days {
		v, err := parseOptionalInt(record[2+j])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", names[j], record[2+j])
		}
		days[j] = v
	}

	product, err := entities.NewProduct(entities.ProductID(record[0]),
		entities.ShelfLife{Ambient: days[0], Frozen: days[1], Thawed: days[2]}, days[3])
	if err != nil {
		return nil, err
	}
	product.Name = record[1]
	if product.UnitsPerMix, err = parseOptionalFloat(record[6]); err != nil || product.UnitsPerMix < 0 {
		return nil, fmt.Errorf("invalid units_per_mix: %s", record[6])
	}
	if product.UnitsPerPallet, err = parseOptionalFloat(record[7]); err != nil || product.UnitsPerPallet < 0 {
		return nil, fmt.Errorf("invalid units_per_pallet: %s", record[7])
	}
	return product, nil
}

func parseLaborDay(record []string) (*entities.LaborDay, error) {
	date, err := parseDate(record[0])
	if err != nil {
		return nil, err
	}
	fixed, err := parseBool(record[1])
	if err != nil {
		return nil, fmt.Errorf("invalid is_fixed: %s", record[1])
	}

	hours := make([]float64, 2)
	for j, col := range []int{2, 3} {
		if hours[j], err = parseOptionalFloat(record[col]); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", laborHeader[col], record[col])
		}
	}
	rates := make([]decimal.Decimal, 3)
	for j, col := range []int{4, 5, 6} {
		if rates[j], err = parseOptionalDecimal(record[col]); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", laborHeader[col], record[col])
		}
	}
	limits := make([]float64, 2)
	for j, col := range []int{7, 8} {
		if limits[j], err = parseOptionalFloat(record[col]); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", laborHeader[col], record[col])
		}
	}

	if fixed {
		return entities.NewFixedLaborDay(date, hours[0], hours[1], rates[0], rates[1])
	}
	return entities.NewNonFixedLaborDay(date, rates[2], limits[0], limits[1])
}

func parseDate(value string) (time.Time, error) {
	date, err := entities.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", value)
	}
	return date, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}

func parseOptionalFloat(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func parseOptionalInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseOptionalDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	var weekdays []time.Weekday
	for _, part := range strings.Split(value, ";") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}
		day, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %s (expected mon, tue, ...)", part)
		}
		weekdays = append(weekdays, day)
	}
	return weekdays, nil
}
