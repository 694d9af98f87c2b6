package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// SalesGeneratorConfig configures the synthetic sales data generator
type SalesGeneratorConfig struct {
	RowCount      int       `json:"row_count"`
	Regions       []string  `json:"regions"`
	Categories    []string  `json:"categories"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	MissingRate   float64   `json:"missing_rate"`
	DuplicateRate float64   `json:"duplicate_rate"`
	Seed          int64     `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for sales data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		RowCount:      500,
		Regions:       []string{"North", "South", "East", "West"},
		Categories:    []string{"Electronics", "Clothing", "Home", "Sports", "Books"},
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		MissingRate:   0.02,
		DuplicateRate: 0.01,
		Seed:          42,
	}
}

// SalesDataGenerator produces deterministic tabular sales data for tests.
// Region and category distributions are intentionally skewed so that
// group-by results have a stable, non-uniform ordering.
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Headers returns the column names of generated data
func (g *SalesDataGenerator) Headers() []string {
	return []string{"order_id", "date", "region", "category", "units", "unit_price", "revenue", "returned"}
}

// Generate produces the configured number of base rows, plus injected
// duplicates, with missing values sprinkled per MissingRate.
func (g *SalesDataGenerator) Generate() [][]string {
	rows := make([][]string, 0, g.config.RowCount)

	for i := 0; i < g.config.RowCount; i++ {
		rows = append(rows, g.generateRow(i+1))
	}

	// Sprinkle missing values, never on the order_id key column
	for _, row := range rows {
		for col := 1; col < len(row); col++ {
			if g.rng.Float64() < g.config.MissingRate {
				row[col] = ""
			}
		}
	}

	// Inject exact duplicates of existing rows, after missing-value
	// injection so each duplicate stays identical to its source
	dupCount := int(math.Round(float64(g.config.RowCount) * g.config.DuplicateRate))
	for i := 0; i < dupCount && len(rows) > 0; i++ {
		src := rows[g.rng.Intn(len(rows))]
		dup := make([]string, len(src))
		copy(dup, src)
		rows = append(rows, dup)
	}

	return rows
}

func (g *SalesDataGenerator) generateRow(ordinal int) []string {
	date := g.randomDate()
	region := g.weightedChoice(g.config.Regions)
	category := g.weightedChoice(g.config.Categories)

	units := 1 + g.rng.Intn(10)
	unitPrice := 5.0 + g.rng.Float64()*195.0
	revenue := float64(units) * unitPrice

	returned := "false"
	if g.rng.Float64() < 0.08 {
		returned = "true"
	}

	return []string{
		fmt.Sprintf("ORD-%05d", ordinal),
		date.Format("2006-01-02"),
		region,
		category,
		fmt.Sprintf("%d", units),
		fmt.Sprintf("%.2f", unitPrice),
		fmt.Sprintf("%.2f", revenue),
		returned,
	}
}

func (g *SalesDataGenerator) randomDate() time.Time {
	span := g.config.EndDate.Sub(g.config.StartDate)
	offset := time.Duration(g.rng.Int63n(int64(span)))
	return g.config.StartDate.Add(offset)
}

// weightedChoice picks earlier entries more often, giving groups a
// predictable size ordering.
func (g *SalesDataGenerator) weightedChoice(options []string) string {
	total := 0
	for i := range options {
		total += len(options) - i
	}
	pick := g.rng.Intn(total)
	for i := range options {
		weight := len(options) - i
		if pick < weight {
			return options[i]
		}
		pick -= weight
	}
	return options[len(options)-1]
}

// WriteCSV writes generated data to a CSV file, creating parent dirs
func (g *SalesDataGenerator) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(g.Headers()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range g.Generate() {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
