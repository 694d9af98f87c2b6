package main

import (
	"flag"
	"log"

	"datalens/internal/testkit"
)

// seed writes a deterministic sales CSV for local development and demos
func main() {
	var (
		out  = flag.String("out", "data/samples/sales.csv", "output CSV path")
		rows = flag.Int("rows", 500, "number of base rows to generate")
		seed = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	cfg := testkit.DefaultSalesConfig()
	cfg.RowCount = *rows
	cfg.Seed = *seed

	gen := testkit.NewSalesDataGenerator(cfg)
	if err := gen.WriteCSV(*out); err != nil {
		log.Fatalf("Failed to write sample data: %v", err)
	}

	log.Printf("Wrote %d rows (plus duplicates) to %s", *rows, *out)
}
