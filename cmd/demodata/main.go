// Command demodata regenerates the bundled demo CSV. The generator is
// seeded, so the output is identical on every run.
package main

import (
	"flag"
	"log"

	"amaa/internal/testkit"
)

func main() {
	out := flag.String("out", "amaa_demo_data.csv", "output CSV path")
	seed := flag.Int64("seed", testkit.DefaultDemoConfig().Seed, "generator seed")
	flag.Parse()

	cfg := testkit.DefaultDemoConfig()
	cfg.Seed = *seed

	table := testkit.GenerateDemoTable(cfg)
	if err := testkit.WriteCSV(table, *out); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}
	log.Printf("wrote %s (%d rows, %d columns)", *out, len(table.Rows), len(table.Columns)+1)
}
