package main

import (
	"flag"
	"log"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	var (
		out  string
		size int
		rng  int64
	)
	flag.StringVar(&out, "out", "", "Path of the catalog CSV to write (stdout when empty)")
	flag.IntVar(&size, "size", cfg.CatalogSize, "Number of products to generate")
	flag.Int64Var(&rng, "seed", cfg.CatalogSeed, "Random seed")
	flag.Parse()

	logger := log.New(os.Stderr, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	products := seed.Generate(size, rng, time.Now())

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			logger.Fatalf("create %s: %v", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := importer.Export(w, products); err != nil {
		logger.Fatalf("write catalog: %v", err)
	}

	logger.Printf("wrote %d products", len(products))
}
