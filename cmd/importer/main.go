package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"storefront/internal/importer"
)

// importer checks a catalog CSV before it is used as CATALOG_FILE.
func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to the catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	start := time.Now()
	products, err := importer.LoadFile(context.Background(), filePath)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	byCategory := map[string]int{}
	for _, p := range products {
		byCategory[p.Category]++
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Printf("Parsed %d products from %s in %s\n", len(products), filePath, time.Since(start).Truncate(time.Millisecond))
	for _, c := range categories {
		fmt.Printf("  %-20s %d\n", c, byCategory[c])
	}
}
