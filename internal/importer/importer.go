package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Columns is the catalog CSV header, in write order.
var Columns = []string{
	"id", "name", "description", "price", "category", "brand", "stock", "rating",
	"tags", "createdAt", "costPrice", "supplier", "internalNotes", "adminOnly",
}

const tagSeparator = ";"

// CSVImporter reads a catalog CSV file into products.
type CSVImporter struct {
	reader *csv.Reader
}

func NewCSVImporter(r io.Reader) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may omit trailing optional columns
	return &CSVImporter{reader: csvr}
}

// Run parses every row. Blank rows are skipped; a row with a bad id, price or
// duplicate id aborts the import with the line number.
func (i *CSVImporter) Run(ctx context.Context) ([]domain.Product, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"id", "name", "price"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var (
		products = []domain.Product{}
		seen     = map[string]struct{}{}
		line     = 1
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate id %s", line, p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

// LoadFile imports the catalog stored at path.
func LoadFile(ctx context.Context, path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return NewCSVImporter(f).Run(ctx)
}

// Export writes products in the format Run reads.
func Export(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			p.ID,
			p.Name,
			p.Description,
			p.Price.String(),
			p.Category,
			p.Brand,
			strconv.Itoa(p.Stock),
			strconv.FormatFloat(p.Rating, 'f', -1, 64),
			strings.Join(p.Tags, tagSeparator),
			p.CreatedAt.UTC().Format(time.RFC3339Nano),
			p.CostPrice.String(),
			p.Supplier,
			p.InternalNotes,
			strconv.FormatBool(p.AdminOnly),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:            pick(record, index, "id"),
		Name:          pick(record, index, "name"),
		Description:   pick(record, index, "description"),
		Category:      pick(record, index, "category"),
		Brand:         pick(record, index, "brand"),
		Supplier:      pick(record, index, "supplier"),
		InternalNotes: pick(record, index, "internalNotes"),
		Tags:          []string{},
	}
	if !domain.ValidIdentifier(p.ID) {
		return p, fmt.Errorf("invalid id %q", p.ID)
	}
	if p.Name == "" {
		return p, fmt.Errorf("product %s: name required", p.ID)
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || !price.IsPositive() {
		return p, fmt.Errorf("product %s: invalid price %q", p.ID, pick(record, index, "price"))
	}
	p.Price = price

	if v := pick(record, index, "costPrice"); v != "" {
		if p.CostPrice, err = decimal.NewFromString(v); err != nil {
			return p, fmt.Errorf("product %s: invalid costPrice %q", p.ID, v)
		}
	}
	if v := pick(record, index, "stock"); v != "" {
		if p.Stock, err = strconv.Atoi(v); err != nil || p.Stock < 0 {
			return p, fmt.Errorf("product %s: invalid stock %q", p.ID, v)
		}
	}
	if v := pick(record, index, "rating"); v != "" {
		if p.Rating, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("product %s: invalid rating %q", p.ID, v)
		}
	}
	if v := pick(record, index, "createdAt"); v != "" {
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return p, fmt.Errorf("product %s: invalid createdAt %q", p.ID, v)
		}
		p.CreatedAt = p.CreatedAt.UTC()
	}
	if v := pick(record, index, "adminOnly"); v != "" {
		if p.AdminOnly, err = strconv.ParseBool(v); err != nil {
			return p, fmt.Errorf("product %s: invalid adminOnly %q", p.ID, v)
		}
	}
	for _, tag := range strings.Split(pick(record, index, "tags"), tagSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			p.Tags = append(p.Tags, tag)
		}
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
