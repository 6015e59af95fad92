package currency

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/remitquote/pkg/currency"
)

//go:embed meta.csv
var metaCSV string

const expectedColumns = 6

// LoadCurrencyMetaCSV loads currency metadata from a CSV file or embedded content.
// If path is empty, it uses the embedded CSV content. Inactive rows are skipped.
func LoadCurrencyMetaCSV(path string) ([]currency.Currency, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	} else {
		r = strings.NewReader(metaCSV)
	}

	return parseCurrencyMetaCSV(r)
}

// LoadRegistry builds a currency registry from the CSV at path (or the embedded data).
func LoadRegistry(path string) (*currency.Registry, error) {
	currencies, err := LoadCurrencyMetaCSV(path)
	if err != nil {
		return nil, err
	}
	return currency.NewRegistry(currencies...)
}

func parseCurrencyMetaCSV(r io.Reader) ([]currency.Currency, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("invalid CSV format: empty file")
	}
	if len(records[0]) < expectedColumns {
		return nil, fmt.Errorf(
			"invalid CSV format: expected at least %d columns, got %d",
			expectedColumns,
			len(records[0]),
		)
	}

	var out []currency.Currency
	for i, rec := range records[1:] {
		// Skip malformed rows
		if len(rec) < expectedColumns {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(rec[5]), "true") {
			continue
		}
		decimals, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid decimals %q: %w", i+2, rec[4], err)
		}
		out = append(out, currency.Currency{
			Code:     strings.TrimSpace(rec[0]),
			Name:     strings.TrimSpace(rec[1]),
			Symbol:   strings.TrimSpace(rec[2]),
			Flag:     strings.TrimSpace(rec[3]),
			Decimals: decimals,
		})
	}
	return out, nil
}
