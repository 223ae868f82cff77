// Copyright (c) 2025 BVK Chaitanya

// Package taqfile decodes compressed pipe-delimited exchange dump files
// into (time, ticker, volume, price) rows and exports them as CSV. It
// is a standalone utility and is not part of the streaming path.
package taqfile

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// field positions within a pipe-delimited dump line.
const (
	timeField   = 0
	tickerField = 2
	volumeField = 4
	priceField  = 5
)

// numFields is the minimum field count for a decodable line. Lines with
// fewer fields are malformed and skipped.
const numFields = 6

// Row is one decoded dump line. Volume and price are kept verbatim; the
// export does not reinterpret them.
type Row struct {
	Time   int64
	Ticker string
	Volume string
	Price  string
}

// Decode reads pipe-delimited lines and extracts the four quote fields
// from each. Malformed lines are skipped, never fatal.
func Decode(r io.Reader) ([]Row, error) {
	var rows []Row
	nskipped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "|")
		if len(fields) < numFields {
			nskipped++
			continue
		}
		t, err := strconv.ParseInt(strings.TrimSpace(fields[timeField]), 10, 64)
		if err != nil {
			nskipped++
			continue
		}
		rows = append(rows, Row{
			Time:   t,
			Ticker: fields[tickerField],
			Volume: fields[volumeField],
			Price:  fields[priceField],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not scan dump lines: %w", err)
	}

	if nskipped > 0 {
		slog.Warn("skipped malformed dump lines", "count", nskipped)
	}
	return rows, nil
}

// DecodeArchive decodes one gzip-compressed dump file.
func DecodeArchive(name string) ([]Row, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open archive %q: %w", name, err)
	}
	defer fp.Close()

	gz, err := gzip.NewReader(fp)
	if err != nil {
		return nil, fmt.Errorf("could not read archive %q as gzip: %w", name, err)
	}
	defer gz.Close()

	rows, err := Decode(gz)
	if err != nil {
		return nil, fmt.Errorf("could not decode archive %q: %w", name, err)
	}
	return rows, nil
}

// DecodeDir decodes every file in the given directory in lexical order
// and returns all rows in decode order.
func DecodeDir(dir string) ([]Row, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read dump directory %q: %w", dir, err)
	}

	var rows []Row
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		vs, err := DecodeArchive(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		rows = append(rows, vs...)
	}
	return rows, nil
}

// Prepare drops the final two rows, which are the dump format's trailer
// records, and sorts the rest ascending by time.
func Prepare(rows []Row) []Row {
	if len(rows) <= 2 {
		return nil
	}
	rows = rows[:len(rows)-2]
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time < rows[j].Time
	})
	return rows
}

// WriteCSV writes rows as CSV with no header, one row per quote.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.Time, 10),
			row.Ticker,
			row.Volume,
			row.Price,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("could not write csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("could not flush csv records: %w", err)
	}
	return nil
}
