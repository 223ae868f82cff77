// Copyright (c) 2025 BVK Chaitanya

package taqfile

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDump = `1681990876|X|AAPL|B|100|165.21
1681990870|X|MSFT|B|50|330.10
bad line
1681990880|X|GOOG|B|25|123.45
END|OF|FILE|TRAILER|0|0
9999999999|X|SUMMARY|B|0|0
`

func TestDecode(t *testing.T) {
	rows, err := Decode(strings.NewReader(testDump))
	if err != nil {
		t.Fatal(err)
	}
	// The bad line and the non-numeric trailer are skipped.
	if len(rows) != 4 {
		t.Fatalf("wanted 4 rows, got %d", len(rows))
	}
	want := Row{Time: 1681990876, Ticker: "AAPL", Volume: "100", Price: "165.21"}
	if rows[0] != want {
		t.Fatalf("wanted %+v, got %+v", want, rows[0])
	}
}

func TestPrepare(t *testing.T) {
	rows, err := Decode(strings.NewReader(testDump))
	if err != nil {
		t.Fatal(err)
	}

	// The final two rows are trailer records and must be dropped; the
	// rest come out sorted by time.
	rows = Prepare(rows)
	if len(rows) != 2 {
		t.Fatalf("wanted 2 rows, got %d", len(rows))
	}
	if rows[0].Ticker != "MSFT" || rows[1].Ticker != "AAPL" {
		t.Fatalf("rows are not sorted by time: %+v", rows)
	}
}

func TestPrepareShortInput(t *testing.T) {
	rows := []Row{{Time: 1}, {Time: 2}}
	if v := Prepare(rows); v != nil {
		t.Fatalf("wanted nil for trailer-only input, got %+v", v)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{Time: 1, Ticker: "AAPL", Volume: "100", Price: "165.21"},
		{Time: 2, Ticker: "MSFT", Volume: "50", Price: "330.10"},
	}
	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatal(err)
	}
	want := "1,AAPL,100,165.21\n2,MSFT,50,330.10\n"
	if sb.String() != want {
		t.Fatalf("wanted %q, got %q", want, sb.String())
	}
}

func TestDecodeArchive(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "taq.gz")

	fp, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(fp)
	if _, err := gw.Write([]byte(testDump)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fp.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := DecodeArchive(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("wanted 4 rows, got %d", len(rows))
	}

	// A directory of archives decodes the same rows.
	rows, err = DecodeDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("wanted 4 rows, got %d", len(rows))
	}
}
