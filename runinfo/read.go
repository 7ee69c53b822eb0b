package runinfo

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"

	"github.com/willtownes/patel2014gliohuman/fileio"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Read parses a comma or tab delimited run info table with a header line.
func Read(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// Spreadsheet exports often start with a UTF-8 byte order mark
	data = bytes.TrimPrefix(data, utf8BOM)

	comma := fileio.DetermineDelimiterFrom(data, ',', '\t')

	if err := checkHeader(data, comma); err != nil {
		return nil, pfx.Err(err)
	}

	rows := []Row{}
	if err := gocsv.UnmarshalCSV(newCSVReader(data, comma), &rows); err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}

// ReadFile opens a local or gs:// run info table, decompressing it if needed,
// and aggregates its rows into samples. client may be nil when path is
// local.
func ReadFile(ctx context.Context, path string, client *storage.Client) (Samples, error) {
	f, err := fileio.MaybeOpenFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	fd, err := fileio.MaybeDecompressReadCloser(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("CompressionDetectionErr: %w", err))
	}
	defer fd.Close()

	rows, err := Read(fd)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	log.Printf("Read %d runs from %s\n", len(rows), path)

	// Aggregation errors keep their type so callers can inspect them
	samples, err := Aggregate(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return samples, nil
}

func newCSVReader(data []byte, comma rune) *csv.Reader {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	return cr
}

func checkHeader(data []byte, comma rune) error {
	head, err := newCSVReader(data, comma).Read()
	if err == io.EOF {
		return fmt.Errorf("run info table is empty")
	} else if err != nil {
		return fmt.Errorf("Header parsing error: %w", err)
	}

	header := make(map[string]int)
	for i, name := range head {
		header[name] = i
	}

	for _, col := range RequiredColumns {
		if _, exists := header[col]; !exists {
			return fmt.Errorf("run info table is missing the %s column", col)
		}
	}

	return nil
}
