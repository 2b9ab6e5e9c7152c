package interchange

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// encodeCSV writes every point, mappable or not, with one cell per column.
// encoding/csv quotes cells containing commas, quotes or line breaks and
// doubles embedded quotes.
func encodeCSV(points []survey.Point) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, p := range points {
		for i, c := range columns {
			row[i] = c.get(p)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeCSV parses a headed CSV. Columns are found by name, not position.
func decodeCSV(data []byte, opts ImportOptions) ([]survey.Point, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []survey.Point{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading csv header: %w", err)
	}
	idx := resolveColumns(header)

	points := []survey.Point{}
	dropped := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("reading csv row: %w", err)
		}
		if blankRecord(record) {
			continue
		}

		p := survey.Point{DataType: survey.TypePoint}
		for c, i := range idx {
			if i < 0 || i >= len(record) {
				continue
			}
			columns[c].set(&p, record[i])
		}
		if !p.Mappable() {
			dropped++
			continue
		}
		points = append(points, opts.complete(p))
	}
	return points, dropped, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
