package interchange

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// headerTokens mark the first line of a tabular file.
var headerTokens = []string{"point name", "northing", "easting"}

// ImportOptions fills in what a file cannot carry.
type ImportOptions struct {
	// Now stamps rows with no readable timestamp. Defaults to time.Now.
	Now time.Time
	// NewID assigns ids to rows without one. Defaults to uuid.NewString.
	NewID func() string
}

func (o ImportOptions) complete(p survey.Point) survey.Point {
	if p.ID == "" {
		if o.NewID != nil {
			p.ID = o.NewID()
		} else {
			p.ID = uuid.NewString()
		}
	}
	if p.CollectedAt.IsZero() {
		if o.Now.IsZero() {
			p.CollectedAt = time.Now().UTC()
		} else {
			p.CollectedAt = o.Now
		}
	}
	if !p.DataType.Valid() {
		p.DataType = survey.TypePoint
	}
	return p
}

// Result is the outcome of one import.
type Result struct {
	Points []survey.Point `json:"points"`
	// Format is the parser actually used, after auto-detection.
	Format Format `json:"format"`
	// Dropped counts rows without both northing and easting.
	Dropped int `json:"dropped"`
}

// Import parses data as the hinted format. Hints other than csv and pnezd
// fall back to detection from the first non-blank line. Empty input yields
// an empty result.
func Import(data []byte, hint Format, opts ImportOptions) (Result, error) {
	f := hint
	if f != FormatCSV && f != FormatPNEZD {
		f = Detect(data)
	}

	switch f {
	case FormatCSV:
		points, dropped, err := decodeCSV(data, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Points: points, Format: f, Dropped: dropped}, nil
	default:
		points, dropped := decodePNEZD(data, opts)
		return Result{Points: points, Format: FormatPNEZD, Dropped: dropped}, nil
	}
}

// Detect picks csv when the first non-blank line looks like a header and
// pnezd otherwise.
func Detect(data []byte) Format {
	for _, line := range splitLines(data) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isHeader(strings.Split(line, ",")) {
			return FormatCSV
		}
		return FormatPNEZD
	}
	return FormatPNEZD
}

// isHeader reports whether a row names columns: some cell carries a header
// token and no cell is a number. A data row such as
// "1,5000,2000,100,northing offset" mentions a token but has numeric cells.
func isHeader(cells []string) bool {
	named := false
	for _, c := range cells {
		c = strings.ToLower(strings.Trim(strings.TrimSpace(c), `"`))
		if parseNum(c) != nil {
			return false
		}
		for _, tok := range headerTokens {
			if strings.Contains(c, tok) {
				named = true
			}
		}
	}
	return named
}
