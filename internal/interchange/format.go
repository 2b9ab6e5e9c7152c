// Package interchange converts point collections to and from survey file
// formats: full tabular CSV, PNEZD coordinate lists, DXF drawings and KML
// placemarks. Encoding and decoding are pure functions over byte slices.
package interchange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/landmark-survey/fieldview/internal/survey"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatPNEZD Format = "pnezd"
	FormatDXF   Format = "dxf"
	FormatKML   Format = "kml"
	// FormatAuto is an import hint only.
	FormatAuto Format = "auto"
)

var ErrUnknownFormat = errors.New("unknown format")

var formatAliases = map[string]Format{
	"csv":       FormatCSV,
	"tabular":   FormatCSV,
	"pnezd":     FormatPNEZD,
	"minimal":   FormatPNEZD,
	"txt":       FormatPNEZD,
	"dxf":       FormatDXF,
	"cad":       FormatDXF,
	"kml":       FormatKML,
	"placemark": FormatKML,
	"auto":      FormatAuto,
	"":          FormatAuto,
}

// ParseFormat resolves a format name or common alias.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ExportFormats lists the formats Export accepts.
func ExportFormats() []Format {
	return []Format{FormatCSV, FormatPNEZD, FormatDXF, FormatKML}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatDXF:
		return "image/vnd.dxf"
	case FormatKML:
		return "application/vnd.google-earth.kml+xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (f Format) Extension() string {
	switch f {
	case FormatPNEZD:
		return ".txt"
	case FormatAuto:
		return ""
	default:
		return "." + string(f)
	}
}

// Options tunes export output.
type Options struct {
	// DocumentName titles KML documents. Defaults to "Survey Points".
	DocumentName string
}

// Export serializes points in the given format. Only an unsupported format
// is an error.
func Export(points []survey.Point, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatCSV:
		return encodeCSV(points)
	case FormatPNEZD:
		return encodePNEZD(points), nil
	case FormatDXF:
		return encodeDXF(points), nil
	case FormatKML:
		return encodeKML(points, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// formatNum renders a numeric field at the 4-decimal interchange precision;
// absent values render empty.
func formatNum(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

// singleLine replaces control characters, line breaks included, with spaces
// so a free-text value occupies exactly one line of a line-based format.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// parseNum returns nil for blank or unparseable input.
func parseNum(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v || v > 1e300 || v < -1e300 {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	v := parseNum(s)
	if v == nil || *v != float64(int(*v)) {
		return nil
	}
	return survey.Int(int(*v))
}
