package interchange

import (
	"math"
	"strconv"
	"strings"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const (
	dxfTextHeight = 1.0
	dxfTextOffset = 0.5
)

type dxfWriter struct {
	b strings.Builder
}

func (w *dxfWriter) pair(code int, value string) {
	w.b.WriteString(strconv.Itoa(code))
	w.b.WriteByte('\n')
	w.b.WriteString(singleLine(value))
	w.b.WriteByte('\n')
}

func (w *dxfWriter) num(code int, v float64) {
	w.pair(code, strconv.FormatFloat(v, 'f', 4, 64))
}

func (w *dxfWriter) xyz(e, n, z float64) {
	w.num(10, e)
	w.num(20, n)
	w.num(30, z)
}

// encodeDXF writes an R12 ASCII drawing: HEADER, a LAYER table with one
// layer per distinct code (or data type when a point has no code), and a
// POINT plus optional TEXT label per mappable point.
func encodeDXF(points []survey.Point) []byte {
	mappable := survey.Mappable(points)

	var layers []string
	seen := map[string]bool{}
	for _, p := range mappable {
		if l := dxfLayer(p); !seen[l] {
			seen[l] = true
			layers = append(layers, l)
		}
	}

	w := &dxfWriter{}

	w.pair(0, "SECTION")
	w.pair(2, "HEADER")
	w.pair(9, "$ACADVER")
	w.pair(1, "AC1009")
	if len(mappable) > 0 {
		minE, minN, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
		maxE, maxN, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
		for _, p := range mappable {
			z := elevationOrZero(p)
			minE, maxE = math.Min(minE, *p.Easting), math.Max(maxE, *p.Easting)
			minN, maxN = math.Min(minN, *p.Northing), math.Max(maxN, *p.Northing)
			minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
		}
		w.pair(9, "$EXTMIN")
		w.xyz(minE, minN, minZ)
		w.pair(9, "$EXTMAX")
		w.xyz(maxE, maxN, maxZ)
	}
	w.pair(0, "ENDSEC")

	w.pair(0, "SECTION")
	w.pair(2, "TABLES")
	w.pair(0, "TABLE")
	w.pair(2, "LAYER")
	w.pair(70, strconv.Itoa(len(layers)))
	for i, name := range layers {
		w.pair(0, "LAYER")
		w.pair(2, name)
		w.pair(70, "0")
		w.pair(62, strconv.Itoa(dxfColor(i)))
		w.pair(6, "CONTINUOUS")
	}
	w.pair(0, "ENDTAB")
	w.pair(0, "ENDSEC")

	w.pair(0, "SECTION")
	w.pair(2, "ENTITIES")
	for _, p := range mappable {
		layer := dxfLayer(p)
		e, n, z := *p.Easting, *p.Northing, elevationOrZero(p)

		w.pair(0, "POINT")
		w.pair(8, layer)
		w.xyz(e, n, z)

		if p.Name != "" {
			w.pair(0, "TEXT")
			w.pair(8, layer)
			w.xyz(e+dxfTextOffset, n+dxfTextOffset, z)
			w.num(40, dxfTextHeight)
			w.pair(1, p.Name)
		}
	}
	w.pair(0, "ENDSEC")
	w.pair(0, "EOF")

	return []byte(w.b.String())
}

// dxfColor cycles through ACI colors 1..255, skipping 0 (BYBLOCK).
func dxfColor(i int) int {
	return i%255 + 1
}

// dxfLayer derives a layer name from the point code, falling back to the
// data type. Characters AutoCAD rejects in layer names become underscores.
func dxfLayer(p survey.Point) string {
	name := strings.TrimSpace(p.Code)
	if name == "" {
		name = string(p.DataType)
	}
	if name == "" {
		name = string(survey.TypePoint)
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>/\":;?*|=,`+"`", r) || r < ' ' {
			return '_'
		}
		return r
	}, strings.ToUpper(name))
}

func elevationOrZero(p survey.Point) float64 {
	if p.Elevation == nil {
		return 0
	}
	return *p.Elevation
}
