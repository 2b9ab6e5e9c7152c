package interchange

import (
	"strings"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// column binds one tabular CSV column to a Point field. exact and contains
// are lower-case header fragments used to find the column on import.
type column struct {
	header   string
	exact    []string
	contains []string
	get      func(p survey.Point) string
	set      func(p *survey.Point, v string)
}

// columns is the fixed export order. Import matching walks the same list, so
// a column listed earlier claims an ambiguous header first.
var columns = []column{
	{
		header:   "Point Name",
		exact:    []string{"name", "point", "pt"},
		contains: []string{"point name", "name"},
		get:      func(p survey.Point) string { return p.Name },
		set:      func(p *survey.Point, v string) { p.Name = v },
	},
	{
		header:   "Code",
		contains: []string{"code"},
		get:      func(p survey.Point) string { return p.Code },
		set:      func(p *survey.Point, v string) { p.Code = v },
	},
	{
		header:   "Northing",
		exact:    []string{"n", "y"},
		contains: []string{"northing", "north"},
		get:      func(p survey.Point) string { return formatNum(p.Northing) },
		set:      func(p *survey.Point, v string) { p.Northing = parseNum(v) },
	},
	{
		header:   "Easting",
		exact:    []string{"e", "x"},
		contains: []string{"easting", "east"},
		get:      func(p survey.Point) string { return formatNum(p.Easting) },
		set:      func(p *survey.Point, v string) { p.Easting = parseNum(v) },
	},
	{
		header:   "Elevation",
		exact:    []string{"z", "height", "elev"},
		contains: []string{"elevation", "elev"},
		get:      func(p survey.Point) string { return formatNum(p.Elevation) },
		set:      func(p *survey.Point, v string) { p.Elevation = parseNum(v) },
	},
	{
		header:   "Description",
		exact:    []string{"desc"},
		contains: []string{"description", "desc"},
		get:      func(p survey.Point) string { return p.Description },
		set:      func(p *survey.Point, v string) { p.Description = v },
	},
	{
		header:   "Data Type",
		contains: []string{"data type", "type"},
		get:      func(p survey.Point) string { return string(p.DataType) },
		set:      func(p *survey.Point, v string) { p.DataType = survey.ParseDataType(v) },
	},
	{
		header:   "Accuracy",
		contains: []string{"accuracy"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.Accuracy) },
		set:      func(p *survey.Point, v string) { p.Quality.Accuracy = parseNum(v) },
	},
	{
		header:   "RTK Status",
		contains: []string{"rtk", "fix"},
		get:      func(p survey.Point) string { return string(p.Quality.RTKStatus) },
		set: func(p *survey.Point, v string) {
			v = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "rtk")
			p.Quality.RTKStatus = survey.ParseRTKStatus(v)
		},
	},
	{
		header:   "PDOP",
		contains: []string{"pdop"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.PDOP) },
		set:      func(p *survey.Point, v string) { p.Quality.PDOP = parseNum(v) },
	},
	{
		header:   "HDOP",
		contains: []string{"hdop"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.HDOP) },
		set:      func(p *survey.Point, v string) { p.Quality.HDOP = parseNum(v) },
	},
	{
		header:   "VDOP",
		contains: []string{"vdop"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.VDOP) },
		set:      func(p *survey.Point, v string) { p.Quality.VDOP = parseNum(v) },
	},
	{
		header:   "Satellites",
		contains: []string{"satellite", "sats"},
		get:      func(p survey.Point) string { return formatInt(p.Quality.Satellites) },
		set:      func(p *survey.Point, v string) { p.Quality.Satellites = parseInt(v) },
	},
	{
		header:   "Horizontal Angle",
		contains: []string{"horizontal angle", "horizontal", "hz angle"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.HorizontalAngle) },
		set:      func(p *survey.Point, v string) { p.Quality.HorizontalAngle = parseNum(v) },
	},
	{
		header:   "Vertical Angle",
		contains: []string{"vertical angle", "vertical", "zenith"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.VerticalAngle) },
		set:      func(p *survey.Point, v string) { p.Quality.VerticalAngle = parseNum(v) },
	},
	{
		header:   "Slope Distance",
		contains: []string{"slope"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.SlopeDistance) },
		set:      func(p *survey.Point, v string) { p.Quality.SlopeDistance = parseNum(v) },
	},
	{
		header:   "Antenna Height",
		contains: []string{"antenna", "prism", "instrument height", "rod height"},
		get:      func(p survey.Point) string { return formatNum(p.Quality.AntennaHeight) },
		set:      func(p *survey.Point, v string) { p.Quality.AntennaHeight = parseNum(v) },
	},
	{
		header:   "Base Station",
		contains: []string{"base"},
		get:      func(p survey.Point) string { return p.Quality.BaseStation },
		set:      func(p *survey.Point, v string) { p.Quality.BaseStation = v },
	},
	{
		header:   "Geoid Model",
		contains: []string{"geoid"},
		get:      func(p survey.Point) string { return p.Quality.GeoidModel },
		set:      func(p *survey.Point, v string) { p.Quality.GeoidModel = v },
	},
	{
		header:   "Coordinate System",
		exact:    []string{"crs"},
		contains: []string{"coordinate system", "datum", "projection"},
		get:      func(p survey.Point) string { return p.Quality.CoordinateSystem },
		set:      func(p *survey.Point, v string) { p.Quality.CoordinateSystem = v },
	},
	{
		header:   "Notes",
		contains: []string{"note"},
		get:      func(p survey.Point) string { return p.Quality.Notes },
		set:      func(p *survey.Point, v string) { p.Quality.Notes = v },
	},
	{
		header:   "Collected By",
		contains: []string{"collected by", "collector", "surveyor", "operator", "crew"},
		get:      func(p survey.Point) string { return p.CollectedBy },
		set:      func(p *survey.Point, v string) { p.CollectedBy = v },
	},
	{
		header:   "Collected At",
		contains: []string{"collected at", "timestamp", "time", "date"},
		get: func(p survey.Point) string {
			if p.CollectedAt.IsZero() {
				return ""
			}
			return p.CollectedAt.Format(time.RFC3339Nano)
		},
		set: func(p *survey.Point, v string) {
			if t, ok := parseTime(v); ok {
				p.CollectedAt = t
			}
		},
	},
	{
		header:   "Instrument",
		contains: []string{"instrument", "device"},
		get:      func(p survey.Point) string { return p.Instrument },
		set:      func(p *survey.Point, v string) { p.Instrument = v },
	},
	{
		header: "ID",
		exact:  []string{"id", "point id", "uuid"},
		get:    func(p survey.Point) string { return p.ID },
		set:    func(p *survey.Point, v string) { p.ID = v },
	},
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveColumns maps each known column to a header index, or -1. Exact
// header names win first; then substring fragments claim whatever is left,
// so reordered or partial headers still resolve.
func resolveColumns(header []string) []int {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	idx := make([]int, len(columns))
	claimed := make([]bool, len(header))
	for c := range columns {
		idx[c] = -1
	}

	for c, col := range columns {
		names := append([]string{strings.ToLower(col.header)}, col.exact...)
		for i, h := range norm {
			if !claimed[i] && containsString(names, h) {
				idx[c], claimed[i] = i, true
				break
			}
		}
	}
	for c, col := range columns {
		if idx[c] >= 0 {
			continue
		}
	search:
		for _, frag := range col.contains {
			for i, h := range norm {
				if !claimed[i] && strings.Contains(h, frag) {
					idx[c], claimed[i] = i, true
					break search
				}
			}
		}
	}
	return idx
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
