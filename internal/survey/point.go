// Package survey defines the field point model and the pure, snapshot-based
// operations over it: temporal ordering, session segmentation, timeline
// aggregation, live merging and demo data. Nothing here performs I/O.
package survey

import (
	"strings"
	"time"
)

type DataType string

const (
	TypePoint        DataType = "point"
	TypeObservation  DataType = "observation"
	TypeMeasurement  DataType = "measurement"
	TypeGPSPosition  DataType = "gps_position"
	TypeTotalStation DataType = "total_station"
	TypePhoto        DataType = "photo"
	TypeNote         DataType = "note"
)

var dataTypes = map[DataType]struct {
	label string
	color string
}{
	TypePoint:        {"Point", "#2563eb"},
	TypeObservation:  {"Observation", "#7c3aed"},
	TypeMeasurement:  {"Measurement", "#0891b2"},
	TypeGPSPosition:  {"GPS Position", "#16a34a"},
	TypeTotalStation: {"Total Station", "#ea580c"},
	TypePhoto:        {"Photo", "#db2777"},
	TypeNote:         {"Note", "#64748b"},
}

// DataTypes lists the closed set of data types in display order.
func DataTypes() []DataType {
	return []DataType{
		TypePoint, TypeObservation, TypeMeasurement, TypeGPSPosition,
		TypeTotalStation, TypePhoto, TypeNote,
	}
}

func (t DataType) Valid() bool {
	_, ok := dataTypes[t]
	return ok
}

func (t DataType) Label() string {
	if d, ok := dataTypes[t]; ok {
		return d.label
	}
	return "Point"
}

func (t DataType) Color() string {
	if d, ok := dataTypes[t]; ok {
		return d.color
	}
	return dataTypes[TypePoint].color
}

// ParseDataType maps free text to a DataType, defaulting to TypePoint.
func ParseDataType(s string) DataType {
	t := DataType(normalizeToken(s))
	if t.Valid() {
		return t
	}
	return TypePoint
}

// RTKStatus is the GNSS solution quality. The empty value means unknown.
type RTKStatus string

const (
	RTKFixed      RTKStatus = "fixed"
	RTKFloat      RTKStatus = "float"
	RTKDGPS       RTKStatus = "dgps"
	RTKAutonomous RTKStatus = "autonomous"
	RTKSBAS       RTKStatus = "sbas"
)

func (s RTKStatus) Valid() bool {
	switch s {
	case RTKFixed, RTKFloat, RTKDGPS, RTKAutonomous, RTKSBAS:
		return true
	}
	return false
}

// ParseRTKStatus returns the empty status for anything outside the closed set.
func ParseRTKStatus(s string) RTKStatus {
	st := RTKStatus(normalizeToken(s))
	if st.Valid() {
		return st
	}
	return ""
}

// Quality carries optional instrument metadata. Nil pointers and empty
// strings are absent values.
type Quality struct {
	Accuracy         *float64  `json:"accuracy,omitempty"`
	RTKStatus        RTKStatus `json:"rtkStatus,omitempty"`
	PDOP             *float64  `json:"pdop,omitempty"`
	HDOP             *float64  `json:"hdop,omitempty"`
	VDOP             *float64  `json:"vdop,omitempty"`
	Satellites       *int      `json:"satellites,omitempty"`
	HorizontalAngle  *float64  `json:"horizontalAngle,omitempty"`
	VerticalAngle    *float64  `json:"verticalAngle,omitempty"`
	SlopeDistance    *float64  `json:"slopeDistance,omitempty"`
	AntennaHeight    *float64  `json:"antennaHeight,omitempty"`
	BaseStation      string    `json:"baseStation,omitempty"`
	GeoidModel       string    `json:"geoidModel,omitempty"`
	CoordinateSystem string    `json:"coordinateSystem,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// Point is one field observation. CollectedAt is the sole ordering key.
type Point struct {
	ID          string    `json:"id"`
	DataType    DataType  `json:"dataType"`
	Name        string    `json:"pointName,omitempty"`
	Code        string    `json:"code,omitempty"`
	Northing    *float64  `json:"northing,omitempty"`
	Easting     *float64  `json:"easting,omitempty"`
	Elevation   *float64  `json:"elevation,omitempty"`
	Description string    `json:"description,omitempty"`
	Quality     Quality   `json:"quality"`
	CollectedBy string    `json:"collectedBy,omitempty"`
	CollectedAt time.Time `json:"collectedAt"`
	Instrument  string    `json:"instrument,omitempty"`
}

// Mappable reports whether the point has both planar coordinates.
func (p Point) Mappable() bool {
	return p.Northing != nil && p.Easting != nil
}

// Label is the text shown next to the point: its name, else its code.
func (p Point) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Code
}

// Mappable returns the points that have both planar coordinates, in order.
func Mappable(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Mappable() {
			out = append(out, p)
		}
	}
	return out
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
