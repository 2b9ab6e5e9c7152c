package interchange

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// kmlCaveat is written into every document. Coordinates are the projected
// grid values; no datum transformation is applied.
const kmlCaveat = "Coordinates are projected easting/northing/elevation grid values, " +
	"not reprojected WGS84 longitude/latitude. Transform them before use in a geographic viewer."

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Comment     string         `xml:",comment"`
	Name        string         `xml:"name"`
	Description string         `xml:"description"`
	Placemarks  []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	ID          string        `xml:"id,attr,omitempty"`
	Name        string        `xml:"name"`
	Description string        `xml:"description,omitempty"`
	TimeStamp   *kmlTimeStamp `xml:"TimeStamp,omitempty"`
	Point       kmlPoint      `xml:"Point"`
}

type kmlTimeStamp struct {
	When string `xml:"when"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

func encodeKML(points []survey.Point, opts Options) ([]byte, error) {
	name := opts.DocumentName
	if name == "" {
		name = "Survey Points"
	}

	doc := kmlRoot{
		Xmlns: kmlNamespace,
		Document: kmlDocument{
			Comment:     " " + kmlCaveat + " ",
			Name:        name,
			Description: kmlCaveat,
			Placemarks:  []kmlPlacemark{},
		},
	}
	for _, p := range points {
		if !p.Mappable() {
			continue
		}
		pm := kmlPlacemark{
			ID:          p.ID,
			Name:        p.Label(),
			Description: kmlDescription(p),
			Point: kmlPoint{Coordinates: strings.Join([]string{
				formatNum(p.Easting),
				formatNum(p.Northing),
				formatNum(survey.Float(elevationOrZero(p))),
			}, ",")},
		}
		if pm.Name == "" {
			pm.Name = p.DataType.Label()
		}
		if !p.CollectedAt.IsZero() {
			pm.TimeStamp = &kmlTimeStamp{When: p.CollectedAt.UTC().Format(time.RFC3339)}
		}
		doc.Document.Placemarks = append(doc.Document.Placemarks, pm)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding kml: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(out)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// kmlDescription assembles the placemark body from whatever is known.
func kmlDescription(p survey.Point) string {
	var lines []string
	if p.Code != "" {
		lines = append(lines, "Code: "+p.Code)
	}
	if p.Elevation != nil {
		lines = append(lines, "Elevation: "+formatNum(p.Elevation))
	}
	if p.Quality.Accuracy != nil {
		lines = append(lines, "Accuracy: "+formatNum(p.Quality.Accuracy)+" m")
	}
	if p.CollectedBy != "" {
		lines = append(lines, "Collected by: "+p.CollectedBy)
	}
	if !p.CollectedAt.IsZero() {
		lines = append(lines, "Time: "+p.CollectedAt.Format(time.RFC3339))
	}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	return strings.Join(lines, "\n")
}
