package survey

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Demo builds the onboarding data set: three field sessions across two days
// starting on day's calendar date. The same seed always yields the same
// points, ids included.
func Demo(seed int64, day time.Time) []Point {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	src := rand.NewChaCha8(key)
	g := &demoGen{rng: rand.New(src), ids: src}

	d0 := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	d1 := d0.AddDate(0, 0, 1)

	var pts []Point
	pts = append(pts, g.gnssControl(d0.Add(7*time.Hour+30*time.Minute))...)
	pts = append(pts, g.totalStation(d0.Add(13*time.Hour))...)
	pts = append(pts, g.stakeout(d1.Add(8*time.Hour))...)
	return pts
}

type demoGen struct {
	rng *rand.Rand
	ids *rand.ChaCha8
}

const (
	demoBaseN = 5000.0
	demoBaseE = 2000.0
	demoBaseZ = 250.0
)

func (g *demoGen) id() string {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		// ChaCha8 reads never fail.
		panic(err)
	}
	return id.String()
}

// step advances t by 1-6 minutes, well inside a session.
func (g *demoGen) step(t time.Time) time.Time {
	return t.Add(time.Minute + time.Duration(g.rng.IntN(300))*time.Second)
}

func (g *demoGen) jitter(spread float64) float64 {
	return (g.rng.Float64()*2 - 1) * spread
}

func (g *demoGen) round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func (g *demoGen) gnssControl(t time.Time) []Point {
	const crew, instr = "J. Alvarez", "Trimble R12i"
	pts := []Point{{
		ID:          g.id(),
		DataType:    TypeNote,
		Description: "Base station set over CP-1, RTK radio link established",
		CollectedBy: crew,
		CollectedAt: t,
		Instrument:  instr,
		Quality:     Quality{BaseStation: "BASE-01", Notes: "Clear sky, 14 satellites tracked"},
	}}

	for i := 1; i <= 4; i++ {
		t = g.step(t)
		pts = append(pts, Point{
			ID:          g.id(),
			DataType:    TypeGPSPosition,
			Name:        fmt.Sprintf("CP-%d", i),
			Code:        "CP",
			Northing:    Float(g.round(demoBaseN+float64(i-1)*85+g.jitter(6), 4)),
			Easting:     Float(g.round(demoBaseE+float64(i%2)*120+g.jitter(6), 4)),
			Elevation:   Float(g.round(demoBaseZ+g.jitter(2), 4)),
			Description: "Control point, iron rod",
			CollectedBy: crew,
			CollectedAt: t,
			Instrument:  instr,
			Quality: Quality{
				Accuracy:         Float(g.round(0.008+g.rng.Float64()*0.01, 4)),
				RTKStatus:        RTKFixed,
				PDOP:             Float(g.round(1.2+g.rng.Float64(), 1)),
				HDOP:             Float(g.round(0.6+g.rng.Float64()*0.5, 1)),
				VDOP:             Float(g.round(1.0+g.rng.Float64()*0.6, 1)),
				Satellites:       Int(12 + g.rng.IntN(6)),
				AntennaHeight:    Float(2.0),
				BaseStation:      "BASE-01",
				GeoidModel:       "GEOID18",
				CoordinateSystem: "NAD83 / State Plane",
			},
		})
	}

	for i := 1; i <= 10; i++ {
		t = g.step(t)
		status := RTKFixed
		if g.rng.IntN(6) == 0 {
			status = RTKFloat
		}
		pts = append(pts, Point{
			ID:          g.id(),
			DataType:    TypePoint,
			Name:        fmt.Sprintf("TOPO-%d", i),
			Code:        "TOPO",
			Northing:    Float(g.round(demoBaseN+40+g.jitter(120), 4)),
			Easting:     Float(g.round(demoBaseE+60+g.jitter(120), 4)),
			Elevation:   Float(g.round(demoBaseZ+g.jitter(4), 4)),
			Description: "Ground shot",
			CollectedBy: crew,
			CollectedAt: t,
			Instrument:  instr,
			Quality: Quality{
				Accuracy:    Float(g.round(0.01+g.rng.Float64()*0.03, 4)),
				RTKStatus:   status,
				PDOP:        Float(g.round(1.4+g.rng.Float64()*1.5, 1)),
				Satellites:  Int(10 + g.rng.IntN(8)),
				BaseStation: "BASE-01",
			},
		})
	}
	return pts
}

func (g *demoGen) totalStation(t time.Time) []Point {
	const crew, instr = "M. Chen", "Leica TS16"
	var pts []Point
	for i := 1; i <= 12; i++ {
		code, name := "TRV", fmt.Sprintf("TRV-%d", i)
		if i%4 == 0 {
			code, name = "BLDG", fmt.Sprintf("BLDG-%d", i/4)
		}
		pts = append(pts, Point{
			ID:          g.id(),
			DataType:    TypeTotalStation,
			Name:        name,
			Code:        code,
			Northing:    Float(g.round(demoBaseN+150+float64(i)*12+g.jitter(3), 4)),
			Easting:     Float(g.round(demoBaseE-40+float64(i)*9+g.jitter(3), 4)),
			Elevation:   Float(g.round(demoBaseZ+1.5+g.jitter(1), 4)),
			Description: "Traverse observation",
			CollectedBy: crew,
			CollectedAt: t,
			Instrument:  instr,
			Quality: Quality{
				HorizontalAngle: Float(g.round(g.rng.Float64()*360, 4)),
				VerticalAngle:   Float(g.round(88+g.rng.Float64()*4, 4)),
				SlopeDistance:   Float(g.round(20+g.rng.Float64()*180, 4)),
				AntennaHeight:   Float(1.8),
				Notes:           "Prism constant -30 mm",
			},
		})
		t = g.step(t)
	}
	return pts
}

func (g *demoGen) stakeout(t time.Time) []Point {
	const crew, instr = "J. Alvarez", "Trimble R12i"
	var pts []Point
	for i := 1; i <= 6; i++ {
		pts = append(pts, Point{
			ID:          g.id(),
			DataType:    TypeMeasurement,
			Name:        fmt.Sprintf("STK-%d", i),
			Code:        "STK",
			Northing:    Float(g.round(demoBaseN+220+g.jitter(40), 4)),
			Easting:     Float(g.round(demoBaseE+180+g.jitter(40), 4)),
			Elevation:   Float(g.round(demoBaseZ+0.5+g.jitter(1), 4)),
			Description: "Lot corner staked, hub and tack",
			CollectedBy: crew,
			CollectedAt: t,
			Instrument:  instr,
			Quality: Quality{
				Accuracy:   Float(g.round(0.012+g.rng.Float64()*0.01, 4)),
				RTKStatus:  RTKFixed,
				Satellites: Int(13 + g.rng.IntN(5)),
			},
		})
		t = g.step(t)
		if i%3 == 0 {
			pts = append(pts, Point{
				ID:          g.id(),
				DataType:    TypePhoto,
				Name:        fmt.Sprintf("PHOTO-%d", i/3),
				Northing:    Float(*pts[len(pts)-1].Northing),
				Easting:     Float(*pts[len(pts)-1].Easting),
				Description: "Monument photo",
				CollectedBy: crew,
				CollectedAt: t,
			})
			t = g.step(t)
		}
	}
	pts = append(pts, Point{
		ID:          g.id(),
		DataType:    TypeNote,
		Description: "Stakeout complete, client notified",
		CollectedBy: crew,
		CollectedAt: t,
	})
	return pts
}
