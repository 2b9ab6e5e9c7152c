package survey

import "time"

// DefaultSessionGap is the pause after which a new field session starts.
const DefaultSessionGap = 30 * time.Minute

const markerTimeLayout = "Jan 2 15:04"

type MarkerKind string

const (
	MarkerEnd   MarkerKind = "end"
	MarkerStart MarkerKind = "start"
)

// Marker is a session boundary placed at a point's capture time. Index is the
// point's position in the sequence.
type Marker struct {
	Kind  MarkerKind `json:"kind"`
	At    time.Time  `json:"at"`
	Index int        `json:"index"`
	Label string     `json:"label"`
}

// Session is one contiguous run of points. First and Last are inclusive
// sequence indices.
type Session struct {
	Number int           `json:"number"`
	First  int           `json:"first"`
	Last   int           `json:"last"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Points int           `json:"points"`
	Length time.Duration `json:"lengthNs"`
}

type Segmentation struct {
	Gap      time.Duration `json:"gapNs"`
	Markers  []Marker      `json:"markers"`
	Sessions []Session     `json:"sessions"`
}

// Count is the number of sessions: marker pairs + 1, or 0 when empty.
func (s Segmentation) Count() int {
	return len(s.Sessions)
}

// Segment splits seq wherever consecutive capture times are more than gap
// apart, emitting an end marker on the earlier point and a start marker on
// the later one.
func Segment(seq Sequence, gap time.Duration) Segmentation {
	seg := Segmentation{Gap: gap, Markers: []Marker{}, Sessions: []Session{}}
	if seq.Len() == 0 {
		return seg
	}

	first := 0
	for i := 1; i < seq.Len(); i++ {
		prev, cur := seq.points[i-1], seq.points[i]
		if cur.CollectedAt.Sub(prev.CollectedAt) <= gap {
			continue
		}
		seg.Markers = append(seg.Markers,
			Marker{Kind: MarkerEnd, At: prev.CollectedAt, Index: i - 1, Label: "Session end " + prev.CollectedAt.Format(markerTimeLayout)},
			Marker{Kind: MarkerStart, At: cur.CollectedAt, Index: i, Label: "Session start " + cur.CollectedAt.Format(markerTimeLayout)},
		)
		seg.Sessions = append(seg.Sessions, newSession(seq, len(seg.Sessions)+1, first, i-1))
		first = i
	}
	seg.Sessions = append(seg.Sessions, newSession(seq, len(seg.Sessions)+1, first, seq.Len()-1))
	return seg
}

func newSession(seq Sequence, number, first, last int) Session {
	start, end := seq.points[first].CollectedAt, seq.points[last].CollectedAt
	return Session{
		Number: number,
		First:  first,
		Last:   last,
		Start:  start,
		End:    end,
		Points: last - first + 1,
		Length: end.Sub(start),
	}
}
