package survey

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"
)

func TestSegmentScenario(t *testing.T) {
	seq := Index([]Point{
		at("1", 0),
		at("2", 2*time.Minute),
		at("3", 65*time.Minute),
	})

	seg := Segment(seq, DefaultSessionGap)

	if len(seg.Markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(seg.Markers))
	}
	end, start := seg.Markers[0], seg.Markers[1]
	if end.Kind != MarkerEnd || end.Index != 1 || !end.At.Equal(t0.Add(2*time.Minute)) {
		t.Errorf("end marker = %+v", end)
	}
	if start.Kind != MarkerStart || start.Index != 2 || !start.At.Equal(t0.Add(65*time.Minute)) {
		t.Errorf("start marker = %+v", start)
	}
	if !strings.Contains(end.Label, "08:02") || !strings.Contains(start.Label, "09:05") {
		t.Errorf("labels = %q, %q", end.Label, start.Label)
	}
	if seg.Count() != 2 {
		t.Errorf("sessions = %d, want 2", seg.Count())
	}
	if s := seg.Sessions[0]; s.First != 0 || s.Last != 1 || s.Points != 2 || s.Length != 2*time.Minute {
		t.Errorf("first session = %+v", s)
	}
	if s := seg.Sessions[1]; s.First != 2 || s.Last != 2 || s.Points != 1 {
		t.Errorf("second session = %+v", s)
	}
}

func TestSegmentSmallInputs(t *testing.T) {
	tests := []struct {
		name         string
		points       []Point
		wantSessions int
	}{
		{"empty", nil, 0},
		{"single", []Point{at("a", 0)}, 1},
		{"gap equal to threshold", []Point{at("a", 0), at("b", 30*time.Minute)}, 1},
		{"gap just over threshold", []Point{at("a", 0), at("b", 30*time.Minute+time.Second)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := Segment(Index(tt.points), DefaultSessionGap)
			if seg.Count() != tt.wantSessions {
				t.Errorf("sessions = %d, want %d", seg.Count(), tt.wantSessions)
			}
			if len(seg.Markers) != 2*max(tt.wantSessions-1, 0) {
				t.Errorf("markers = %d, want %d", len(seg.Markers), 2*max(tt.wantSessions-1, 0))
			}
		})
	}
}

func TestSegmentCountMonotonicInGap(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	gaps := []time.Duration{2 * time.Hour, time.Hour, 30 * time.Minute, 10 * time.Minute, time.Minute, 0}

	for round := 0; round < 100; round++ {
		pts := make([]Point, r.IntN(30))
		for i := range pts {
			pts[i] = at("p", time.Duration(r.IntN(600))*time.Minute)
		}
		seq := Index(pts)

		prev := -1
		for _, gap := range gaps {
			n := Segment(seq, gap).Count()
			if n < prev {
				t.Fatalf("round %d: gap %v gave %d sessions, fewer than %d at a larger gap", round, gap, n, prev)
			}
			prev = n
		}
	}
}

func TestSegmentDemoHasThreeSessions(t *testing.T) {
	seg := Segment(Index(Demo(42, t0)), DefaultSessionGap)
	if seg.Count() != 3 {
		t.Errorf("demo sessions = %d, want 3", seg.Count())
	}
}
