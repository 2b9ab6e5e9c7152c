package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

func TestDemoSeedIsIdempotent(t *testing.T) {
	e := newTestEnv(t, nil)
	cookies := e.seedDemo("demo")

	w := e.do(http.MethodPost, "/api/jobs/demo/demo?day=2024-05-06", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[CaptureResponse](t, w)
	if resp.Added != 0 || resp.Skipped != resp.Total || resp.Total == 0 {
		t.Errorf("second seed = %+v, want nothing added", resp)
	}
}

func TestDemoRejectsBadDay(t *testing.T) {
	e := newTestEnv(t, nil)
	cookies := e.createJob("demo")
	if w := e.do(http.MethodPost, "/api/jobs/demo/demo?day=May-6", nil, cookies); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/jobs/demo/demo", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: expected 401, got %d", w.Code)
	}
}

func TestListPoints(t *testing.T) {
	e := newTestEnv(t, nil)
	e.seedDemo("demo")

	all := decode[PointsResponse](t, e.do(http.MethodGet, "/api/jobs/demo/points", nil, nil))
	if all.Total == 0 || len(all.Points) != all.Total {
		t.Fatalf("f=1: total %d, points %d", all.Total, len(all.Points))
	}
	for i := 1; i < len(all.Points); i++ {
		if all.Points[i].CollectedAt.Before(all.Points[i-1].CollectedAt) {
			t.Fatalf("points out of order at %d", i)
		}
	}

	first := decode[PointsResponse](t, e.do(http.MethodGet, "/api/jobs/demo/points?f=0", nil, nil))
	if len(first.Points) == 0 || len(first.Points) >= all.Total {
		t.Errorf("f=0: %d visible of %d", len(first.Points), all.Total)
	}
	if !first.Cutoff.Equal(all.Points[0].CollectedAt) {
		t.Errorf("f=0 cutoff = %v, want %v", first.Cutoff, all.Points[0].CollectedAt)
	}

	for _, q := range []string{"f=1.5", "f=-1", "f=abc"} {
		if w := e.do(http.MethodGet, "/api/jobs/demo/points?"+q, nil, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestSessions(t *testing.T) {
	e := newTestEnv(t, nil)
	e.seedDemo("demo")

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?gapMinutes=30", 3},
		{"?gapMinutes=10080", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := e.do(http.MethodGet, "/api/jobs/demo/sessions"+tt.query, nil, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			resp := decode[SessionsResponse](t, w)
			if resp.Count != tt.want || len(resp.Sessions) != tt.want {
				t.Errorf("count = %d (%d sessions), want %d", resp.Count, len(resp.Sessions), tt.want)
			}
		})
	}

	for _, q := range []string{"?gapMinutes=0", "?gapMinutes=-5", "?gapMinutes=x"} {
		if w := e.do(http.MethodGet, "/api/jobs/demo/sessions"+q, nil, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestTimeline(t *testing.T) {
	e := newTestEnv(t, nil)
	e.seedDemo("demo")

	w := e.do(http.MethodGet, "/api/jobs/demo/timeline?buckets=20&f=1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[TimelineResponse](t, w)
	if len(resp.Buckets) != 20 {
		t.Fatalf("buckets = %d, want 20", len(resp.Buckets))
	}
	sum, peak := 0, 0
	for _, b := range resp.Buckets {
		sum += b.Count
		peak = max(peak, b.Count)
	}
	if sum != resp.Total || resp.Visible != resp.Total {
		t.Errorf("sum %d, visible %d, total %d", sum, resp.Visible, resp.Total)
	}
	if peak != resp.Peak {
		t.Errorf("peak = %d, want %d", resp.Peak, peak)
	}
	if !resp.Buckets[0].Start.Equal(resp.Range.Min) {
		t.Errorf("first bucket starts %v, want %v", resp.Buckets[0].Start, resp.Range.Min)
	}

	def := decode[TimelineResponse](t, e.do(http.MethodGet, "/api/jobs/demo/timeline", nil, nil))
	if len(def.Buckets) != 50 {
		t.Errorf("default buckets = %d, want 50", len(def.Buckets))
	}

	if w := e.do(http.MethodGet, "/api/jobs/demo/timeline?buckets=0", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("buckets=0: expected 400, got %d", w.Code)
	}
}

func TestCapturePoints(t *testing.T) {
	e := newTestEnv(t, nil)
	cookies := e.createJob("site")

	at := testDay.Add(9 * time.Hour)
	req := CaptureRequest{Points: []survey.Point{
		{ID: "p1", Name: "CP1", DataType: "gnss", Northing: survey.Float(10), Easting: survey.Float(20), CollectedAt: at},
		{ID: "p2", Name: "CP2", DataType: "nonsense", Northing: survey.Float(30), Easting: survey.Float(40), CollectedAt: at.Add(time.Minute)},
		{Name: "photo", DataType: survey.TypePhoto},
	}}

	if w := e.do(http.MethodPost, "/api/jobs/site/points", req, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: expected 401, got %d", w.Code)
	}

	w := e.do(http.MethodPost, "/api/jobs/site/points", req, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[CaptureResponse](t, w)
	if resp.Added != 3 || resp.Skipped != 0 || resp.Total != 3 {
		t.Errorf("capture = %+v", resp)
	}

	w = e.do(http.MethodPost, "/api/jobs/site/points", CaptureRequest{Points: req.Points[:2]}, cookies)
	again := decode[CaptureResponse](t, w)
	if again.Added != 0 || again.Skipped != 2 || again.Version != resp.Version {
		t.Errorf("re-capture = %+v, want all skipped at version %d", again, resp.Version)
	}

	list := decode[PointsResponse](t, e.do(http.MethodGet, "/api/jobs/site/points", nil, nil))
	byID := map[string]survey.Point{}
	for _, p := range list.Points {
		byID[p.ID] = p
	}
	if got := byID["p2"].DataType; got != survey.TypePoint {
		t.Errorf("unknown data type coerced to %q, want %q", got, survey.TypePoint)
	}
	if got := byID["p1"].CollectedBy; got != testAdminEmail {
		t.Errorf("collectedBy = %q, want %q", got, testAdminEmail)
	}
	if len(byID) != 3 {
		t.Errorf("stored %d points, want 3", len(byID))
	}

	if w := e.do(http.MethodPost, "/api/jobs/site/points", CaptureRequest{}, cookies); w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", w.Code)
	}
}

func TestMap(t *testing.T) {
	e := newTestEnv(t, nil)
	cookies := e.createJob("grid")

	at := testDay.Add(9 * time.Hour)
	var pts []survey.Point
	for i := range 4 {
		pts = append(pts, survey.Point{
			ID:          fmt.Sprintf("g%d", i),
			Name:        fmt.Sprintf("G%d", i),
			DataType:    survey.TypeTotalStation,
			Northing:    survey.Float(float64(i * 10)),
			Easting:     survey.Float(float64(i * 10)),
			CollectedAt: at.Add(time.Duration(i) * time.Minute),
		})
	}
	pts = append(pts, survey.Point{ID: "photo", DataType: survey.TypePhoto, CollectedAt: at.Add(10 * time.Minute)})
	if w := e.do(http.MethodPost, "/api/jobs/grid/points", CaptureRequest{Points: pts}, cookies); w.Code != http.StatusOK {
		t.Fatalf("capture: %d %s", w.Code, w.Body.String())
	}

	w := e.do(http.MethodGet, "/api/jobs/grid/map?width=200&height=100&selected=g1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[MapResponse](t, w)
	if len(resp.Points) != 4 || resp.Unmapped != 1 {
		t.Fatalf("placed %d, unmapped %d", len(resp.Points), resp.Unmapped)
	}
	if resp.Size.Width != 200 || resp.Size.Height != 100 {
		t.Errorf("size = %+v", resp.Size)
	}
	for _, p := range resp.Points {
		if p.ID == "g1" && (!p.Selected || !p.ShowLabel) {
			t.Errorf("g1 should be selected and labelled: %+v", p)
		}
		if p.X < 0 || p.X > 200 || p.Y < 0 || p.Y > 100 {
			t.Errorf("%s placed outside viewport at (%v, %v)", p.ID, p.X, p.Y)
		}
	}

	target := resp.Points[2]
	w = e.do(http.MethodGet, fmt.Sprintf("/api/jobs/grid/map?width=200&height=100&pickX=%g&pickY=%g", target.X+1, target.Y), nil, nil)
	picked := decode[MapResponse](t, w)
	if picked.Pick == nil || picked.Pick.Nearest == nil || picked.Pick.Nearest.ID != target.ID {
		t.Fatalf("pick = %+v, want nearest %s", picked.Pick, target.ID)
	}

	// Scrubbing back hides later points but keeps the bounds.
	early := decode[MapResponse](t, e.do(http.MethodGet, "/api/jobs/grid/map?width=200&height=100&f=0", nil, nil))
	if len(early.Points) != 1 || early.Bounds != resp.Bounds {
		t.Errorf("f=0: %d points, bounds %+v vs %+v", len(early.Points), early.Bounds, resp.Bounds)
	}

	for _, q := range []string{"width=0", "zoom=-1", "pickX=10", "radius=0"} {
		if w := e.do(http.MethodGet, "/api/jobs/grid/map?"+q, nil, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}
