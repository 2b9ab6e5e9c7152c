package survey

import (
	"reflect"
	"testing"
)

func TestDemoIsDeterministic(t *testing.T) {
	a, b := Demo(7, t0), Demo(7, t0)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different points")
	}
	if c := Demo(8, t0); reflect.DeepEqual(a[1].Northing, c[1].Northing) && a[1].ID == c[1].ID {
		t.Error("different seeds produced the same points")
	}
}

func TestDemoShape(t *testing.T) {
	pts := Demo(1, t0)

	seen := map[string]bool{}
	days := map[int]bool{}
	unmappable := 0
	for _, p := range pts {
		if p.ID == "" || seen[p.ID] {
			t.Fatalf("missing or duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if !p.DataType.Valid() {
			t.Errorf("point %s has data type %q", p.ID, p.DataType)
		}
		days[p.CollectedAt.YearDay()] = true
		if !p.Mappable() {
			unmappable++
		}
	}
	if len(days) != 2 {
		t.Errorf("demo spans %d days, want 2", len(days))
	}
	if unmappable == 0 {
		t.Error("demo has no notes without coordinates")
	}
}
