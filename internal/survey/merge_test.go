package survey

import (
	"fmt"
	"testing"
	"time"
)

func TestAppend(t *testing.T) {
	base := Index([]Point{at("a", 0), at("b", 10*time.Minute)})

	tests := []struct {
		name  string
		batch []Point
		want  []string
	}{
		{
			name:  "in order",
			batch: []Point{at("d", 30*time.Minute), at("c", 20*time.Minute)},
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "tie with current max goes after",
			batch: []Point{at("c", 10*time.Minute)},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "back-dated falls back to full sort",
			batch: []Point{at("c", 5*time.Minute), at("d", 40*time.Minute)},
			want:  []string{"a", "c", "b", "d"},
		},
		{
			name:  "duplicates skipped",
			batch: []Point{at("b", 10*time.Minute), at("c", 20*time.Minute), at("c", 20*time.Minute)},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "empty batch",
			batch: nil,
			want:  []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(base.Append(tt.batch).Points())
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Append = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendLeavesSnapshotUntouched(t *testing.T) {
	base := Index([]Point{at("a", 0), at("b", 10*time.Minute)})
	next := base.Append([]Point{at("c", time.Minute)})

	if got := ids(base.Points()); fmt.Sprint(got) != "[a b]" {
		t.Errorf("base = %v after append", got)
	}
	if next.Len() != 3 {
		t.Errorf("next len = %d, want 3", next.Len())
	}
}

func TestAppendMatchesIndex(t *testing.T) {
	all := []Point{at("a", 0), at("b", 3*time.Minute), at("c", time.Minute), at("d", 3*time.Minute), at("e", 9*time.Minute)}
	merged := Index(all[:2]).Append(all[2:])
	if got, want := fmt.Sprint(ids(merged.Points())), fmt.Sprint(ids(Index(all).Points())); got != want {
		t.Errorf("Append = %v, Index = %v", got, want)
	}
}
