package survey

import "slices"

// Append folds a batch of newly captured points into the sequence and returns
// the new sequence. Points whose ID is already present are skipped. When the
// whole batch is at or after the current maximum it is appended in place of a
// full sort; a back-dated point forces a stable re-sort of everything.
func (s Sequence) Append(batch []Point) Sequence {
	fresh := s.unseen(batch)
	if len(fresh) == 0 {
		return s
	}
	fresh = Index(fresh).points

	merged := make([]Point, 0, len(s.points)+len(fresh))
	merged = append(merged, s.points...)
	merged = append(merged, fresh...)

	if len(s.points) > 0 && fresh[0].CollectedAt.Before(s.points[len(s.points)-1].CollectedAt) {
		return Index(merged)
	}
	return Sequence{points: merged}
}

func (s Sequence) unseen(batch []Point) []Point {
	seen := make(map[string]struct{}, len(s.points)+len(batch))
	for _, p := range s.points {
		seen[p.ID] = struct{}{}
	}
	out := slices.Grow([]Point(nil), len(batch))
	for _, p := range batch {
		if _, dup := seen[p.ID]; dup && p.ID != "" {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
