package extract

import "sort"

// Resolve applies the shared overlap policy to a pool of candidates.
//
// Candidates are stably sorted by start offset and accepted left to right;
// one that intersects an already accepted span is rejected outright. The
// earliest start wins no matter which grammar produced it, and on a tie the
// candidate that came first in the pool wins. The returned slice is never nil.
func Resolve[T any](candidates []T, span func(T) (start, end int)) []T {
	sorted := make([]T, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, _ := span(sorted[i])
		sj, _ := span(sorted[j])
		return si < sj
	})

	accepted := make([]T, 0, len(sorted))
	// Accepted spans are sorted and disjoint, so only the last one can reach
	// past a later start.
	lastEnd := -1
	for _, c := range sorted {
		start, end := span(c)
		if len(accepted) > 0 && start < lastEnd {
			continue
		}
		accepted = append(accepted, c)
		lastEnd = end
	}
	return accepted
}
