package vectorstore

import "sort"

// rrfConstant dampens the contribution of lower ranks in reciprocal rank
// fusion. 60 is the value from the original RRF paper and works well without
// tuning.
const rrfConstant = 60

// reciprocalRankFusion combines multiple ranked candidate lists into one.
// Each candidate's fused score is the sum over the lists it appears in of
// 1/(rrfConstant + rank + 1), rank zero-based. The fused ranking is sorted
// by descending score; ties are broken by first-seen order across the input
// lists, so the result is fully deterministic for fixed inputs.
func reciprocalRankFusion(lists [][]string, limit int) []string {
	scores := make(map[string]float64)
	firstSeen := make(map[string]int)

	for _, list := range lists {
		for rank, id := range list {
			if _, ok := firstSeen[id]; !ok {
				firstSeen[id] = len(firstSeen)
			}
			scores[id] += 1.0 / float64(rrfConstant+rank+1)
		}
	}

	fused := make([]string, 0, len(scores))
	for id := range scores {
		fused = append(fused, id)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		si, sj := scores[fused[i]], scores[fused[j]]
		if si != sj {
			return si > sj
		}
		return firstSeen[fused[i]] < firstSeen[fused[j]]
	})

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
