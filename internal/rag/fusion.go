package rag

import "sort"

// FusedID is a chunk ID with its reciprocal-rank-fusion score.
type FusedID struct {
	ID    string
	Score float64
}

// FuseRanked merges ranked ID lists with reciprocal rank fusion: each
// appearance of an ID at rank r contributes 1/(k+r+1). Ties keep the order
// IDs were first seen across the inputs, so fusion is deterministic for a
// fixed set of inputs.
func FuseRanked(lists [][]string, k int) []FusedID {
	scores := make(map[string]float64)
	var order []string

	for _, list := range lists {
		for rank, id := range list {
			if _, ok := scores[id]; !ok {
				order = append(order, id)
			}
			scores[id] += 1.0 / float64(k+rank+1)
		}
	}

	fused := make([]FusedID, 0, len(order))
	for _, id := range order {
		fused = append(fused, FusedID{ID: id, Score: scores[id]})
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
