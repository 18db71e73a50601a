package rag

import "sort"

// Fuse merges a vector-search ranking and a lexical-search ranking into one
// list ordered by descending combined score. Each hit contributes
// score*alpha (vector) or score*(1-alpha) (lexical); a document appearing in
// both rankings gets the sum of its two weighted contributions. The first
// hit to introduce a document id supplies its Data payload.
//
// The two input scores live on different numeric scales (cosine similarity
// vs. lexical relevance) and are deliberately NOT normalized before mixing:
// alpha is a blunt-instrument trade-off, not a calibrated blend. Changing
// this (min-max, z-score, RRF) changes observable ranking and is out of
// scope here.
//
// Ties are broken by insertion order of first appearance, so the output is
// deterministic for a given input pair. With alpha=1 the result degenerates
// to the vector ranking, with alpha=0 to the lexical ranking.
func Fuse(vectorHits, textHits []Hit, alpha float64) []FusedHit {
	type entry struct {
		id    string
		score float64
		data  Restaurant
	}

	byID := make(map[string]*entry, len(vectorHits)+len(textHits))
	order := make([]*entry, 0, len(vectorHits)+len(textHits))

	accumulate := func(h Hit, weight float64) {
		e, ok := byID[h.ID]
		if !ok {
			e = &entry{id: h.ID, data: h.Data}
			byID[h.ID] = e
			order = append(order, e)
		}
		e.score += h.Score * weight
	}

	for _, h := range vectorHits {
		accumulate(h, alpha)
	}
	for _, h := range textHits {
		accumulate(h, 1-alpha)
	}

	// Stable sort over the insertion-ordered slice keeps equal scores in
	// first-appearance order.
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].score > order[j].score
	})

	fused := make([]FusedHit, 0, len(order))
	for _, e := range order {
		fused = append(fused, FusedHit{ID: e.id, FusedScore: e.score, Data: e.data})
	}
	return fused
}
