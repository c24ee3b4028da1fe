package matcher

import "sort"

// SelectBest ranks scored candidates by tier and returns the selection.
// The sort is stable, so candidates within a tier keep their original
// catalog order — that order already prefers lively, recent markets.
//
// A selection is returned even when everything scored LOW: downstream
// replies must never be empty, so a weak match with a LOW confidence beats
// refusing to answer. Only an empty candidate list yields nil.
func SelectBest(candidates []ScoredCandidate) *Selection {
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]ScoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Tier > ranked[j].Tier
	})

	best := ranked[0]
	return &Selection{
		Best:       &best.Market,
		Tier:       best.Tier,
		Confidence: best.Tier.Confidence(),
		Reasoning:  best.Justification,
		Candidates: ranked,
	}
}
