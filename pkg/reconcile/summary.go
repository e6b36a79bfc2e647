package reconcile

// Summary counts results by status.
type Summary struct {
	Total         int
	Matched       int
	Unmatched     int
	NotApplicable int
	ExactMatches  int
	FuzzyMatches  int
}

// Summarize counts results by status and match kind.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusMatched:
			s.Matched++
			if r.MatchKind == MatchFuzzy {
				s.FuzzyMatches++
			} else {
				s.ExactMatches++
			}
		case StatusUnmatched:
			s.Unmatched++
		case StatusNotApplicable:
			s.NotApplicable++
		}
	}
	return s
}

// Unmatched returns the results that still need a document.
func Unmatched(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusUnmatched {
			out = append(out, r)
		}
	}
	return out
}
