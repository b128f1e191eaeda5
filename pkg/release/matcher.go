package release

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

// numberRegex extracts sequence numbers from titles (e.g. the "2" of a second season).
var numberRegex = regexp.MustCompile(`\d+`)

// MatchConfidence represents the confidence level of a title match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 0.70
	ConfidenceLow                           // Score >= 0.70
	ConfidenceMedium                        // Score >= 0.85
	ConfidenceHigh                          // Score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// MatchResult is the best candidate found by MatchTitle.
type MatchResult struct {
	Index      int // position in the candidate slice, -1 when nothing matched
	Title      string
	Score      float64 // Jaro-Winkler similarity (0.0-1.0)
	Confidence MatchConfidence
}

// MatchTitle finds the candidate most similar to name.
// Earlier candidates win ties, so a caller passing search results in
// relevance order keeps that order when scores are equal.
func MatchTitle(name string, candidates []string) MatchResult {
	best := MatchResult{Index: -1}
	if len(candidates) == 0 {
		return best
	}

	normalized := CleanTitle(name)
	nameNumbers := numberRegex.FindAllString(normalized, -1)

	for i, candidate := range candidates {
		c := CleanTitle(candidate)
		if c == "" {
			continue
		}
		score := float64(edlib.JaroWinklerSimilarity(normalized, c))
		score = adjustScoreForNumbers(score, nameNumbers, numberRegex.FindAllString(c, -1))

		if best.Index == -1 || score > best.Score {
			best.Index = i
			best.Title = candidate
			best.Score = score
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	default:
		best.Confidence = ConfidenceNone
	}
	return best
}

// adjustScoreForNumbers rewards candidates sharing a sequence number with
// the name and penalises ones that do not, so "Example 2" prefers the
// second season over the first.
func adjustScoreForNumbers(score float64, nameNums, candidateNums []string) float64 {
	if len(nameNums) == 0 {
		return score
	}
	if len(candidateNums) == 0 {
		return score * 0.85
	}

	seen := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		seen[n] = true
	}
	for _, n := range nameNums {
		if seen[n] {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
