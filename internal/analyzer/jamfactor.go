package analyzer

import "math"

// CompetitionLevel classifies how contested an issue is.
type CompetitionLevel string

const (
	CompetitionLow      CompetitionLevel = "low"
	CompetitionModerate CompetitionLevel = "moderate"
	CompetitionHigh     CompetitionLevel = "high"
	CompetitionVeryHigh CompetitionLevel = "very_high"
)

// CommentInput is one comment as seen by the classifier. Body and author may
// be absent (deleted users, empty bodies).
type CommentInput struct {
	Body        *string
	AuthorLogin *string
}

// JamFactorResult is the competition analysis of one issue's comment set.
type JamFactorResult struct {
	AssignmentRequests int
	UniqueRequesters   int
	JamFactor          float64
	Level              CompetitionLevel
}

// AnalyzeComments classifies each comment and aggregates the jam factor.
// Unique requesters weigh more heavily than raw request volume: repeated
// pleas from one person indicate less actual competition than several
// distinct people vying for the same issue.
func AnalyzeComments(comments []*CommentInput) JamFactorResult {
	var requests int
	requesters := make(map[string]bool)

	for _, c := range comments {
		if c == nil || !IsAssignmentRequest(c.Body) {
			continue
		}
		requests++
		if c.AuthorLogin != nil && *c.AuthorLogin != "" {
			requesters[*c.AuthorLogin] = true
		}
	}

	jam := math.Min(10, float64(len(requesters))*1.5+float64(requests)*0.5)
	jam = round2(jam)

	return JamFactorResult{
		AssignmentRequests: requests,
		UniqueRequesters:   len(requesters),
		JamFactor:          jam,
		Level:              CompetitionLevelFor(jam),
	}
}

// CompetitionLevelFor maps a jam factor onto its display bucket.
func CompetitionLevelFor(jamFactor float64) CompetitionLevel {
	switch {
	case jamFactor <= 2:
		return CompetitionLow
	case jamFactor <= 4:
		return CompetitionModerate
	case jamFactor <= 7:
		return CompetitionHigh
	default:
		return CompetitionVeryHigh
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
