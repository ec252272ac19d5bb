package analyzer

import (
	"math"
	"time"
)

// Difficulty classifies how approachable an issue is for a newcomer.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// LongevityBadge classifies an organization by distinct years of program
// participation.
type LongevityBadge string

const (
	BadgeNewcomer    LongevityBadge = "newcomer"
	BadgeExperienced LongevityBadge = "experienced"
	BadgeVeteran     LongevityBadge = "veteran"
)

// Weights are the relative contributions of each opportunity factor. They
// must sum to 1.0. The values are product decisions carried as configuration
// rather than constants baked into the aggregation.
type Weights struct {
	JamFactor          float64
	Freshness          float64
	RepoActivity       float64
	OrgLongevity       float64
	MaintainerResponse float64
	BeginnerLabel      float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		JamFactor:          0.25,
		Freshness:          0.15,
		RepoActivity:       0.15,
		OrgLongevity:       0.20,
		MaintainerResponse: 0.15,
		BeginnerLabel:      0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.JamFactor + w.Freshness + w.RepoActivity + w.OrgLongevity + w.MaintainerResponse + w.BeginnerLabel
}

// Factors are the inputs to the opportunity score for one issue.
type Factors struct {
	JamFactor             float64
	FreshnessScore        float64
	RepoActivityScore     float64
	OrgLongevityYears     int
	MaintainerResponseHrs float64
	HasBeginnerLabel      bool
}

// OpportunityScore combines the factors into one 0-10 composite. The jam
// factor is inverted (lower competition means higher opportunity), longevity
// is capped at 10 years, and response time is mapped through a step function.
// With every component in [0,10] and weights summing to 1, the result is
// bounded without an explicit clamp.
func OpportunityScore(f Factors, w Weights) float64 {
	jamScore := 10 - f.JamFactor
	longevityScore := math.Min(10, float64(f.OrgLongevityYears))
	responseScore := ResponseScore(f.MaintainerResponseHrs)
	beginnerBonus := 5.0
	if f.HasBeginnerLabel {
		beginnerBonus = 10.0
	}

	score := jamScore*w.JamFactor +
		f.FreshnessScore*w.Freshness +
		f.RepoActivityScore*w.RepoActivity +
		longevityScore*w.OrgLongevity +
		responseScore*w.MaintainerResponse +
		beginnerBonus*w.BeginnerLabel

	return round2(score)
}

// FreshnessScore maps issue age onto a discrete step function. The floor is
// 1, never 0: old issues retain some opportunity value.
func FreshnessScore(createdAt, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	switch {
	case days <= 7:
		return 10
	case days <= 14:
		return 9
	case days <= 30:
		return 8
	case days <= 60:
		return 6
	case days <= 90:
		return 4
	case days <= 180:
		return 2
	default:
		return 1
	}
}

// RepoActivityScore sums three additive components (push recency, commit
// velocity, popularity) and caps the total at 10.
func RepoActivityScore(lastPushAt *time.Time, commitsLastMonth, starsCount int, now time.Time) float64 {
	var score float64

	if lastPushAt != nil {
		days := now.Sub(*lastPushAt).Hours() / 24
		switch {
		case days <= 7:
			score += 4
		case days <= 30:
			score += 3
		case days <= 90:
			score += 2
		default:
			score += 1
		}
	}

	switch {
	case commitsLastMonth >= 50:
		score += 3
	case commitsLastMonth >= 20:
		score += 2
	case commitsLastMonth >= 5:
		score += 1
	}

	switch {
	case starsCount >= 1000:
		score += 3
	case starsCount >= 100:
		score += 2
	case starsCount >= 10:
		score += 1
	}

	return math.Min(10, score)
}

// ResponseScore maps average maintainer first-response hours onto a step
// function; faster response scores higher.
func ResponseScore(avgResponseHours float64) float64 {
	switch {
	case avgResponseHours <= 4:
		return 10
	case avgResponseHours <= 12:
		return 9
	case avgResponseHours <= 24:
		return 8
	case avgResponseHours <= 48:
		return 6
	case avgResponseHours <= 72:
		return 4
	case avgResponseHours <= 168:
		return 2
	default:
		return 1
	}
}

// ClassifyDifficulty derives issue difficulty. A beginner label always wins,
// even over the advanced heuristics.
func ClassifyDifficulty(hasBeginnerLabel bool, commentsCount, bodyLength int) Difficulty {
	if hasBeginnerLabel {
		return DifficultyBeginner
	}
	if commentsCount > 10 || bodyLength > 1000 {
		return DifficultyAdvanced
	}
	return DifficultyIntermediate
}

// LongevityBadgeFor classifies an organization by participation years.
func LongevityBadgeFor(years int) LongevityBadge {
	switch {
	case years >= 7:
		return BadgeVeteran
	case years >= 3:
		return BadgeExperienced
	default:
		return BadgeNewcomer
	}
}
