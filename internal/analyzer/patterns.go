// Package analyzer holds the scoring core: comment classification, the jam
// factor, and the opportunity score. Everything here is a pure function over
// its inputs.
package analyzer

import "regexp"

// PatternCategory tags an assignment pattern by the kind of phrasing it
// recognizes, keeping the set reviewable as it grows.
type PatternCategory string

const (
	CategoryDirectRequest       PatternCategory = "direct_request"
	CategoryAvailabilityInquiry PatternCategory = "availability_inquiry"
	CategoryInterestStatement   PatternCategory = "interest_statement"
	CategoryClaim               PatternCategory = "claim"
	CategoryMentionRequest      PatternCategory = "mention_request"
)

// AssignmentPattern is one compiled phrasing of "please assign this to me".
type AssignmentPattern struct {
	Category PatternCategory
	Pattern  *regexp.Regexp
}

// AssignmentPatterns is the ordered pattern list used by the classifier.
// A comment matching any entry counts as an assignment request; overlap
// between phrasings is intentional redundancy.
var AssignmentPatterns = []AssignmentPattern{
	{CategoryDirectRequest, regexp.MustCompile(`(?i)can i (work on|take|do|handle|pick|tackle|attempt|try) this`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)i('d| would) like to (work on|take|do|handle|attempt)`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)please assign (this )?(to )?me`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)assign (this )?(to )?me`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)i('ll| will) (work on|take|do|handle) this`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)can (this|it) be assigned to me`)},
	{CategoryAvailabilityInquiry, regexp.MustCompile(`(?i)is this (still )?(available|open|up for grabs)`)},
	{CategoryInterestStatement, regexp.MustCompile(`(?i)i('m| am) interested (in working on|to work on|in) this`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)let me (work on|take|do|handle) this`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)may i work on this`)},
	{CategoryInterestStatement, regexp.MustCompile(`(?i)i want to work on this`)},
	{CategoryInterestStatement, regexp.MustCompile(`(?i)i'd love to (work on|take|tackle) this`)},
	{CategoryClaim, regexp.MustCompile(`(?i)can i claim this`)},
	{CategoryClaim, regexp.MustCompile(`(?i)i'm claiming this`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)can i be assigned`)},
	{CategoryDirectRequest, regexp.MustCompile(`(?i)assign this to me`)},
	{CategoryMentionRequest, regexp.MustCompile(`(?i)@\w+ (can you )?assign (this )?(to )?me`)},
}

// IsAssignmentRequest reports whether a comment body reads as a request to be
// assigned the issue. Nil and empty bodies never match.
func IsAssignmentRequest(body *string) bool {
	if body == nil || *body == "" {
		return false
	}
	for _, p := range AssignmentPatterns {
		if p.Pattern.MatchString(*body) {
			return true
		}
	}
	return false
}
