package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func comment(author, body string) *CommentInput {
	return &CommentInput{Body: strPtr(body), AuthorLogin: strPtr(author)}
}

func TestAnalyzeCommentsEmpty(t *testing.T) {
	res := AnalyzeComments(nil)
	assert.Zero(t, res.AssignmentRequests)
	assert.Zero(t, res.UniqueRequesters)
	assert.Zero(t, res.JamFactor)
	assert.Equal(t, CompetitionLow, res.Level)
}

func TestAnalyzeCommentsRepeatedRequester(t *testing.T) {
	res := AnalyzeComments([]*CommentInput{
		comment("alice", "Can I work on this?"),
		comment("alice", "Please assign this to me, I really want it."),
	})
	// One person asking twice: 1*1.5 + 2*0.5.
	assert.Equal(t, 2, res.AssignmentRequests)
	assert.Equal(t, 1, res.UniqueRequesters)
	assert.Equal(t, 2.5, res.JamFactor)
	assert.Equal(t, CompetitionModerate, res.Level)
}

func TestAnalyzeCommentsDistinctRequesters(t *testing.T) {
	res := AnalyzeComments([]*CommentInput{
		comment("alice", "Can I work on this?"),
		comment("bob", "Is this still available?"),
		comment("carol", "I want to work on this."),
	})
	assert.Equal(t, 3, res.AssignmentRequests)
	assert.Equal(t, 3, res.UniqueRequesters)
	assert.Equal(t, 6.0, res.JamFactor)
	assert.Equal(t, CompetitionHigh, res.Level)
}

func TestAnalyzeCommentsIgnoresDiscussion(t *testing.T) {
	res := AnalyzeComments([]*CommentInput{
		comment("alice", "I can reproduce this on macOS."),
		comment("maintainer", "Thanks, we will look into it."),
	})
	assert.Zero(t, res.AssignmentRequests)
	assert.Zero(t, res.JamFactor)
	assert.Equal(t, CompetitionLow, res.Level)
}

func TestAnalyzeCommentsCapsAtTen(t *testing.T) {
	var comments []*CommentInput
	for i := 0; i < 12; i++ {
		comments = append(comments, comment(fmt.Sprintf("user%d", i), "Can I work on this?"))
	}
	res := AnalyzeComments(comments)
	assert.Equal(t, 10.0, res.JamFactor)
	assert.Equal(t, CompetitionVeryHigh, res.Level)
}

func TestAnalyzeCommentsAnonymousRequester(t *testing.T) {
	// A request without an author still counts as a request but adds no
	// unique requester.
	res := AnalyzeComments([]*CommentInput{
		{Body: strPtr("Can I work on this?")},
		nil,
	})
	assert.Equal(t, 1, res.AssignmentRequests)
	assert.Zero(t, res.UniqueRequesters)
	assert.Equal(t, 0.5, res.JamFactor)
}

func TestCompetitionLevelBoundaries(t *testing.T) {
	tests := []struct {
		jam  float64
		want CompetitionLevel
	}{
		{0, CompetitionLow},
		{2, CompetitionLow},
		{2.5, CompetitionModerate},
		{4, CompetitionModerate},
		{4.5, CompetitionHigh},
		{7, CompetitionHigh},
		{7.5, CompetitionVeryHigh},
		{10, CompetitionVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompetitionLevelFor(tt.jam), "jam factor %v", tt.jam)
	}
}
