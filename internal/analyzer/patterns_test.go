package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestIsAssignmentRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"direct can-i", "Can I work on this?", true},
		{"direct would-like", "Hi, I would like to work on this issue.", true},
		{"direct contraction", "I'd like to take a look at the parser part.", true},
		{"please assign", "Please assign this to me!", true},
		{"bare assign", "assign me", true},
		{"will take", "I'll take this if nobody else is on it.", true},
		{"be assigned", "Can this be assigned to me?", true},
		{"availability", "Is this still available?", true},
		{"up for grabs", "is this up for grabs?", true},
		{"interest", "I am interested in this.", true},
		{"let me", "Let me take this one.", true},
		{"may i", "May I work on this?", true},
		{"want to", "I want to work on this during the summer.", true},
		{"love to", "I'd love to tackle this!", true},
		{"claim", "Can I claim this?", true},
		{"claiming", "i'm claiming this", true},
		{"mention", "@maintainer can you assign me?", true},
		{"uppercase", "CAN I WORK ON THIS", true},
		{"embedded", "Great project. Can I work on this? I have Go experience.", true},

		{"bug report", "I can reproduce this on Linux with version 2.3.", false},
		{"discussion", "This looks like a duplicate of #42.", false},
		{"maintainer reply", "Sure, go ahead!", false},
		{"mentions work", "The workaround in this thread fixed it for me.", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAssignmentRequest(strPtr(tt.body)))
		})
	}
}

func TestIsAssignmentRequestNilBody(t *testing.T) {
	assert.False(t, IsAssignmentRequest(nil))
}

func TestAssignmentPatternsAreCategorized(t *testing.T) {
	for _, p := range AssignmentPatterns {
		assert.NotEmpty(t, p.Category)
		assert.NotNil(t, p.Pattern)
	}
}
