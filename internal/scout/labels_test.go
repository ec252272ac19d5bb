package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasTargetLabel(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   bool
	}{
		{"good first issue", []string{"bug", "good first issue"}, true},
		{"hyphenated", []string{"good-first-issue"}, true},
		{"decorated", []string{"Good First Issue :tada:"}, true},
		{"help wanted", []string{"Help Wanted"}, true},
		{"gsoc", []string{"GSoC 2026"}, true},
		{"up for grabs", []string{"up-for-grabs"}, true},
		{"unrelated", []string{"bug", "wontfix", "documentation"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTargetLabel(tt.labels))
		})
	}
}

func TestHasBeginnerLabel(t *testing.T) {
	assert.True(t, HasBeginnerLabel([]string{"good first issue"}))
	assert.True(t, HasBeginnerLabel([]string{"Beginner Friendly"}))
	assert.True(t, HasBeginnerLabel([]string{"first-timers-only"}))
	assert.False(t, HasBeginnerLabel([]string{"help wanted"}))
	assert.False(t, HasBeginnerLabel([]string{"easy"}))
}

func TestHasHelpWantedLabel(t *testing.T) {
	assert.True(t, HasHelpWantedLabel([]string{"help wanted"}))
	assert.True(t, HasHelpWantedLabel([]string{"Help-Wanted"}))
	assert.False(t, HasHelpWantedLabel([]string{"help"}))
	assert.False(t, HasHelpWantedLabel([]string{"good first issue"}))
}

func TestHasGsocLabel(t *testing.T) {
	assert.True(t, HasGsocLabel([]string{"gsoc-2026"}))
	assert.True(t, HasGsocLabel([]string{"Google Summer of Code"}))
	assert.False(t, HasGsocLabel([]string{"summer"}))
}
