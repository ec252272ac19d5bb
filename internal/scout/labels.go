package scout

import "strings"

// TargetLabels is the label vocabulary that marks an issue as interesting for
// GSoC contributors. Matching is case-insensitive substring containment, so
// "Good First Issue :tada:" and "good-first-issue" both qualify.
var TargetLabels = []string{
	"good first issue",
	"good-first-issue",
	"help wanted",
	"help-wanted",
	"beginner",
	"beginner-friendly",
	"easy",
	"starter",
	"gsoc",
	"hacktoberfest",
	"first-timers-only",
	"up-for-grabs",
}

// HasTargetLabel reports whether any label matches the target vocabulary.
func HasTargetLabel(labels []string) bool {
	for _, label := range labels {
		l := strings.ToLower(label)
		for _, target := range TargetLabels {
			if strings.Contains(l, target) {
				return true
			}
		}
	}
	return false
}

// HasBeginnerLabel reports whether any label marks the issue as
// beginner-friendly.
func HasBeginnerLabel(labels []string) bool {
	for _, label := range labels {
		l := strings.ToLower(label)
		if strings.Contains(l, "good first issue") ||
			strings.Contains(l, "good-first-issue") ||
			strings.Contains(l, "first-timers-only") ||
			strings.Contains(l, "beginner") {
			return true
		}
	}
	return false
}

// HasHelpWantedLabel reports whether any label is a help-wanted variant.
func HasHelpWantedLabel(labels []string) bool {
	for _, label := range labels {
		l := strings.ToLower(label)
		if strings.Contains(l, "help") && strings.Contains(l, "wanted") {
			return true
		}
	}
	return false
}

// HasGsocLabel reports whether any label references GSoC.
func HasGsocLabel(labels []string) bool {
	for _, label := range labels {
		l := strings.ToLower(label)
		if strings.Contains(l, "gsoc") || strings.Contains(l, "google summer of code") {
			return true
		}
	}
	return false
}
