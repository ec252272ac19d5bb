package pipeline

import (
	"fmt"
	"time"

	"gsocscout.dev/internal/analyzer"
	"gsocscout.dev/internal/scout"
)

// Options tunes the default pipeline assembly.
type Options struct {
	StageDelay  time.Duration
	EntityDelay time.Duration
	Weights     analyzer.Weights
}

// DefaultStages wires the six standard stages against the client set, in
// execution order.
func DefaultStages(cs *scout.ClientSet, opts Options) []Stage {
	db := cs.Database()
	gh := cs.GitHub()
	return []Stage{
		&OrganizationsStage{Directory: cs.Directory(), Store: db},
		&EnhanceStage{Source: cs.Directory(), Store: db, EntityDelay: opts.EntityDelay},
		&RepositoriesStage{Source: gh, Store: db, EntityDelay: opts.EntityDelay},
		&IssuesStage{Source: gh, Store: db, EntityDelay: opts.EntityDelay},
		&CommentsStage{Source: gh, Store: db, EntityDelay: opts.EntityDelay},
		&AnalyzeStage{Store: db, Weights: opts.Weights},
	}
}

// NewDefaultRunner builds a Runner over the standard stage sequence.
func NewDefaultRunner(cs *scout.ClientSet, opts Options) *Runner {
	return NewRunner(DefaultStages(cs, opts), opts.StageDelay)
}

// Select returns the stage with the given name, or an error naming the valid
// choices.
func Select(stages []Stage, name string) (Stage, error) {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		if s.Name() == name {
			return s, nil
		}
		names = append(names, s.Name())
	}
	return nil, fmt.Errorf("unknown stage %q, expected one of %v", name, names)
}
