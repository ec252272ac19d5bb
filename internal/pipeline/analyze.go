package pipeline

import (
	"context"
	"log/slog"
	"time"

	"gsocscout.dev/internal/analyzer"
	"gsocscout.dev/internal/database"
)

// ScoreStore reads open issues with their scoring context and persists the
// computed scores.
type ScoreStore interface {
	ListOpenIssueContexts(ctx context.Context) ([]*database.IssueContext, error)
	UpdateIssueScores(ctx context.Context, issueID int64, freshness, opportunity float64, difficulty string) error
}

// AnalyzeStage computes the freshness score, the weighted opportunity score
// and the difficulty classification for every open issue. It reads only
// persisted data, so it can rerun at any time without talking to GitHub.
type AnalyzeStage struct {
	Store   ScoreStore
	Weights analyzer.Weights

	// now is injectable for tests; the zero value means time.Now.
	now func() time.Time
}

func (s *AnalyzeStage) Name() string { return "analyze" }

func (s *AnalyzeStage) Run(ctx context.Context) *StageResult {
	res := newResult(s.Name())
	contexts, err := s.Store.ListOpenIssueContexts(ctx)
	if err != nil {
		return res.fail("failed to list open issues: %v", err)
	}
	if len(contexts) == 0 {
		return res.fail("no open issues found; run the issues stage first")
	}
	weights := s.Weights
	if weights.Sum() == 0 {
		weights = analyzer.DefaultWeights()
	}
	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()

	for _, c := range contexts {
		freshness := analyzer.FreshnessScore(c.CreatedAtGitHub, now)
		activity := analyzer.RepoActivityScore(c.LastPushAt, int(c.CommitsLastMonth), int(c.StarsCount), now)
		opportunity := analyzer.OpportunityScore(analyzer.Factors{
			JamFactor:             c.JamFactor,
			FreshnessScore:        freshness,
			RepoActivityScore:     activity,
			OrgLongevityYears:     int(c.OrgLongevityYears),
			MaintainerResponseHrs: c.AvgMaintainerResponseHours,
			HasBeginnerLabel:      c.HasBeginnerLabel,
		}, weights)
		difficulty := analyzer.ClassifyDifficulty(c.HasBeginnerLabel, int(c.CommentsCount), int(c.BodyLength))

		if err := s.Store.UpdateIssueScores(ctx, c.ID, freshness, opportunity, string(difficulty)); err != nil {
			slog.WarnContext(ctx, "Failed to update issue scores",
				"repo", c.RepoFullName, "number", c.Number, "error", err)
			res.recordError("issue %s#%d: %v", c.RepoFullName, c.Number, err)
			continue
		}
		res.Analyzed++
		slog.DebugContext(ctx, "Scored issue",
			"repo", c.RepoFullName, "number", c.Number,
			"opportunity", opportunity, "freshness", freshness, "difficulty", difficulty)
	}
	res.Total = len(contexts)
	res.Success = true
	res.Message = describeAnalysis(res)
	return res
}
