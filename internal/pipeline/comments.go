package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gsocscout.dev/internal/analyzer"
	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

// CommentSource supplies the full comment set of an issue.
type CommentSource interface {
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*scout.CommentInfo, error)
}

// CommentStore reads open issues, persists comments and writes jam analysis
// results.
type CommentStore interface {
	ListOpenIssues(ctx context.Context) ([]*database.OpenIssue, error)
	UpsertIssueComments(ctx context.Context, comments []*database.UpsertIssueCommentArgs) error
	ListCommentsByIssue(ctx context.Context, issueID int64) ([]*database.IssueComment, error)
	UpdateIssueJamFactor(ctx context.Context, issueID int64, assignmentRequests int32, jamFactor float64) error
}

// CommentsStage fetches comments for every open issue that has any, persists
// them keyed by GitHub id, and computes the jam factor from the issue's full
// persisted comment set. Issues with zero comments are skipped without
// touching the comment source.
type CommentsStage struct {
	Source      CommentSource
	Store       CommentStore
	EntityDelay time.Duration
}

func (s *CommentsStage) Name() string { return "comments" }

func (s *CommentsStage) Run(ctx context.Context) *StageResult {
	res := newResult(s.Name())
	issues, err := s.Store.ListOpenIssues(ctx)
	if err != nil {
		return res.fail("failed to list open issues: %v", err)
	}
	if len(issues) == 0 {
		return res.fail("no open issues found; run the issues stage first")
	}
	for _, issue := range issues {
		if issue.CommentsCount == 0 {
			// Nothing to fetch; zero comments means jam factor zero.
			if err := s.Store.UpdateIssueJamFactor(ctx, issue.ID, 0, 0); err != nil {
				slog.WarnContext(ctx, "Failed to update jam factor",
					"repo", issue.RepoFullName, "number", issue.Number, "error", err)
				res.recordError("issue %s#%d: %v", issue.RepoFullName, issue.Number, err)
				continue
			}
			res.Skipped++
			res.Analyzed++
			continue
		}
		owner, name, ok := strings.Cut(issue.RepoFullName, "/")
		if !ok || owner == "" || name == "" {
			res.Skipped++
			continue
		}
		comments, err := s.Source.ListIssueComments(ctx, owner, name, int(issue.Number))
		if err != nil {
			slog.WarnContext(ctx, "Failed to fetch comments",
				"repo", issue.RepoFullName, "number", issue.Number, "error", err)
			res.recordError("issue %s#%d: %v", issue.RepoFullName, issue.Number, err)
			continue
		}
		args := make([]*database.UpsertIssueCommentArgs, 0, len(comments))
		for _, c := range comments {
			var author, body string
			if c.AuthorLogin != nil {
				author = *c.AuthorLogin
			}
			if c.Body != nil {
				body = *c.Body
			}
			args = append(args, &database.UpsertIssueCommentArgs{
				IssueID:         issue.ID,
				GitHubID:        c.GitHubID,
				AuthorLogin:     author,
				Body:            body,
				CreatedAtGitHub: c.CreatedAt,
			})
		}
		if err := s.Store.UpsertIssueComments(ctx, args); err != nil {
			slog.WarnContext(ctx, "Failed to upsert comments",
				"repo", issue.RepoFullName, "number", issue.Number, "error", err)
			res.recordError("issue %s#%d: %v", issue.RepoFullName, issue.Number, err)
			continue
		}
		res.Total += len(comments)

		// The jam factor is computed from the issue's full persisted comment
		// set, not just this fetch, so recomputation stays idempotent.
		persisted, err := s.Store.ListCommentsByIssue(ctx, issue.ID)
		if err != nil {
			slog.WarnContext(ctx, "Failed to read persisted comments",
				"repo", issue.RepoFullName, "number", issue.Number, "error", err)
			res.recordError("issue %s#%d: %v", issue.RepoFullName, issue.Number, err)
			continue
		}
		inputs := make([]*analyzer.CommentInput, 0, len(persisted))
		for _, c := range persisted {
			inputs = append(inputs, &analyzer.CommentInput{Body: c.Body, AuthorLogin: c.AuthorLogin})
		}
		jam := analyzer.AnalyzeComments(inputs)
		if err := s.Store.UpdateIssueJamFactor(ctx, issue.ID, int32(jam.AssignmentRequests), jam.JamFactor); err != nil {
			slog.WarnContext(ctx, "Failed to update jam factor",
				"repo", issue.RepoFullName, "number", issue.Number, "error", err)
			res.recordError("issue %s#%d: %v", issue.RepoFullName, issue.Number, err)
			continue
		}
		res.Analyzed++
		slog.DebugContext(ctx, "Analyzed issue comments",
			"repo", issue.RepoFullName, "number", issue.Number,
			"requests", jam.AssignmentRequests, "jam_factor", jam.JamFactor, "level", jam.Level)
		pause(ctx, s.EntityDelay)
	}
	res.Success = true
	res.Message = describeAnalysis(res)
	return res
}
