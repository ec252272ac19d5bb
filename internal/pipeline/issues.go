package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

// IssueSource supplies open target-label issues for a repository.
type IssueSource interface {
	ListTargetIssues(ctx context.Context, owner, repo string) ([]*scout.IssueInfo, error)
}

// IssueStore reads repositories and persists their issues.
type IssueStore interface {
	ListRepositories(ctx context.Context) ([]*database.Repository, error)
	UpsertIssues(ctx context.Context, issues []*database.UpsertIssueArgs) ([]*database.UpsertIssueResult, error)
	MarkIssuesClosedExcept(ctx context.Context, repositoryID int64, openGitHubIDs []int64) (int64, error)
}

// IssuesStage fetches each repository's open target-label issues from GitHub,
// upserts them keyed by GitHub id, and reconciles issues that are no longer
// open. Reconciliation only runs for repositories whose fetch succeeded, so a
// transient failure never mass-closes issues.
type IssuesStage struct {
	Source      IssueSource
	Store       IssueStore
	EntityDelay time.Duration
}

func (s *IssuesStage) Name() string { return "issues" }

func (s *IssuesStage) Run(ctx context.Context) *StageResult {
	res := newResult(s.Name())
	repos, err := s.Store.ListRepositories(ctx)
	if err != nil {
		return res.fail("failed to list repositories: %v", err)
	}
	if len(repos) == 0 {
		return res.fail("no repositories found; run the repositories stage first")
	}
	for _, repo := range repos {
		owner, name, ok := strings.Cut(repo.FullName, "/")
		if !ok || owner == "" || name == "" {
			slog.WarnContext(ctx, "Skipping repository with invalid full name", "full_name", repo.FullName)
			res.Skipped++
			continue
		}
		issues, err := s.Source.ListTargetIssues(ctx, owner, name)
		if err != nil {
			slog.WarnContext(ctx, "Failed to list issues", "repo", repo.FullName, "error", err)
			res.recordError("repository %s: %v", repo.FullName, err)
			continue
		}
		args := make([]*database.UpsertIssueArgs, 0, len(issues))
		openIDs := make([]int64, 0, len(issues))
		for _, is := range issues {
			openIDs = append(openIDs, is.GitHubID)
			args = append(args, &database.UpsertIssueArgs{
				RepositoryID:       repo.ID,
				GitHubID:           is.GitHubID,
				Number:             int32(is.Number),
				Title:              is.Title,
				Body:               is.Body,
				HTMLURL:            is.HTMLURL,
				State:              is.State,
				Labels:             is.Labels,
				Assignees:          is.Assignees,
				AuthorLogin:        is.AuthorLogin,
				CommentsCount:      int32(is.CommentsCount),
				ReactionsCount:     int32(is.ReactionsCount),
				HasBeginnerLabel:   scout.HasBeginnerLabel(is.Labels),
				HasHelpWantedLabel: scout.HasHelpWantedLabel(is.Labels),
				HasGsocLabel:       scout.HasGsocLabel(is.Labels),
				CreatedAtGitHub:    is.CreatedAt,
				UpdatedAtGitHub:    is.UpdatedAt,
			})
		}
		out, err := s.Store.UpsertIssues(ctx, args)
		if err != nil {
			slog.WarnContext(ctx, "Failed to upsert issues", "repo", repo.FullName, "error", err)
			res.recordError("repository %s: %v", repo.FullName, err)
			continue
		}
		res.Total += len(issues)
		for _, o := range out {
			if o.Inserted {
				res.Added++
			} else {
				res.Updated++
			}
		}
		closed, err := s.Store.MarkIssuesClosedExcept(ctx, repo.ID, openIDs)
		if err != nil {
			slog.WarnContext(ctx, "Failed to reconcile closed issues", "repo", repo.FullName, "error", err)
			res.recordError("repository %s: %v", repo.FullName, err)
		} else {
			res.Closed += closed
		}
		pause(ctx, s.EntityDelay)
	}
	res.Success = true
	res.Message = describeUpserts(res)
	return res
}
