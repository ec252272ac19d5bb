package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

// activeRepoWindow is how recently a repository must have been pushed to be
// considered worth tracking.
const activeRepoWindow = 6 * 30 * 24 * time.Hour

// RepoSource supplies the active public repositories of a GitHub organization.
type RepoSource interface {
	ListOrgRepos(ctx context.Context, org string, pushedSince time.Time) ([]*scout.RepoInfo, error)
}

// RepositoryStore reads organizations and persists their repositories.
type RepositoryStore interface {
	ListOrganizationRefs(ctx context.Context) ([]*database.OrganizationRef, error)
	UpsertRepositories(ctx context.Context, repos []*database.UpsertRepositoryArgs) ([]*database.UpsertRepositoryResult, error)
}

// RepositoriesStage fetches each organization's active repositories from
// GitHub and upserts them, keyed by GitHub id.
type RepositoriesStage struct {
	Source      RepoSource
	Store       RepositoryStore
	EntityDelay time.Duration

	now func() time.Time
}

func (s *RepositoriesStage) Name() string { return "repositories" }

func (s *RepositoriesStage) Run(ctx context.Context) *StageResult {
	res := newResult(s.Name())
	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	orgs, err := s.Store.ListOrganizationRefs(ctx)
	if err != nil {
		return res.fail("failed to list organizations: %v", err)
	}
	if len(orgs) == 0 {
		return res.fail("no organizations found; run the organizations stage first")
	}
	for _, org := range orgs {
		if org.GitHubURL == "" {
			slog.DebugContext(ctx, "Skipping organization without GitHub URL", "slug", org.Slug)
			res.Skipped++
			continue
		}
		owner, err := scout.ExtractGitHubOwnerFromURL(org.GitHubURL)
		if err != nil {
			slog.WarnContext(ctx, "Skipping organization with invalid GitHub URL",
				"slug", org.Slug, "url", org.GitHubURL)
			res.Skipped++
			continue
		}
		repos, err := s.Source.ListOrgRepos(ctx, owner, nowFn().Add(-activeRepoWindow))
		if err != nil {
			slog.WarnContext(ctx, "Failed to list repositories", "slug", org.Slug, "owner", owner, "error", err)
			res.recordError("organization %s: %v", org.Slug, err)
			continue
		}
		// Some directory entries link a single repository instead of the
		// whole account. Track only that repository when they do.
		if _, repoName, rerr := scout.ExtractGitHubRepoFromURL(org.GitHubURL); rerr == nil {
			fullName := strings.ToLower(owner + "/" + repoName)
			kept := repos[:0]
			for _, r := range repos {
				if strings.ToLower(r.FullName) == fullName {
					kept = append(kept, r)
				}
			}
			repos = kept
		}
		args := make([]*database.UpsertRepositoryArgs, 0, len(repos))
		for _, r := range repos {
			args = append(args, &database.UpsertRepositoryArgs{
				OrganizationID:  org.ID,
				GitHubID:        r.GitHubID,
				Name:            r.Name,
				FullName:        r.FullName,
				Description:     r.Description,
				HTMLURL:         r.HTMLURL,
				StarsCount:      int32(r.Stars),
				ForksCount:      int32(r.Forks),
				OpenIssuesCount: int32(r.OpenIssues),
				WatchersCount:   int32(r.Watchers),
				PrimaryLanguage: r.PrimaryLanguage,
				Topics:          r.Topics,
				LastPushAt:      r.PushedAt,
			})
		}
		out, err := s.Store.UpsertRepositories(ctx, args)
		if err != nil {
			slog.WarnContext(ctx, "Failed to upsert repositories", "slug", org.Slug, "error", err)
			res.recordError("organization %s: %v", org.Slug, err)
			continue
		}
		res.Total += len(repos)
		for _, o := range out {
			if o.Inserted {
				res.Added++
			} else {
				res.Updated++
			}
		}
		pause(ctx, s.EntityDelay)
	}
	res.Success = true
	res.Message = describeUpserts(res)
	return res
}
