package scout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-github/v75/github"
	"golang.org/x/time/rate"
	"k8s.io/utils/ptr"
)

// NewGitHubLimiter returns a rate limiter tuned for authenticated or unauthenticated GitHub API usage.
func NewGitHubLimiter(authenticated bool) *rate.Limiter {
	var limiter *rate.Limiter
	if authenticated {
		limiter = rate.NewLimiter(rate.Every(time.Hour/5000), 10)
		slog.Info("Created authenticated GitHub rate limiter", "rate", "5000 requests/hour", "burst", 10)
	} else {
		limiter = rate.NewLimiter(rate.Every(time.Hour/60), 1)
		slog.Info("Created unauthenticated GitHub rate limiter", "rate", "60 requests/hour", "burst", 1)
	}
	return limiter
}

// RepoInfo is the subset of GitHub repository metadata the pipeline persists.
type RepoInfo struct {
	GitHubID        int64
	Name            string
	FullName        string
	Description     string
	HTMLURL         string
	Stars           int
	Forks           int
	OpenIssues      int
	Watchers        int
	PrimaryLanguage string
	Topics          []string
	PushedAt        *time.Time
}

// IssueInfo is the subset of GitHub issue metadata the pipeline persists.
type IssueInfo struct {
	GitHubID       int64
	Number         int
	Title          string
	Body           string
	HTMLURL        string
	State          string
	Labels         []string
	Assignees      []string
	AuthorLogin    string
	CommentsCount  int
	ReactionsCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CommentInfo is a single issue comment as fetched from GitHub. Body and
// author may be absent (deleted users, empty bodies).
type CommentInfo struct {
	GitHubID    int64
	AuthorLogin *string
	Body        *string
	CreatedAt   time.Time
}

// GitHubClient wraps the GitHub API client with rate limiting.
type GitHubClient struct {
	c *github.Client
	l *rate.Limiter
}

// GitHubClientOptions configures the GitHub client.
type GitHubClientOptions struct {
	token   string
	limiter *rate.Limiter
}

// GitHubClientOption applies a configuration to GitHubClientOptions.
type GitHubClientOption func(*GitHubClientOptions)

// WithToken sets the personal access token for authenticated requests.
func WithToken(token string) GitHubClientOption {
	return func(o *GitHubClientOptions) { o.token = token }
}

// WithLimiter sets the rate limiter used for API calls.
func WithLimiter(l *rate.Limiter) GitHubClientOption {
	return func(o *GitHubClientOptions) { o.limiter = l }
}

// NewGitHubClient constructs a GitHubClient with the given options.
func NewGitHubClient(opts ...GitHubClientOption) *GitHubClient {
	var o GitHubClientOptions
	for _, opt := range opts {
		opt(&o)
	}
	limiter := o.limiter
	if limiter == nil {
		limiter = NewGitHubLimiter(o.token != "")
	}
	if o.token != "" {
		slog.Info("Using authenticated GitHub client")
		return &GitHubClient{c: github.NewClient(nil).WithAuthToken(o.token), l: limiter}
	}
	slog.Warn("Using unauthenticated GitHub client (rate limited)")
	return &GitHubClient{c: github.NewClient(nil), l: limiter}
}

// Ping verifies the GitHub API is reachable.
func (c *GitHubClient) Ping(ctx context.Context) error {
	if err := c.l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	if _, _, err := c.c.RateLimit.Get(ctx); err != nil {
		return fmt.Errorf("github api unreachable: %w", err)
	}
	return nil
}

// ListOrgRepos returns the public repositories of an organization, skipping
// archived and disabled ones and anything not pushed since the cutoff.
func (c *GitHubClient) ListOrgRepos(ctx context.Context, org string, pushedSince time.Time) ([]*RepoInfo, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type:        "public",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var out []*RepoInfo
	for {
		if err := c.l.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
		repos, resp, err := c.c.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repos for org %q: %w", org, err)
		}
		for _, r := range repos {
			if ptr.Deref(r.Archived, false) || ptr.Deref(r.Disabled, false) {
				continue
			}
			if r.PushedAt == nil || r.PushedAt.Time.Before(pushedSince) {
				continue
			}
			pushed := r.PushedAt.Time
			out = append(out, &RepoInfo{
				GitHubID:        ptr.Deref(r.ID, 0),
				Name:            ptr.Deref(r.Name, ""),
				FullName:        ptr.Deref(r.FullName, ""),
				Description:     ptr.Deref(r.Description, ""),
				HTMLURL:         ptr.Deref(r.HTMLURL, ""),
				Stars:           ptr.Deref(r.StargazersCount, 0),
				Forks:           ptr.Deref(r.ForksCount, 0),
				OpenIssues:      ptr.Deref(r.OpenIssuesCount, 0),
				Watchers:        ptr.Deref(r.WatchersCount, 0),
				PrimaryLanguage: ptr.Deref(r.Language, ""),
				Topics:          r.Topics,
				PushedAt:        &pushed,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// ListTargetIssues returns the open issues of a repository carrying at least
// one target label. Pull requests are excluded.
func (c *GitHubClient) ListTargetIssues(ctx context.Context, owner, repo string) ([]*IssueInfo, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var out []*IssueInfo
	for {
		if err := c.l.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
		issues, resp, err := c.c.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
		}
		for _, is := range issues {
			if is.PullRequestLinks != nil {
				continue
			}
			labels := make([]string, 0, len(is.Labels))
			for _, l := range is.Labels {
				labels = append(labels, ptr.Deref(l.Name, ""))
			}
			if !HasTargetLabel(labels) {
				continue
			}
			assignees := make([]string, 0, len(is.Assignees))
			for _, a := range is.Assignees {
				assignees = append(assignees, ptr.Deref(a.Login, ""))
			}
			var reactions int
			if is.Reactions != nil {
				reactions = ptr.Deref(is.Reactions.TotalCount, 0)
			}
			var author string
			if is.User != nil {
				author = ptr.Deref(is.User.Login, "")
			}
			out = append(out, &IssueInfo{
				GitHubID:       ptr.Deref(is.ID, 0),
				Number:         ptr.Deref(is.Number, 0),
				Title:          ptr.Deref(is.Title, ""),
				Body:           ptr.Deref(is.Body, ""),
				HTMLURL:        ptr.Deref(is.HTMLURL, ""),
				State:          ptr.Deref(is.State, "open"),
				Labels:         labels,
				Assignees:      assignees,
				AuthorLogin:    author,
				CommentsCount:  ptr.Deref(is.Comments, 0),
				ReactionsCount: reactions,
				CreatedAt:      is.GetCreatedAt().Time,
				UpdatedAt:      is.GetUpdatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return out, nil
}

// ListIssueComments returns the full comment set of an issue in chronological
// order. Callers should skip issues known to have zero comments.
func (c *GitHubClient) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*CommentInfo, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var out []*CommentInfo
	for {
		if err := c.l.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
		comments, resp, err := c.c.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, cm := range comments {
			info := &CommentInfo{
				GitHubID:  ptr.Deref(cm.ID, 0),
				Body:      cm.Body,
				CreatedAt: cm.GetCreatedAt().Time,
			}
			if cm.User != nil {
				info.AuthorLogin = cm.User.Login
			}
			out = append(out, info)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}
