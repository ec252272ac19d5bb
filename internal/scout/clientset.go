package scout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gsocscout.dev/internal/config"
	"gsocscout.dev/internal/database"
)

// ClientSet aggregates the external collaborators of the pipeline.
type ClientSet struct {
	db   *database.Database
	opts ClientSetOptions
}

// ClientSetOptions holds configuration for initializing a ClientSet.
type ClientSetOptions struct {
	github       []GitHubClientOption
	directoryURL string
}

// ClientSetOption applies a configuration to ClientSetOptions.
type ClientSetOption func(*ClientSetOptions)

// WithGitHubOptions forwards GitHub client options into the ClientSet configuration.
func WithGitHubOptions(opts ...GitHubClientOption) ClientSetOption {
	return func(o *ClientSetOptions) { o.github = append(o.github, opts...) }
}

// WithDirectoryURL sets the base URL of the organization directory site.
func WithDirectoryURL(url string) ClientSetOption {
	return func(o *ClientSetOptions) { o.directoryURL = url }
}

// NewForConfig builds a ClientSet from cfg: the Postgres pool, a GitHub
// client authenticated when a token is configured, and the directory scraper.
func NewForConfig(cfg *config.Config) (*ClientSet, error) {
	opts := []ClientSetOption{WithDirectoryURL(cfg.GetOrgDirectoryURL())}
	if token := cfg.GetGitHubToken(); token != "" {
		opts = append(opts, WithGitHubOptions(
			WithToken(token),
			WithLimiter(NewGitHubLimiter(true)),
		))
	}
	db, err := database.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewClientSet(db, opts...), nil
}

// NewClientSet constructs a ClientSet with the given database and options.
func NewClientSet(db *database.Database, opts ...ClientSetOption) *ClientSet {
	var o ClientSetOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &ClientSet{db: db, opts: o}
}

// Database returns the configured persistence layer.
func (cs *ClientSet) Database() *database.Database { return cs.db }

// GitHub returns a configured GitHub client.
func (cs *ClientSet) GitHub() *GitHubClient {
	return NewGitHubClient(cs.opts.github...)
}

// Directory returns a configured directory scraper.
func (cs *ClientSet) Directory() *DirectoryClient {
	return NewDirectoryClient(cs.opts.directoryURL)
}

func (cs *ClientSet) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// Ping verifies that the database and the GitHub API are reachable.
func (cs *ClientSet) Ping(ctx context.Context) error {
	if cs.db == nil {
		return fmt.Errorf("clients not configured")
	}
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error { return cs.db.Ping(ctx) })
	wg.Go(func() error { return cs.GitHub().Ping(ctx) })
	return wg.Wait()
}
