package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

type stubRepoSource struct {
	repos       map[string][]*scout.RepoInfo
	failOn      map[string]error
	pushedSince map[string]time.Time
}

func (s *stubRepoSource) ListOrgRepos(ctx context.Context, org string, pushedSince time.Time) ([]*scout.RepoInfo, error) {
	if s.pushedSince == nil {
		s.pushedSince = make(map[string]time.Time)
	}
	s.pushedSince[org] = pushedSince
	if err := s.failOn[org]; err != nil {
		return nil, err
	}
	return s.repos[org], nil
}

type stubRepoStore struct {
	refs     []*database.OrganizationRef
	upserted []*database.UpsertRepositoryArgs
	inserted map[int64]bool
}

func (s *stubRepoStore) ListOrganizationRefs(ctx context.Context) ([]*database.OrganizationRef, error) {
	return s.refs, nil
}

func (s *stubRepoStore) UpsertRepositories(ctx context.Context, repos []*database.UpsertRepositoryArgs) ([]*database.UpsertRepositoryResult, error) {
	var out []*database.UpsertRepositoryResult
	for _, r := range repos {
		s.upserted = append(s.upserted, r)
		out = append(out, &database.UpsertRepositoryResult{
			ID:       int64(len(s.upserted)),
			GitHubID: r.GitHubID,
			Inserted: s.inserted[r.GitHubID],
		})
	}
	return out, nil
}

func TestRepositoriesStage(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	store := &stubRepoStore{
		refs: []*database.OrganizationRef{
			{ID: 1, Slug: "zulip", GitHubURL: "https://github.com/zulip"},
			{ID: 2, Slug: "no-github"},
			{ID: 3, Slug: "bad-url", GitHubURL: "https://example.com/whatever"},
		},
		inserted: map[int64]bool{100: true},
	}
	source := &stubRepoSource{repos: map[string][]*scout.RepoInfo{
		"zulip": {
			{GitHubID: 100, Name: "zulip", FullName: "zulip/zulip", Stars: 20000},
			{GitHubID: 101, Name: "zulip-mobile", FullName: "zulip/zulip-mobile"},
		},
	}}

	stage := &RepositoriesStage{Source: source, Store: store, now: func() time.Time { return now }}
	res := stage.Run(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	// Organizations without a usable GitHub URL are skipped quietly.
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, store.upserted, 2)
	assert.Equal(t, int64(1), store.upserted[0].OrganizationID)

	// Only repositories active in the last six months are requested.
	assert.Equal(t, now.Add(-activeRepoWindow), source.pushedSince["zulip"])
}

func TestRepositoriesStageNarrowsSingleRepoLinks(t *testing.T) {
	store := &stubRepoStore{refs: []*database.OrganizationRef{
		{ID: 1, Slug: "zulip", GitHubURL: "https://github.com/zulip/zulip"},
	}}
	source := &stubRepoSource{repos: map[string][]*scout.RepoInfo{
		"zulip": {
			{GitHubID: 100, Name: "zulip", FullName: "zulip/zulip"},
			{GitHubID: 101, Name: "zulip-mobile", FullName: "zulip/zulip-mobile"},
		},
	}}

	res := (&RepositoriesStage{Source: source, Store: store}).Run(context.Background())

	require.True(t, res.Success)
	// A repository link keeps only the linked repository, not every
	// repository under the same account.
	assert.Equal(t, 1, res.Total)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "zulip/zulip", store.upserted[0].FullName)
}

func TestRepositoriesStageIsolatesFetchFailures(t *testing.T) {
	store := &stubRepoStore{refs: []*database.OrganizationRef{
		{ID: 1, Slug: "broken", GitHubURL: "https://github.com/broken"},
		{ID: 2, Slug: "zulip", GitHubURL: "https://github.com/zulip"},
	}}
	source := &stubRepoSource{
		repos:  map[string][]*scout.RepoInfo{"zulip": {{GitHubID: 100, FullName: "zulip/zulip"}}},
		failOn: map[string]error{"broken": errors.New("rate limited")},
	}

	res := (&RepositoriesStage{Source: source, Store: store}).Run(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Len(t, store.upserted, 1)
}

func TestRepositoriesStageRequiresOrganizations(t *testing.T) {
	res := (&RepositoriesStage{Source: &stubRepoSource{}, Store: &stubRepoStore{}}).Run(context.Background())

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "run the organizations stage first")
}
