package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

type stubDirectory struct {
	orgs []*scout.DirectoryOrg
	err  error
}

func (s *stubDirectory) FetchDirectory(ctx context.Context) ([]*scout.DirectoryOrg, error) {
	return s.orgs, s.err
}

type stubOrgStore struct {
	upserted []*database.UpsertOrganizationArgs
	inserted map[string]bool
	failOn   map[string]error
}

func (s *stubOrgStore) UpsertOrganizations(ctx context.Context, orgs []*database.UpsertOrganizationArgs) ([]*database.UpsertOrganizationResult, error) {
	var out []*database.UpsertOrganizationResult
	for _, o := range orgs {
		if err := s.failOn[o.Slug]; err != nil {
			return nil, err
		}
		s.upserted = append(s.upserted, o)
		out = append(out, &database.UpsertOrganizationResult{
			ID:       int64(len(s.upserted)),
			Slug:     o.Slug,
			Inserted: s.inserted[o.Slug],
		})
	}
	return out, nil
}

func TestOrganizationsStage(t *testing.T) {
	dir := &stubDirectory{orgs: []*scout.DirectoryOrg{
		{Name: "Zulip", Slug: "zulip", YearsParticipated: []int32{2019, 2020, 2021, 2022, 2023, 2024, 2025}},
		{Name: "New Org", Slug: "new-org", YearsParticipated: []int32{2026}},
	}}
	store := &stubOrgStore{inserted: map[string]bool{"new-org": true}}

	res := (&OrganizationsStage{Directory: dir, Store: store}).Run(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	assert.Zero(t, res.ErrorCount)

	require.Len(t, store.upserted, 2)
	zulip := store.upserted[0]
	assert.Equal(t, int32(7), zulip.LongevityYears)
	assert.Equal(t, "veteran", zulip.LongevityBadge)
	assert.Equal(t, "newcomer", store.upserted[1].LongevityBadge)
}

func TestOrganizationsStageIsolatesEntityFailures(t *testing.T) {
	dir := &stubDirectory{orgs: []*scout.DirectoryOrg{
		{Name: "Broken", Slug: "broken"},
		{Name: "Fine", Slug: "fine"},
	}}
	store := &stubOrgStore{failOn: map[string]error{"broken": errors.New("constraint violation")}}

	res := (&OrganizationsStage{Directory: dir, Store: store}).Run(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Len(t, store.upserted, 1)
	assert.Equal(t, "fine", store.upserted[0].Slug)
}

func TestOrganizationsStageFailsWhenDirectoryUnreachable(t *testing.T) {
	dir := &stubDirectory{err: errors.New("connection refused")}
	res := (&OrganizationsStage{Directory: dir, Store: &stubOrgStore{}}).Run(context.Background())

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "failed to fetch organization directory")
}
