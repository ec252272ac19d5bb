package pipeline

import (
	"context"
	"log/slog"

	"gsocscout.dev/internal/analyzer"
	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

// DirectorySource supplies organization cards from the GSoC directory.
type DirectorySource interface {
	FetchDirectory(ctx context.Context) ([]*scout.DirectoryOrg, error)
}

// OrganizationStore persists scraped organizations.
type OrganizationStore interface {
	UpsertOrganizations(ctx context.Context, orgs []*database.UpsertOrganizationArgs) ([]*database.UpsertOrganizationResult, error)
}

// OrganizationsStage scrapes the directory listing and upserts one row per
// organization, keyed by slug.
type OrganizationsStage struct {
	Directory DirectorySource
	Store     OrganizationStore
}

func (s *OrganizationsStage) Name() string { return "organizations" }

func (s *OrganizationsStage) Run(ctx context.Context) *StageResult {
	res := newResult(s.Name())
	orgs, err := s.Directory.FetchDirectory(ctx)
	if err != nil {
		return res.fail("failed to fetch organization directory: %v", err)
	}
	res.Total = len(orgs)
	for _, org := range orgs {
		longevity := len(org.YearsParticipated)
		out, err := s.Store.UpsertOrganizations(ctx, []*database.UpsertOrganizationArgs{{
			Slug:              org.Slug,
			Name:              org.Name,
			Description:       org.Description,
			LogoURL:           org.LogoURL,
			Category:          org.Category,
			Technologies:      org.Technologies,
			YearsParticipated: org.YearsParticipated,
			LongevityYears:    int32(longevity),
			LongevityBadge:    string(analyzer.LongevityBadgeFor(longevity)),
		}})
		if err != nil {
			slog.WarnContext(ctx, "Failed to upsert organization", "slug", org.Slug, "error", err)
			res.recordError("organization %s: %v", org.Slug, err)
			continue
		}
		if len(out) > 0 && out[0].Inserted {
			res.Added++
		} else {
			res.Updated++
		}
	}
	res.Success = true
	res.Message = describeUpserts(res)
	return res
}
