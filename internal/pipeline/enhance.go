package pipeline

import (
	"context"
	"log/slog"
	"time"

	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/scout"
)

// OrgLinksSource supplies outbound links from organization detail pages.
type OrgLinksSource interface {
	FetchOrgLinks(ctx context.Context, slug string) (*scout.OrgLinks, error)
}

// OrgLinksStore reads organizations and persists their discovered links.
type OrgLinksStore interface {
	ListOrganizationRefs(ctx context.Context) ([]*database.OrganizationRef, error)
	UpdateOrganizationLinks(ctx context.Context, args *database.UpdateOrganizationLinksArgs) error
}

// EnhanceStage visits each organization's detail page and fills in GitHub,
// website and ideas-page URLs the listing page does not carry.
type EnhanceStage struct {
	Source      OrgLinksSource
	Store       OrgLinksStore
	EntityDelay time.Duration
}

func (s *EnhanceStage) Name() string { return "enhance" }

func (s *EnhanceStage) Run(ctx context.Context) *StageResult {
	res := newResult(s.Name())
	orgs, err := s.Store.ListOrganizationRefs(ctx)
	if err != nil {
		return res.fail("failed to list organizations: %v", err)
	}
	if len(orgs) == 0 {
		return res.fail("no organizations found; run the organizations stage first")
	}
	res.Total = len(orgs)
	for _, org := range orgs {
		links, err := s.Source.FetchOrgLinks(ctx, org.Slug)
		if err != nil {
			slog.WarnContext(ctx, "Failed to fetch organization links", "slug", org.Slug, "error", err)
			res.recordError("organization %s: %v", org.Slug, err)
			continue
		}
		if links.GitHubURL == "" && links.WebsiteURL == "" && links.IdeasPageURL == "" {
			res.Skipped++
			continue
		}
		if err := s.Store.UpdateOrganizationLinks(ctx, &database.UpdateOrganizationLinksArgs{
			Slug:         org.Slug,
			GitHubURL:    links.GitHubURL,
			WebsiteURL:   links.WebsiteURL,
			IdeasPageURL: links.IdeasPageURL,
		}); err != nil {
			slog.WarnContext(ctx, "Failed to update organization links", "slug", org.Slug, "error", err)
			res.recordError("organization %s: %v", org.Slug, err)
			continue
		}
		res.Updated++
		pause(ctx, s.EntityDelay)
	}
	res.Success = true
	res.Message = describeLinkUpdates(res)
	return res
}
