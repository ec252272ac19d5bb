package app

import (
	"net/http"
	"strconv"
	"time"

	"gsocscout.dev/internal/database"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// organizationView is the JSON shape of one organization in the read API.
type organizationView struct {
	Slug                       string   `json:"slug"`
	Name                       string   `json:"name"`
	Description                string   `json:"description"`
	LogoURL                    string   `json:"logoUrl"`
	WebsiteURL                 string   `json:"websiteUrl"`
	GitHubURL                  string   `json:"githubUrl"`
	IdeasPageURL               string   `json:"ideasPageUrl"`
	Category                   string   `json:"category"`
	Technologies               []string `json:"technologies"`
	YearsParticipated          []int32  `json:"yearsParticipated"`
	LongevityYears             int32    `json:"longevityYears"`
	LongevityBadge             string   `json:"longevityBadge"`
	AvgMaintainerResponseHours float64  `json:"avgMaintainerResponseHours"`
}

// issueView is the JSON shape of one scored issue in the read API.
type issueView struct {
	Number             int32      `json:"number"`
	Title              string     `json:"title"`
	HTMLURL            string     `json:"htmlUrl"`
	State              string     `json:"state"`
	Labels             []string   `json:"labels"`
	AuthorLogin        string     `json:"authorLogin"`
	CommentsCount      int32      `json:"commentsCount"`
	AssignmentRequests int32      `json:"assignmentRequests"`
	JamFactor          float64    `json:"jamFactor"`
	FreshnessScore     float64    `json:"freshnessScore"`
	OpportunityScore   float64    `json:"opportunityScore"`
	Difficulty         string     `json:"difficulty"`
	HasBeginnerLabel   bool       `json:"hasBeginnerLabel"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastAnalyzedAt     *time.Time `json:"lastAnalyzedAt"`
	RepoFullName       string     `json:"repoFullName"`
	OrganizationSlug   string     `json:"organizationSlug"`
	OrganizationName   string     `json:"organizationName"`
}

func toOrganizationView(o *database.Organization) organizationView {
	return organizationView{
		Slug:                       o.Slug,
		Name:                       o.Name,
		Description:                o.Description,
		LogoURL:                    o.LogoURL,
		WebsiteURL:                 o.WebsiteURL,
		GitHubURL:                  o.GitHubURL,
		IdeasPageURL:               o.IdeasPageURL,
		Category:                   o.Category,
		Technologies:               o.Technologies,
		YearsParticipated:          o.YearsParticipated,
		LongevityYears:             o.LongevityYears,
		LongevityBadge:             o.LongevityBadge,
		AvgMaintainerResponseHours: o.AvgMaintainerResponseHours,
	}
}

func toIssueView(i *database.Issue) issueView {
	return issueView{
		Number:             i.Number,
		Title:              i.Title,
		HTMLURL:            i.HTMLURL,
		State:              i.State,
		Labels:             i.Labels,
		AuthorLogin:        i.AuthorLogin,
		CommentsCount:      i.CommentsCount,
		AssignmentRequests: i.AssignmentRequests,
		JamFactor:          i.JamFactor,
		FreshnessScore:     i.FreshnessScore,
		OpportunityScore:   i.OpportunityScore,
		Difficulty:         i.Difficulty,
		HasBeginnerLabel:   i.HasBeginnerLabel,
		CreatedAt:          i.CreatedAtGitHub,
		LastAnalyzedAt:     i.LastAnalyzedAt,
		RepoFullName:       i.RepoFullName,
		OrganizationSlug:   i.OrganizationSlug,
		OrganizationName:   i.OrganizationName,
	}
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := database.ListOrganizationsArgs{
		Search:         q.Get("search"),
		LongevityBadge: q.Get("badge"),
		Limit:          parsePageSize(q.Get("limit")),
		Offset:         parseOffset(q.Get("offset")),
	}
	orgs, err := s.cs.Database().ListOrganizations(r.Context(), args)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]organizationView, 0, len(orgs))
	for _, o := range orgs {
		views = append(views, toOrganizationView(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"organizations": views,
		"count":         len(views),
	})
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := database.ListIssuesArgs{
		OrganizationSlug: q.Get("org"),
		Difficulty:       q.Get("difficulty"),
		HasBeginnerLabel: q.Get("beginner") == "true",
		Limit:            parsePageSize(q.Get("limit")),
		Offset:           parseOffset(q.Get("offset")),
	}
	if v := q.Get("maxJamFactor"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "maxJamFactor must be a number")
			return
		}
		args.MaxJamFactor = &f
	}
	if v := q.Get("minScore"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "minScore must be a number")
			return
		}
		args.MinScore = &f
	}

	db := s.cs.Database()
	issues, err := db.ListIssues(r.Context(), args)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := db.CountIssues(r.Context(), args)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]issueView, 0, len(issues))
	for _, i := range issues {
		views = append(views, toIssueView(i))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issues": views,
		"total":  total,
		"limit":  args.Limit,
		"offset": args.Offset,
	})
}

func parsePageSize(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	return min(n, maxPageSize)
}

func parseOffset(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
