package database

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

type UpsertOrganizationArgs struct {
	Slug                       string
	Name                       string
	Description                string
	LogoURL                    string
	Category                   string
	Technologies               []string
	YearsParticipated          []int32
	LongevityYears             int32
	LongevityBadge             string
	AvgMaintainerResponseHours *float64
}

type UpsertOrganizationResult struct {
	ID       int64
	Slug     string
	Inserted bool
}

type UpdateOrganizationLinksArgs struct {
	Slug         string
	GitHubURL    string
	WebsiteURL   string
	IdeasPageURL string
}

type UpsertRepositoryArgs struct {
	OrganizationID   int64
	GitHubID         int64
	Name             string
	FullName         string
	Description      string
	HTMLURL          string
	StarsCount       int32
	ForksCount       int32
	OpenIssuesCount  int32
	WatchersCount    int32
	PrimaryLanguage  string
	Topics           []string
	LastPushAt       *time.Time
	CommitsLastMonth int32
}

type UpsertRepositoryResult struct {
	ID       int64
	GitHubID int64
	Inserted bool
}

type UpsertIssueArgs struct {
	RepositoryID       int64
	GitHubID           int64
	Number             int32
	Title              string
	Body               string
	HTMLURL            string
	State              string
	Labels             []string
	Assignees          []string
	AuthorLogin        string
	CommentsCount      int32
	ReactionsCount     int32
	HasBeginnerLabel   bool
	HasHelpWantedLabel bool
	HasGsocLabel       bool
	CreatedAtGitHub    time.Time
	UpdatedAtGitHub    time.Time
}

type UpsertIssueResult struct {
	ID       int64
	GitHubID int64
	Inserted bool
}

type UpsertIssueCommentArgs struct {
	IssueID         int64
	GitHubID        int64
	AuthorLogin     string
	Body            string
	CreatedAtGitHub time.Time
}

type ListOrganizationsArgs struct {
	Search         string
	LongevityBadge string
	Limit          int
	Offset         int
}

type ListIssuesArgs struct {
	OrganizationSlug string
	MaxJamFactor     *float64
	MinScore         *float64
	Difficulty       string
	HasBeginnerLabel bool
	Limit            int
	Offset           int
}

var UpsertOrganizationQuery = strings.Join([]string{
	"INSERT INTO organizations (slug, name, description, logo_url, category, technologies,",
	"years_participated, longevity_years, longevity_badge, avg_maintainer_response_hours, last_scraped_at)",
	"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())",
	"ON CONFLICT (slug)",
	"DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,",
	"logo_url = EXCLUDED.logo_url, category = EXCLUDED.category,",
	"technologies = EXCLUDED.technologies, years_participated = EXCLUDED.years_participated,",
	"longevity_years = EXCLUDED.longevity_years, longevity_badge = EXCLUDED.longevity_badge,",
	"avg_maintainer_response_hours = COALESCE(EXCLUDED.avg_maintainer_response_hours, organizations.avg_maintainer_response_hours),",
	"last_scraped_at = NOW(), updated_at = NOW()",
	"RETURNING id, (xmax = 0) AS inserted",
}, " ")

var UpdateOrganizationLinksQuery = strings.Join([]string{
	"UPDATE organizations SET",
	"github_url = COALESCE(NULLIF($2, ''), github_url),",
	"website_url = COALESCE(NULLIF($3, ''), website_url),",
	"ideas_page_url = COALESCE(NULLIF($4, ''), ideas_page_url),",
	"updated_at = NOW()",
	"WHERE slug = $1",
}, " ")

var UpsertRepositoryQuery = strings.Join([]string{
	"INSERT INTO repositories (organization_id, github_id, name, full_name, description, html_url,",
	"stars_count, forks_count, open_issues_count, watchers_count, primary_language, topics,",
	"last_push_at, commits_last_month, last_scraped_at)",
	"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())",
	"ON CONFLICT (github_id)",
	"DO UPDATE SET organization_id = EXCLUDED.organization_id, name = EXCLUDED.name,",
	"full_name = EXCLUDED.full_name, description = EXCLUDED.description, html_url = EXCLUDED.html_url,",
	"stars_count = EXCLUDED.stars_count, forks_count = EXCLUDED.forks_count,",
	"open_issues_count = EXCLUDED.open_issues_count, watchers_count = EXCLUDED.watchers_count,",
	"primary_language = EXCLUDED.primary_language, topics = EXCLUDED.topics,",
	"last_push_at = EXCLUDED.last_push_at, commits_last_month = EXCLUDED.commits_last_month,",
	"last_scraped_at = NOW(), updated_at = NOW()",
	"RETURNING id, (xmax = 0) AS inserted",
}, " ")

var UpsertIssueQuery = strings.Join([]string{
	"INSERT INTO issues (repository_id, github_id, number, title, body, html_url, state, labels,",
	"assignees, author_login, comments_count, reactions_count, has_beginner_label,",
	"has_help_wanted_label, has_gsoc_label, created_at_github, updated_at_github)",
	"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)",
	"ON CONFLICT (github_id)",
	"DO UPDATE SET repository_id = EXCLUDED.repository_id, number = EXCLUDED.number,",
	"title = EXCLUDED.title, body = EXCLUDED.body, html_url = EXCLUDED.html_url,",
	"state = EXCLUDED.state, labels = EXCLUDED.labels, assignees = EXCLUDED.assignees,",
	"author_login = EXCLUDED.author_login, comments_count = EXCLUDED.comments_count,",
	"reactions_count = EXCLUDED.reactions_count, has_beginner_label = EXCLUDED.has_beginner_label,",
	"has_help_wanted_label = EXCLUDED.has_help_wanted_label, has_gsoc_label = EXCLUDED.has_gsoc_label,",
	"created_at_github = EXCLUDED.created_at_github, updated_at_github = EXCLUDED.updated_at_github,",
	"updated_at = NOW()",
	"RETURNING id, (xmax = 0) AS inserted",
}, " ")

var UpsertIssueCommentQuery = strings.Join([]string{
	"INSERT INTO issue_comments (issue_id, github_id, author_login, body, created_at_github)",
	"VALUES ($1, $2, $3, $4, $5)",
	"ON CONFLICT (github_id)",
	"DO UPDATE SET author_login = EXCLUDED.author_login, body = EXCLUDED.body",
	"RETURNING id",
}, " ")

var CommentsByIssueIDQuery = strings.Join([]string{
	"SELECT id, issue_id, github_id, author_login, body, created_at_github",
	"FROM issue_comments",
	"WHERE issue_id = $1",
	"ORDER BY created_at_github ASC",
}, " ")

var ListOrganizationRefsQuery = strings.Join([]string{
	"SELECT o.id, o.slug, o.name, COALESCE(o.github_url, '') FROM organizations o",
	"ORDER BY o.id",
}, " ")

var ListRepositoriesQuery = strings.Join([]string{
	"SELECT r.id, r.organization_id, r.github_id, r.name, r.full_name, r.stars_count,",
	"r.last_push_at, r.commits_last_month",
	"FROM repositories r",
	"ORDER BY r.id",
}, " ")

var ListOpenIssuesQuery = strings.Join([]string{
	"SELECT i.id, i.repository_id, i.github_id, i.number, i.comments_count, r.full_name",
	"FROM issues i JOIN repositories r ON r.id = i.repository_id",
	"WHERE i.state = 'open'",
	"ORDER BY i.id",
}, " ")

var ListOpenIssueContextsQuery = strings.Join([]string{
	"SELECT i.id, i.number, i.comments_count, COALESCE(LENGTH(i.body), 0),",
	"i.has_beginner_label, COALESCE(i.jam_factor, 0), i.created_at_github,",
	"r.full_name, r.stars_count, r.last_push_at, r.commits_last_month,",
	"o.longevity_years, COALESCE(o.avg_maintainer_response_hours, 24)",
	"FROM issues i",
	"JOIN repositories r ON r.id = i.repository_id",
	"JOIN organizations o ON o.id = r.organization_id",
	"WHERE i.state = 'open'",
	"ORDER BY i.id",
}, " ")

var UpdateIssueJamFactorQuery = strings.Join([]string{
	"UPDATE issues SET assignment_requests = $2, jam_factor = $3,",
	"last_analyzed_at = NOW(), updated_at = NOW()",
	"WHERE id = $1",
}, " ")

var UpdateIssueScoresQuery = strings.Join([]string{
	"UPDATE issues SET freshness_score = $2, opportunity_score = $3, difficulty = $4,",
	"last_analyzed_at = NOW(), updated_at = NOW()",
	"WHERE id = $1",
}, " ")

var MarkIssuesClosedExceptQuery = strings.Join([]string{
	"UPDATE issues SET state = 'closed', updated_at = NOW()",
	"WHERE repository_id = $1 AND state = 'open' AND NOT (github_id = ANY($2::bigint[]))",
}, " ")

var listOrganizationsQueryTmpl = template.Must(
	template.New("listOrganizations").Parse(strings.Join([]string{
		"SELECT o.id, o.slug, o.name, o.description, COALESCE(o.logo_url, ''), COALESCE(o.website_url, ''),",
		"COALESCE(o.github_url, ''), COALESCE(o.ideas_page_url, ''), o.category, o.technologies,",
		"o.years_participated, o.longevity_years, o.longevity_badge,",
		"COALESCE(o.avg_maintainer_response_hours, 0)",
		"FROM organizations o",
		"{{if .Where}}WHERE {{.Where}}{{end}}",
		"ORDER BY o.longevity_years DESC, o.name ASC",
		"LIMIT {{.LimitPlaceholder}} OFFSET {{.OffsetPlaceholder}}",
	}, " ")),
)

var listIssuesQueryTmpl = template.Must(
	template.New("listIssues").Parse(strings.Join([]string{
		"SELECT i.id, i.github_id, i.number, i.title, i.html_url, i.state, i.labels,",
		"COALESCE(i.author_login, ''), i.comments_count, i.assignment_requests,",
		"COALESCE(i.jam_factor, 0), COALESCE(i.freshness_score, 0), COALESCE(i.opportunity_score, 0),",
		"COALESCE(i.difficulty, ''), i.has_beginner_label, i.created_at_github, i.last_analyzed_at,",
		"r.full_name, o.slug, o.name",
		"FROM issues i",
		"JOIN repositories r ON r.id = i.repository_id",
		"JOIN organizations o ON o.id = r.organization_id",
		"WHERE {{.Where}}",
		"ORDER BY i.opportunity_score DESC NULLS LAST, i.created_at_github DESC",
		"LIMIT {{.LimitPlaceholder}} OFFSET {{.OffsetPlaceholder}}",
	}, " ")),
)

var countIssuesQueryTmpl = template.Must(
	template.New("countIssues").Parse(strings.Join([]string{
		"SELECT COUNT(*) FROM issues i",
		"JOIN repositories r ON r.id = i.repository_id",
		"JOIN organizations o ON o.id = r.organization_id",
		"WHERE {{.Where}}",
	}, " ")),
)

// renderIssueFilters builds the shared WHERE clause and positional args for
// issue listing and counting.
func renderIssueFilters(args ListIssuesArgs) (string, []any) {
	conds := []string{"i.state = 'open'"}
	var qargs []any
	idx := 1
	if args.OrganizationSlug != "" {
		conds = append(conds, fmt.Sprintf("o.slug = $%d", idx))
		qargs = append(qargs, args.OrganizationSlug)
		idx++
	}
	if args.MaxJamFactor != nil {
		conds = append(conds, fmt.Sprintf("COALESCE(i.jam_factor, 0) <= $%d", idx))
		qargs = append(qargs, *args.MaxJamFactor)
		idx++
	}
	if args.MinScore != nil {
		conds = append(conds, fmt.Sprintf("COALESCE(i.opportunity_score, 0) >= $%d", idx))
		qargs = append(qargs, *args.MinScore)
		idx++
	}
	if args.Difficulty != "" {
		conds = append(conds, fmt.Sprintf("i.difficulty = $%d", idx))
		qargs = append(qargs, args.Difficulty)
		idx++
	}
	if args.HasBeginnerLabel {
		conds = append(conds, "i.has_beginner_label = TRUE")
	}
	return strings.Join(conds, " AND "), qargs
}

// RenderListIssuesQuery builds SQL and args for the filtered issue listing.
func RenderListIssuesQuery(args ListIssuesArgs) (string, []any, error) {
	where, qargs := renderIssueFilters(args)
	limitPlaceholder := fmt.Sprintf("$%d", len(qargs)+1)
	offsetPlaceholder := fmt.Sprintf("$%d", len(qargs)+2)
	qargs = append(qargs, args.Limit, args.Offset)
	var buf bytes.Buffer
	if err := listIssuesQueryTmpl.Execute(&buf, map[string]any{
		"Where":             where,
		"LimitPlaceholder":  limitPlaceholder,
		"OffsetPlaceholder": offsetPlaceholder,
	}); err != nil {
		return "", nil, err
	}
	return buf.String(), qargs, nil
}

// RenderCountIssuesQuery builds SQL and args for counting issues under the same filters.
func RenderCountIssuesQuery(args ListIssuesArgs) (string, []any, error) {
	where, qargs := renderIssueFilters(args)
	var buf bytes.Buffer
	if err := countIssuesQueryTmpl.Execute(&buf, map[string]any{"Where": where}); err != nil {
		return "", nil, err
	}
	return buf.String(), qargs, nil
}

// RenderListOrganizationsQuery builds SQL and args for the filtered organization listing.
func RenderListOrganizationsQuery(args ListOrganizationsArgs) (string, []any, error) {
	var conds []string
	var qargs []any
	idx := 1
	if args.Search != "" {
		conds = append(conds, fmt.Sprintf("(o.name ILIKE $%d OR o.description ILIKE $%d)", idx, idx))
		qargs = append(qargs, "%"+args.Search+"%")
		idx++
	}
	if args.LongevityBadge != "" {
		conds = append(conds, fmt.Sprintf("o.longevity_badge = $%d", idx))
		qargs = append(qargs, args.LongevityBadge)
		idx++
	}
	limitPlaceholder := fmt.Sprintf("$%d", idx)
	offsetPlaceholder := fmt.Sprintf("$%d", idx+1)
	qargs = append(qargs, args.Limit, args.Offset)
	var buf bytes.Buffer
	if err := listOrganizationsQueryTmpl.Execute(&buf, map[string]any{
		"Where":             strings.Join(conds, " AND "),
		"LimitPlaceholder":  limitPlaceholder,
		"OffsetPlaceholder": offsetPlaceholder,
	}); err != nil {
		return "", nil, err
	}
	return buf.String(), qargs, nil
}
