package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gsocscout.dev/internal/config"
	dbpgx "gsocscout.dev/internal/database/pgx"
)

// OrganizationRef is the minimal organization view the pipeline iterates over.
type OrganizationRef struct {
	ID        int64
	Slug      string
	Name      string
	GitHubURL string
}

// Organization is the read-API view of an organization row.
type Organization struct {
	ID                         int64
	Slug                       string
	Name                       string
	Description                string
	LogoURL                    string
	WebsiteURL                 string
	GitHubURL                  string
	IdeasPageURL               string
	Category                   string
	Technologies               []string
	YearsParticipated          []int32
	LongevityYears             int32
	LongevityBadge             string
	AvgMaintainerResponseHours float64
}

// Repository is the pipeline view of a repository row.
type Repository struct {
	ID               int64
	OrganizationID   int64
	GitHubID         int64
	Name             string
	FullName         string
	StarsCount       int32
	LastPushAt       *time.Time
	CommitsLastMonth int32
}

// OpenIssue is the minimal issue view the comments stage iterates over.
type OpenIssue struct {
	ID            int64
	RepositoryID  int64
	GitHubID      int64
	Number        int32
	CommentsCount int32
	RepoFullName  string
}

// IssueContext joins an open issue with the repository and organization
// fields the opportunity analysis consumes.
type IssueContext struct {
	ID                         int64
	Number                     int32
	CommentsCount              int32
	BodyLength                 int32
	HasBeginnerLabel           bool
	JamFactor                  float64
	CreatedAtGitHub            time.Time
	RepoFullName               string
	StarsCount                 int32
	LastPushAt                 *time.Time
	CommitsLastMonth           int32
	OrgLongevityYears          int32
	AvgMaintainerResponseHours float64
}

// IssueComment is a persisted comment row.
type IssueComment struct {
	ID              int64
	IssueID         int64
	GitHubID        int64
	AuthorLogin     *string
	Body            *string
	CreatedAtGitHub time.Time
}

// Issue is the read-API view of a scored issue joined with its context.
type Issue struct {
	ID                 int64
	GitHubID           int64
	Number             int32
	Title              string
	HTMLURL            string
	State              string
	Labels             []string
	AuthorLogin        string
	CommentsCount      int32
	AssignmentRequests int32
	JamFactor          float64
	FreshnessScore     float64
	OpportunityScore   float64
	Difficulty         string
	HasBeginnerLabel   bool
	CreatedAtGitHub    time.Time
	LastAnalyzedAt     *time.Time
	RepoFullName       string
	OrganizationSlug   string
	OrganizationName   string
}

type Database struct {
	pg *pgxpool.Pool
}

// NewForConfig constructs a Database using the provided config.
func NewForConfig(cfg *config.Config) (*Database, error) {
	pg, err := dbpgx.NewClientForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(pg), nil
}

// NewClient constructs a Database using the provided pgx pool.
func NewClient(pg *pgxpool.Pool) *Database { return &Database{pg: pg} }

// Ping verifies the provided database connection is available
func (db *Database) Ping(ctx context.Context) error {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.Ping")
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	return db.pg.Ping(ctx)
}

func (db *Database) Close() error {
	if db.pg == nil {
		return nil
	}
	db.pg.Close()
	return nil
}

// UpsertOrganizations upserts organizations keyed by slug.
func (db *Database) UpsertOrganizations(
	ctx context.Context,
	orgs []*UpsertOrganizationArgs,
) ([]*UpsertOrganizationResult, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpsertOrganizations")
	span.SetAttributes(attribute.Int("orgs_len", len(orgs)))
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if len(orgs) == 0 {
		return nil, nil
	}
	b := &pgx.Batch{}
	for i := range orgs {
		b.Queue(UpsertOrganizationQuery,
			orgs[i].Slug, orgs[i].Name, orgs[i].Description, orgs[i].LogoURL,
			orgs[i].Category, orgs[i].Technologies, orgs[i].YearsParticipated,
			orgs[i].LongevityYears, orgs[i].LongevityBadge, orgs[i].AvgMaintainerResponseHours,
		)
	}
	slog.DebugContext(ctx, "upsert organizations queued", "count", len(orgs))
	br := db.pg.SendBatch(ctx, b)
	defer br.Close()
	out := make([]*UpsertOrganizationResult, 0, len(orgs))
	for i := range orgs {
		var id int64
		var inserted bool
		if err := br.QueryRow().Scan(&id, &inserted); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("upsert organization %q failed: %w", orgs[i].Slug, err)
		}
		out = append(out, &UpsertOrganizationResult{ID: id, Slug: orgs[i].Slug, Inserted: inserted})
	}
	return out, nil
}

// UpdateOrganizationLinks sets github/website/ideas URLs for an organization.
// Empty values leave the existing column untouched.
func (db *Database) UpdateOrganizationLinks(ctx context.Context, args *UpdateOrganizationLinksArgs) error {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpdateOrganizationLinks")
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	_, err := db.pg.Exec(ctx, UpdateOrganizationLinksQuery,
		args.Slug, args.GitHubURL, args.WebsiteURL, args.IdeasPageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update organization links for %q failed: %w", args.Slug, err)
	}
	return nil
}

// ListOrganizationRefs returns all organizations in pipeline iteration order.
func (db *Database) ListOrganizationRefs(ctx context.Context) ([]*OrganizationRef, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListOrganizationRefs")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	rows, err := db.pg.Query(ctx, ListOrganizationRefsQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list organization refs failed: %w", err)
	}
	defer rows.Close()
	refs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[OrganizationRef])
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// ListOrganizations returns the filtered, paginated organization listing.
func (db *Database) ListOrganizations(ctx context.Context, args ListOrganizationsArgs) ([]*Organization, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListOrganizations")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	query, qargs, err := RenderListOrganizationsQuery(args)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "list organizations query", "sql", query, "args_len", len(qargs))
	rows, err := db.pg.Query(ctx, query, qargs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list organizations query failed: %w", err)
	}
	defer rows.Close()
	var out []*Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(
			&o.ID, &o.Slug, &o.Name, &o.Description, &o.LogoURL, &o.WebsiteURL,
			&o.GitHubURL, &o.IdeasPageURL, &o.Category, &o.Technologies,
			&o.YearsParticipated, &o.LongevityYears, &o.LongevityBadge,
			&o.AvgMaintainerResponseHours,
		); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// UpsertRepositories upserts repositories keyed by GitHub id.
func (db *Database) UpsertRepositories(
	ctx context.Context,
	repos []*UpsertRepositoryArgs,
) ([]*UpsertRepositoryResult, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpsertRepositories")
	span.SetAttributes(attribute.Int("repos_len", len(repos)))
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if len(repos) == 0 {
		return nil, nil
	}
	b := &pgx.Batch{}
	for i := range repos {
		b.Queue(UpsertRepositoryQuery,
			repos[i].OrganizationID, repos[i].GitHubID, repos[i].Name, repos[i].FullName,
			repos[i].Description, repos[i].HTMLURL, repos[i].StarsCount, repos[i].ForksCount,
			repos[i].OpenIssuesCount, repos[i].WatchersCount, repos[i].PrimaryLanguage,
			repos[i].Topics, repos[i].LastPushAt, repos[i].CommitsLastMonth,
		)
	}
	slog.DebugContext(ctx, "upsert repositories queued", "count", len(repos))
	br := db.pg.SendBatch(ctx, b)
	defer br.Close()
	out := make([]*UpsertRepositoryResult, 0, len(repos))
	for i := range repos {
		var id int64
		var inserted bool
		if err := br.QueryRow().Scan(&id, &inserted); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("upsert repository %q failed: %w", repos[i].FullName, err)
		}
		out = append(out, &UpsertRepositoryResult{ID: id, GitHubID: repos[i].GitHubID, Inserted: inserted})
	}
	return out, nil
}

// ListRepositories returns all repositories in pipeline iteration order.
func (db *Database) ListRepositories(ctx context.Context) ([]*Repository, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListRepositories")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	rows, err := db.pg.Query(ctx, ListRepositoriesQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list repositories failed: %w", err)
	}
	defer rows.Close()
	repos, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[Repository])
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// UpsertIssues upserts issues keyed by GitHub id.
func (db *Database) UpsertIssues(
	ctx context.Context,
	issues []*UpsertIssueArgs,
) ([]*UpsertIssueResult, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpsertIssues")
	span.SetAttributes(attribute.Int("issues_len", len(issues)))
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if len(issues) == 0 {
		return nil, nil
	}
	b := &pgx.Batch{}
	for i := range issues {
		b.Queue(UpsertIssueQuery,
			issues[i].RepositoryID, issues[i].GitHubID, issues[i].Number, issues[i].Title,
			issues[i].Body, issues[i].HTMLURL, issues[i].State, issues[i].Labels,
			issues[i].Assignees, issues[i].AuthorLogin, issues[i].CommentsCount,
			issues[i].ReactionsCount, issues[i].HasBeginnerLabel, issues[i].HasHelpWantedLabel,
			issues[i].HasGsocLabel, issues[i].CreatedAtGitHub, issues[i].UpdatedAtGitHub,
		)
	}
	slog.DebugContext(ctx, "upsert issues queued", "count", len(issues))
	br := db.pg.SendBatch(ctx, b)
	defer br.Close()
	out := make([]*UpsertIssueResult, 0, len(issues))
	for i := range issues {
		var id int64
		var inserted bool
		if err := br.QueryRow().Scan(&id, &inserted); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("upsert issue #%d failed: %w", issues[i].Number, err)
		}
		out = append(out, &UpsertIssueResult{ID: id, GitHubID: issues[i].GitHubID, Inserted: inserted})
	}
	return out, nil
}

// MarkIssuesClosedExcept closes previously-open issues of a repository that are
// absent from a fresh open-issues fetch. Returns the number of issues closed.
func (db *Database) MarkIssuesClosedExcept(ctx context.Context, repositoryID int64, openGitHubIDs []int64) (int64, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.MarkIssuesClosedExcept")
	span.SetAttributes(attribute.Int64("repository_id", repositoryID))
	defer span.End()
	if db.pg == nil {
		return 0, fmt.Errorf("database connection not available")
	}
	if openGitHubIDs == nil {
		openGitHubIDs = []int64{}
	}
	tag, err := db.pg.Exec(ctx, MarkIssuesClosedExceptQuery, repositoryID, openGitHubIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("mark issues closed failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListOpenIssues returns all open issues joined with their repository name.
func (db *Database) ListOpenIssues(ctx context.Context) ([]*OpenIssue, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListOpenIssues")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	rows, err := db.pg.Query(ctx, ListOpenIssuesQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list open issues failed: %w", err)
	}
	defer rows.Close()
	issues, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[OpenIssue])
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// ListOpenIssueContexts returns open issues joined with repository and
// organization scoring inputs.
func (db *Database) ListOpenIssueContexts(ctx context.Context) ([]*IssueContext, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListOpenIssueContexts")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	rows, err := db.pg.Query(ctx, ListOpenIssueContextsQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list open issue contexts failed: %w", err)
	}
	defer rows.Close()
	ctxs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[IssueContext])
	if err != nil {
		return nil, err
	}
	return ctxs, nil
}

// UpsertIssueComments upserts comments keyed by GitHub id.
func (db *Database) UpsertIssueComments(ctx context.Context, comments []*UpsertIssueCommentArgs) error {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpsertIssueComments")
	span.SetAttributes(attribute.Int("comments_len", len(comments)))
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	if len(comments) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for i := range comments {
		b.Queue(UpsertIssueCommentQuery,
			comments[i].IssueID, comments[i].GitHubID, comments[i].AuthorLogin,
			comments[i].Body, comments[i].CreatedAtGitHub,
		)
	}
	br := db.pg.SendBatch(ctx, b)
	defer br.Close()
	for range comments {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("upsert issue comment failed: %w", err)
		}
	}
	return nil
}

// ListCommentsByIssue returns the full persisted comment set for an issue in
// chronological order.
func (db *Database) ListCommentsByIssue(ctx context.Context, issueID int64) ([]*IssueComment, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListCommentsByIssue")
	span.SetAttributes(attribute.Int64("issue_id", issueID))
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	rows, err := db.pg.Query(ctx, CommentsByIssueIDQuery, issueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	defer rows.Close()
	comments, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[IssueComment])
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateIssueJamFactor writes the jam analysis result for an issue. The score
// and last_analyzed_at are set in the same statement.
func (db *Database) UpdateIssueJamFactor(ctx context.Context, issueID int64, assignmentRequests int32, jamFactor float64) error {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpdateIssueJamFactor")
	span.SetAttributes(attribute.Int64("issue_id", issueID))
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	if _, err := db.pg.Exec(ctx, UpdateIssueJamFactorQuery, issueID, assignmentRequests, jamFactor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update jam factor failed: %w", err)
	}
	return nil
}

// UpdateIssueScores writes the freshness/opportunity scores and difficulty for
// an issue. The scores and last_analyzed_at are set in the same statement.
func (db *Database) UpdateIssueScores(ctx context.Context, issueID int64, freshness, opportunity float64, difficulty string) error {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.UpdateIssueScores")
	span.SetAttributes(attribute.Int64("issue_id", issueID))
	defer span.End()
	if db.pg == nil {
		return fmt.Errorf("database connection not available")
	}
	if _, err := db.pg.Exec(ctx, UpdateIssueScoresQuery, issueID, freshness, opportunity, difficulty); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update issue scores failed: %w", err)
	}
	return nil
}

// ListIssues returns the filtered, paginated issue listing for the read API.
func (db *Database) ListIssues(ctx context.Context, args ListIssuesArgs) ([]*Issue, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.ListIssues")
	defer span.End()
	if db.pg == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	query, qargs, err := RenderListIssuesQuery(args)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "list issues query", "sql", query, "args_len", len(qargs))
	rows, err := db.pg.Query(ctx, query, qargs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list issues query failed: %w", err)
	}
	defer rows.Close()
	var out []*Issue
	for rows.Next() {
		var i Issue
		if err := rows.Scan(
			&i.ID, &i.GitHubID, &i.Number, &i.Title, &i.HTMLURL, &i.State, &i.Labels,
			&i.AuthorLogin, &i.CommentsCount, &i.AssignmentRequests,
			&i.JamFactor, &i.FreshnessScore, &i.OpportunityScore,
			&i.Difficulty, &i.HasBeginnerLabel, &i.CreatedAtGitHub, &i.LastAnalyzedAt,
			&i.RepoFullName, &i.OrganizationSlug, &i.OrganizationName,
		); err != nil {
			return nil, err
		}
		out = append(out, &i)
	}
	return out, rows.Err()
}

// CountIssues returns the total row count for the same filters as ListIssues.
func (db *Database) CountIssues(ctx context.Context, args ListIssuesArgs) (int64, error) {
	tracer := otel.Tracer("gsocscout/database")
	ctx, span := tracer.Start(ctx, "Database.CountIssues")
	defer span.End()
	if db.pg == nil {
		return 0, fmt.Errorf("database connection not available")
	}
	query, qargs, err := RenderCountIssuesQuery(args)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := db.pg.QueryRow(ctx, query, qargs...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("count issues query failed: %w", err)
	}
	return total, nil
}
