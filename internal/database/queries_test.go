package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderListIssuesQueryNoFilters(t *testing.T) {
	sql, args, err := RenderListIssuesQuery(ListIssuesArgs{Limit: 50, Offset: 0})
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE i.state = 'open'")
	assert.NotContains(t, sql, "o.slug =")
	assert.NotContains(t, sql, "jam_factor, 0) <=")
	assert.Contains(t, sql, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{50, 0}, args)
}

func TestRenderListIssuesQueryAllFilters(t *testing.T) {
	maxJam, minScore := 3.0, 6.5
	sql, args, err := RenderListIssuesQuery(ListIssuesArgs{
		OrganizationSlug: "zulip",
		MaxJamFactor:     &maxJam,
		MinScore:         &minScore,
		Difficulty:       "beginner",
		HasBeginnerLabel: true,
		Limit:            20,
		Offset:           40,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "o.slug = $1")
	assert.Contains(t, sql, "COALESCE(i.jam_factor, 0) <= $2")
	assert.Contains(t, sql, "COALESCE(i.opportunity_score, 0) >= $3")
	assert.Contains(t, sql, "i.difficulty = $4")
	assert.Contains(t, sql, "i.has_beginner_label = TRUE")
	assert.Contains(t, sql, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{"zulip", 3.0, 6.5, "beginner", 20, 40}, args)
}

func TestRenderCountIssuesQuerySharesFilters(t *testing.T) {
	maxJam := 4.0
	listSQL, listArgs, err := RenderListIssuesQuery(ListIssuesArgs{MaxJamFactor: &maxJam, Limit: 10})
	require.NoError(t, err)
	countSQL, countArgs, err := RenderCountIssuesQuery(ListIssuesArgs{MaxJamFactor: &maxJam})
	require.NoError(t, err)

	assert.Contains(t, countSQL, "SELECT COUNT(*)")
	assert.Contains(t, countSQL, "COALESCE(i.jam_factor, 0) <= $1")
	assert.NotContains(t, countSQL, "LIMIT")
	// The count query carries the same filter args minus pagination.
	assert.Equal(t, listArgs[:len(listArgs)-2], countArgs)
	assert.Contains(t, listSQL, "ORDER BY i.opportunity_score DESC NULLS LAST")
}

func TestRenderListOrganizationsQuery(t *testing.T) {
	sql, args, err := RenderListOrganizationsQuery(ListOrganizationsArgs{Limit: 50})
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{50, 0}, args)

	sql, args, err = RenderListOrganizationsQuery(ListOrganizationsArgs{
		Search:         "python",
		LongevityBadge: "veteran",
		Limit:          10,
		Offset:         20,
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "(o.name ILIKE $1 OR o.description ILIKE $1)")
	assert.Contains(t, sql, "o.longevity_badge = $2")
	assert.Contains(t, sql, "LIMIT $3 OFFSET $4")
	assert.Equal(t, []any{"%python%", "veteran", 10, 20}, args)
}
