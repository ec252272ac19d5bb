package scout

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestGitHubClient(t *testing.T, handler http.Handler) *GitHubClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewGitHubClient(WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.c.BaseURL = base
	return c
}

func TestListTargetIssuesPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/zulip/zulip/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id": 2, "number": 2, "title": "second", "state": "open",
				"labels": [{"name": "good first issue"}]}]`)
			return
		}
		next := "http://" + r.Host + r.URL.Path + "?page=2"
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
		fmt.Fprint(w, `[
			{"id": 1, "number": 1, "title": "first", "state": "open",
			 "labels": [{"name": "Good First Issue :tada:"}]},
			{"id": 10, "number": 10, "title": "a pull request", "state": "open",
			 "labels": [{"name": "good first issue"}],
			 "pull_request": {"url": "https://example.com/pr/10"}},
			{"id": 11, "number": 11, "title": "no labels", "state": "open"}
		]`)
	})
	client := newTestGitHubClient(t, mux)

	issues, err := client.ListTargetIssues(context.Background(), "zulip", "zulip")
	require.NoError(t, err)

	// The next-page link is followed; pull requests and issues without a
	// target label are dropped along the way.
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, 2, issues[1].Number)
}
