package scout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directoryFixture = `
<html><body>
<a href="/organization/apache-software-foundation/">
  <div class="org-card-container">
    <div class="org-card-logo" style="background-image: url('https://example.com/apache.png')"></div>
    <div class="org-card-name-container">The Apache Software Foundation</div>
    <div class="org-card-description-container">
      Open source software for the public good.
    </div>
    <div class="org-card-category-container">Web</div>
    <span class="org-card-technology">java</span>
    <span class="org-card-technology">python</span>
    <span class="org-card-year">2024</span>
    <span class="org-card-year">2016</span>
    <span class="org-card-year">2024</span>
    <span class="org-card-year">2030</span>
  </div>
</a>
<div class="org-card-container">
  <div class="org-card-name-container">Zulip</div>
  <div class="org-card-description-container">Chat for distributed teams.</div>
  <div class="org-card-category-container">Communication</div>
</div>
<div class="org-card-container">
  <div class="org-card-name-container">X</div>
</div>
</body></html>`

func TestParseDirectory(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	orgs, err := ParseDirectory(strings.NewReader(directoryFixture), now)
	require.NoError(t, err)
	// The one-letter card is dropped.
	require.Len(t, orgs, 2)

	apache := orgs[0]
	assert.Equal(t, "The Apache Software Foundation", apache.Name)
	assert.Equal(t, "apache-software-foundation", apache.Slug)
	assert.Equal(t, "Open source software for the public good.", apache.Description)
	assert.Equal(t, "Web", apache.Category)
	assert.Equal(t, "https://example.com/apache.png", apache.LogoURL)
	assert.Equal(t, []string{"java", "python"}, apache.Technologies)
	// Years are deduplicated, sorted, and bounded by the current year.
	assert.Equal(t, []int32{2016, 2024}, apache.YearsParticipated)

	zulip := orgs[1]
	assert.Equal(t, "Zulip", zulip.Name)
	// No detail link: the slug falls back to the slugified name.
	assert.Equal(t, "zulip", zulip.Slug)
	assert.Empty(t, zulip.Technologies)
	assert.Empty(t, zulip.YearsParticipated)
}

func TestParseDirectoryCapsDescription(t *testing.T) {
	long := strings.Repeat("a", 1500)
	html := `<div class="org-card-container">
		<div class="org-card-name-container">Verbose Org</div>
		<div class="org-card-description-container">` + long + `</div>
	</div>`
	orgs, err := ParseDirectory(strings.NewReader(html), time.Now())
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Len(t, orgs[0].Description, 1000)
}

const orgDetailFixture = `
<html><body>
<a href="https://summerofcode.withgoogle.com/">program</a>
<a href="https://zulip.com/">Website</a>
<a href="github.com/zulip">GitHub</a>
<a href="https://github.com/zulip/zulip">Main repo</a>
<a href="https://gsocorganizations.dev/ideas/zulip.html">Ideas</a>
</body></html>`

func TestParseOrgLinks(t *testing.T) {
	links, err := ParseOrgLinks(strings.NewReader(orgDetailFixture), "https://gsocorganizations.dev")
	require.NoError(t, err)
	// First match of each kind wins; schemeless GitHub links get https.
	assert.Equal(t, "https://github.com/zulip", links.GitHubURL)
	assert.Equal(t, "https://zulip.com/", links.WebsiteURL)
	assert.Equal(t, "https://gsocorganizations.dev/ideas/zulip.html", links.IdeasPageURL)
}

func TestParseOrgLinksRelativeIdeasLink(t *testing.T) {
	html := `<a href="/ideas/zulip.html">Ideas</a>`
	links, err := ParseOrgLinks(strings.NewReader(html), "https://gsocorganizations.dev")
	require.NoError(t, err)
	assert.Empty(t, links.IdeasPageURL)
	assert.Empty(t, links.GitHubURL)
}

func TestParseOrgLinksEmpty(t *testing.T) {
	links, err := ParseOrgLinks(strings.NewReader("<html><body></body></html>"), "https://gsocorganizations.dev")
	require.NoError(t, err)
	assert.Empty(t, links.GitHubURL)
	assert.Empty(t, links.WebsiteURL)
	assert.Empty(t, links.IdeasPageURL)
}
