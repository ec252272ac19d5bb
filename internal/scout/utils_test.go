package scout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractGitHubRepoFromURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/apache/kafka", "apache", "kafka", false},
		{"https://github.com/apache/kafka/issues/42", "apache", "kafka", false},
		{"github.com/zulip/zulip", "zulip", "zulip", false},
		{"https://gitlab.com/apache/kafka", "", "", true},
		{"https://github.com/apache", "", "", true},
		{"https://github.com/apache/", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ExtractGitHubRepoFromURL(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.wantOwner, owner)
		assert.Equal(t, tt.wantRepo, repo)
	}
}

func TestExtractGitHubOwnerFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/apache", "apache", false},
		{"https://github.com/apache/kafka", "apache", false},
		{"github.com/python", "python", false},
		{"https://example.com/apache", "", true},
		{"https://github.com/", "", true},
	}
	for _, tt := range tests {
		owner, err := ExtractGitHubOwnerFromURL(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, owner)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"The Apache Software Foundation", "the-apache-software-foundation"},
		{"52°North", "52-north"},
		{"  Python  ", "python"},
		{"C++ Alliance", "c-alliance"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), tt.name)
	}
}

func TestParseYears(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	years := ParseYears("Participated in 2016, 2016, 2020 and 2024.", now)
	assert.Equal(t, []int32{2016, 2020, 2024}, years)

	// Out-of-range years are dropped: before the program existed or in the
	// future.
	years = ParseYears("Founded 2001, joined 2005, roadmap for 2030", now)
	assert.Equal(t, []int32{2005}, years)

	assert.Empty(t, ParseYears("no years here", now))
}
