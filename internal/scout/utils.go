package scout

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ExtractGitHubRepoFromURL extracts the owner and repository name from a
// GitHub URL that points at a single repository rather than an account.
func ExtractGitHubRepoFromURL(repoURL string) (owner, repo string, err error) {
	u := repoURL
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	parsedURL, err := url.Parse(u)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %v", err)
	}
	if !strings.EqualFold(parsedURL.Host, "github.com") {
		return "", "", fmt.Errorf("not a GitHub URL")
	}
	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", "", fmt.Errorf("URL does not name a repository")
	}
	return parts[0], parts[1], nil
}

// ExtractGitHubOwnerFromURL extracts the organization or user name from a
// GitHub URL like https://github.com/apache or github.com/apache/kafka.
func ExtractGitHubOwnerFromURL(orgURL string) (string, error) {
	u := orgURL
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	parsedURL, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if !strings.EqualFold(parsedURL.Host, "github.com") {
		return "", fmt.Errorf("not a GitHub URL")
	}
	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		return "", fmt.Errorf("invalid GitHub URL format")
	}
	return parts[0], nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts an organization name into a URL-friendly slug.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// ParseYears extracts distinct plausible GSoC participation years from free
// text, sorted ascending. The program started in 2005.
func ParseYears(text string, now time.Time) []int32 {
	seen := make(map[int32]bool)
	var years []int32
	for _, m := range yearPattern.FindAllString(text, -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if y < 2005 || y > now.Year() {
			continue
		}
		if !seen[int32(y)] {
			seen[int32(y)] = true
			years = append(years, int32(y))
		}
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	return years
}
