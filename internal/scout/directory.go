package scout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const directoryUserAgent = "gsocscout/1.0 (+https://gsocscout.dev)"

// DirectoryOrg is an organization card parsed from the directory listing page.
type DirectoryOrg struct {
	Name              string
	Slug              string
	Description       string
	Category          string
	LogoURL           string
	Technologies      []string
	YearsParticipated []int32
}

// OrgLinks are the outbound links parsed from an organization detail page.
type OrgLinks struct {
	GitHubURL    string
	WebsiteURL   string
	IdeasPageURL string
}

// DirectoryClient scrapes the GSoC organization directory site.
type DirectoryClient struct {
	baseURL string
	hc      *http.Client
}

// NewDirectoryClient constructs a DirectoryClient for the given base URL.
func NewDirectoryClient(baseURL string) *DirectoryClient {
	return &DirectoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *DirectoryClient) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", directoryUserAgent)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// FetchDirectory downloads and parses the organization listing page.
func (c *DirectoryClient) FetchDirectory(ctx context.Context) ([]*DirectoryOrg, error) {
	body, err := c.get(ctx, c.baseURL+"/")
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseDirectory(body, time.Now())
}

// FetchOrgLinks downloads and parses an organization detail page.
func (c *DirectoryClient) FetchOrgLinks(ctx context.Context, slug string) (*OrgLinks, error) {
	body, err := c.get(ctx, c.baseURL+"/organization/"+slug+"/")
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseOrgLinks(body, c.baseURL)
}

var logoURLPattern = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)
var orgPathPattern = regexp.MustCompile(`/organization/([^/]+)`)

// ParseDirectory extracts organization cards from the listing page HTML.
func ParseDirectory(r io.Reader, now time.Time) ([]*DirectoryOrg, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory html: %w", err)
	}
	var orgs []*DirectoryOrg
	doc.Find(".org-card-container").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(".org-card-name-container").Text())
		if len(name) < 2 {
			return
		}
		description := strings.TrimSpace(card.Find(".org-card-description-container").Text())
		if len(description) > 1000 {
			description = description[:1000]
		}
		category := strings.TrimSpace(card.Find(".org-card-category-container").Text())

		var logoURL string
		if style, ok := card.Find(".org-card-logo").Attr("style"); ok {
			if m := logoURLPattern.FindStringSubmatch(style); m != nil {
				logoURL = m[1]
			}
		}

		var technologies []string
		card.Find(".org-card-technology").Each(func(_ int, tag *goquery.Selection) {
			if tech := strings.TrimSpace(tag.Text()); tech != "" {
				technologies = append(technologies, tech)
			}
		})

		var yearTexts []string
		card.Find(".org-card-year").Each(func(_ int, span *goquery.Selection) {
			yearTexts = append(yearTexts, span.Text())
		})
		years := ParseYears(strings.Join(yearTexts, " "), now)

		slug := Slugify(name)
		if href, ok := card.Parent().Filter("a").Attr("href"); ok {
			if m := orgPathPattern.FindStringSubmatch(href); m != nil {
				slug = m[1]
			}
		}

		orgs = append(orgs, &DirectoryOrg{
			Name:              name,
			Slug:              slug,
			Description:       description,
			Category:          category,
			LogoURL:           logoURL,
			Technologies:      technologies,
			YearsParticipated: years,
		})
	})
	return orgs, nil
}

// ParseOrgLinks extracts GitHub, website and ideas-page links from an
// organization detail page. The first matching link of each kind wins.
func ParseOrgLinks(r io.Reader, baseURL string) (*OrgLinks, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse organization html: %w", err)
	}
	links := &OrgLinks{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		switch {
		case strings.Contains(href, "github.com") && links.GitHubURL == "":
			if strings.HasPrefix(href, "http") {
				links.GitHubURL = href
			} else {
				links.GitHubURL = "https://" + href
			}
		case strings.Contains(href, "gsocorganizations.dev/ideas") && links.IdeasPageURL == "":
			if strings.HasPrefix(href, "http") {
				links.IdeasPageURL = href
			} else {
				links.IdeasPageURL = baseURL + href
			}
		case strings.HasPrefix(href, "http") &&
			!strings.Contains(href, "github.com") &&
			!strings.Contains(href, "gsocorganizations.dev") &&
			!strings.Contains(href, "google.com") &&
			links.WebsiteURL == "":
			links.WebsiteURL = href
		}
	})
	return links, nil
}
