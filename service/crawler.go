package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/askar0007amirkhanov/ai-precheck/config"
)

// Hrefs containing one of these tokens are treated as policy pages and
// crawled in addition to the landing page.
var policyLinkTokens = []string{
	"privacy", "terms", "refund", "return", "cancellation", "policy", "legal",
}

// CrawlResult is the cleaned content of a merchant site plus the page
// metadata the mobile and language checks need.
type CrawlResult struct {
	Text            string
	PolicyLinks     []string
	HasViewportMeta bool
	Language        string
}

// Crawler fetches merchant pages over plain HTTP and converts them to
// clean text. Browser automation stays out of scope; sites that require
// JavaScript rendering degrade to whatever is in the initial HTML.
type Crawler struct {
	client         *http.Client
	userAgent      string
	maxPolicyPages int
	maxContentSize int
}

func NewCrawler(cfg *config.CrawlerConfig) *Crawler {
	return &Crawler{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		userAgent:      cfg.UserAgent,
		maxPolicyPages: cfg.MaxPolicyPages,
		maxContentSize: cfg.MaxContentSize,
	}
}

// Crawl fetches the landing page, follows up to maxPolicyPages policy
// links found on it and returns the concatenated clean text.
func (c *Crawler) Crawl(ctx context.Context, siteURL string) (*CrawlResult, error) {
	base, err := url.Parse(siteURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid url %q", siteURL)
	}

	doc, err := c.fetchDocument(ctx, siteURL)
	if err != nil {
		return nil, err
	}

	result := &CrawlResult{
		Text:        cleanDocument(doc),
		PolicyLinks: c.policyLinks(doc, base),
	}

	if viewport, ok := doc.Find(`meta[name="viewport"]`).Attr("content"); ok && strings.TrimSpace(viewport) != "" {
		result.HasViewportMeta = true
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		result.Language = strings.TrimSpace(lang)
	}

	var sb strings.Builder
	sb.WriteString(result.Text)

	followed := 0
	for _, link := range result.PolicyLinks {
		if followed >= c.maxPolicyPages {
			break
		}
		policyDoc, err := c.fetchDocument(ctx, link)
		if err != nil {
			// A dead policy link must not fail the whole crawl.
			continue
		}
		followed++
		sb.WriteString("\n\n--- ")
		sb.WriteString(link)
		sb.WriteString(" ---\n")
		sb.WriteString(cleanDocument(policyDoc))
	}

	result.Text = sb.String()
	if c.maxContentSize > 0 && len(result.Text) > c.maxContentSize {
		result.Text = result.Text[:c.maxContentSize]
	}
	return result, nil
}

func (c *Crawler) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("site returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// policyLinks collects absolute same-host URLs whose href looks like a
// policy page, in document order without duplicates.
func (c *Crawler) policyLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}

		lower := strings.ToLower(href)
		matched := false
		for _, token := range policyLinkTokens {
			if strings.Contains(lower, token) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return
		}
		resolved.Fragment = ""

		key := resolved.String()
		if key == base.String() {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		links = append(links, key)
	})

	return links
}

// cleanDocument strips non-content elements and collapses the remaining
// text into non-empty lines.
func cleanDocument(doc *goquery.Document) string {
	doc.Find("script, style, noscript, iframe, svg").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range strings.Split(line, "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				lines = append(lines, chunk)
			}
		}
	}
	return strings.Join(lines, "\n")
}
