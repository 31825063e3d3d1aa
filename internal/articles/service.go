package articles

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

const fetchTimeout = 10 * time.Second

// maxArticles caps the response so a long archive page stays cheap to
// serve.
const maxArticles = 20

// Service fetches and parses the upstream news page.
type Service struct {
	logger  *slog.Logger
	client  *http.Client
	siteURL string
}

func NewService(logger *slog.Logger, siteURL string) *Service {
	return &Service{
		logger:  logger,
		client:  &http.Client{Timeout: fetchTimeout},
		siteURL: siteURL,
	}
}

// Latest returns the newest posts in page order. Any upstream failure,
// transport or parse, surfaces as httpx.ErrUpstream so the handler can
// answer 502 rather than blaming the client.
func (s *Service) Latest(ctx context.Context) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.siteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("articles: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("fetch articles", slog.Any("error", err))
		return nil, fmt.Errorf("articles: fetch %s: %w", s.siteURL, httpx.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("fetch articles", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("articles: upstream status %d: %w", resp.StatusCode, httpx.ErrUpstream)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("articles: parse page: %w", httpx.ErrUpstream)
	}

	articles := s.parse(doc)
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	return articles, nil
}

func (s *Service) parse(doc *goquery.Document) []Article {
	articles := make([]Article, 0)
	doc.Find("article").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a").First()
		title := clean(link.Text())
		if title == "" {
			title = clean(sel.Find("h1, h2, h3").First().Text())
		}
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}
		articles = append(articles, Article{
			Title:   title,
			URL:     s.absolute(href),
			Date:    clean(sel.Find("time").First().Text()),
			Excerpt: clean(sel.Find("p").First().Text()),
		})
	})
	return articles
}

// absolute resolves relative hrefs against the site root.
func (s *Service) absolute(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(s.siteURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
