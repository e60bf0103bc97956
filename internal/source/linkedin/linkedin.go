package linkedin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/source/util"

	"github.com/PuerkitoBio/goquery"
)

const resultsPerPage = 25

type Config struct {
	BaseURL string
	// HydrateDescriptions controls the extra per-job page fetch that pulls
	// the full description. Off it still emits cards, just with empty text.
	HydrateDescriptions bool
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.linkedin.com"
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "linkedin" }

func (s *Scraper) Fetch(ctx context.Context, q domain.Query) ([]domain.RawListing, error) {
	var out []domain.RawListing
	for page := 0; page < q.MaxPages; page++ {
		ls, err := s.fetchPage(ctx, q, page)
		if err != nil {
			log.Printf("[linkedin] page=%d location=%q err=%v", page, q.Location, err)
			continue
		}
		out = append(out, ls...)
	}
	return out, nil
}

func (s *Scraper) fetchPage(ctx context.Context, q domain.Query, page int) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("keywords", q.Keywords)
	params.Set("location", q.Location)
	params.Set("start", strconv.Itoa(page*resultsPerPage))
	pageURL := s.cfg.BaseURL + "/jobs/search?" + params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, pageURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("linkedin status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin parse html: %w", err)
	}

	now := time.Now().UTC()
	var out []domain.RawListing
	doc.Find("div.base-card").Each(func(_ int, card *goquery.Selection) {
		title := util.CleanText(card.Find("h3.base-search-card__title").First().Text())
		company := util.CleanText(card.Find("h4.base-search-card__subtitle").First().Text())
		if title == "" || company == "" {
			return
		}

		href, _ := card.Find("a.base-card__full-link").First().Attr("href")
		if href == "" {
			return
		}

		l := domain.RawListing{
			Title:       title,
			Company:     company,
			Location:    util.NormalizeLocation(card.Find("span.job-search-card__location").First().Text()),
			URL:         href,
			Source:      s.Name(),
			RetrievedAt: now,
		}
		if s.cfg.HydrateDescriptions {
			if desc, err := s.fetchDescription(ctx, href); err != nil {
				log.Printf("[linkedin] hydrate url=%q err=%v", href, err)
			} else {
				l.Description = desc
			}
		}
		out = append(out, l)
	})
	return out, nil
}

func (s *Scraper) fetchDescription(ctx context.Context, jobURL string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, jobURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, jobURL); err != nil {
			return "", err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("job page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}
	return util.CleanText(doc.Find("div.description__text").First().Text()), nil
}
