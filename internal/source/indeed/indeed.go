package indeed

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

const resultsPerPage = 10

type Config struct {
	BaseURL string // defaults to the live site; tests point it elsewhere
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.indeed.com"
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "indeed" }

// Fetch pages through the search results in index order. A failed page is
// logged with its index and skipped; the remaining pages still run.
func (s *Scraper) Fetch(ctx context.Context, q domain.Query) ([]domain.RawListing, error) {
	var out []domain.RawListing
	for page := 0; page < q.MaxPages; page++ {
		ls, err := s.fetchPage(ctx, q, page)
		if err != nil {
			log.Printf("[indeed] page=%d location=%q err=%v", page, q.Location, err)
			continue
		}
		out = append(out, ls...)
	}
	return out, nil
}

func (s *Scraper) fetchPage(ctx context.Context, q domain.Query, page int) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("q", q.Keywords)
	params.Set("l", q.Location)
	params.Set("start", strconv.Itoa(page*resultsPerPage))
	pageURL := s.cfg.BaseURL + "/jobs?" + params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, pageURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indeed get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("indeed status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("indeed parse html: %w", err)
	}

	now := time.Now().UTC()
	var out []domain.RawListing
	doc.Find("div.jobsearch-SerpJobCard").Each(func(_ int, card *goquery.Selection) {
		titleLink := card.Find("a.jobtitle").First()
		title := util.CleanText(titleLink.Text())
		company := util.CleanText(card.Find("span.company").First().Text())
		if title == "" || company == "" {
			return // required fields; drop, don't emit
		}

		href, _ := titleLink.Attr("href")
		if href == "" {
			return
		}
		abs := href
		if href[0] == '/' {
			abs = s.cfg.BaseURL + href
		}

		loc, _ := card.Find("div.recJobLoc").First().Attr("data-rc-loc")
		out = append(out, domain.RawListing{
			Title:       title,
			Company:     company,
			Location:    util.NormalizeLocation(loc),
			Description: util.CleanText(card.Find("div.summary").First().Text()),
			URL:         abs,
			Source:      s.Name(),
			RetrievedAt: now,
		})
	})
	return out, nil
}
