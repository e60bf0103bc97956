package alerts

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/source/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Fetcher turns unseen job-alert emails into raw listings. The mailbox is
// opened read-only, so alert mails keep their unseen flag and a re-run sees
// the same messages (the sequence stays restartable).
type Fetcher struct {
	cfg      Config
	password func() (string, error)
}

type Config struct {
	Host        string
	Port        int
	Username    string
	Mailbox     string
	MaxMessages int
}

func New(cfg Config, password func() (string, error)) *Fetcher {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 50
	}
	return &Fetcher{cfg: cfg, password: password}
}

func (f *Fetcher) Name() string { return "alerts" }

func (f *Fetcher) Fetch(ctx context.Context, q domain.Query) ([]domain.RawListing, error) {
	if f.cfg.Host == "" || f.cfg.Username == "" {
		return nil, errors.New("alerts: imap host/username not configured")
	}
	pw, err := f.password()
	if err != nil {
		return nil, fmt.Errorf("alerts password: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: f.cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("alerts dial tls: %w", err)
	}
	defer func() { _ = c.Close() }()

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(f.cfg.Username, pw).Wait(); err != nil {
		return nil, fmt.Errorf("alerts login: %w", err)
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[alerts] logout: %v", err)
		}
	}()

	if _, err := c.Select(f.cfg.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("alerts select %s: %w", f.cfg.Mailbox, err)
	}

	bodies, err := f.fetchUnseenBodies(ctx, c)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seen := map[string]bool{}
	var out []domain.RawListing
	for i, raw := range bodies {
		ls, err := listingsFromMessage(raw, now)
		if err != nil {
			log.Printf("[alerts] message=%d parse err=%v", i, err)
			continue
		}
		for _, l := range ls {
			cu := util.CanonicalURL(l.URL)
			if cu == "" || seen[cu] {
				continue
			}
			seen[cu] = true
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *Fetcher) fetchUnseenBodies(ctx context.Context, c *imapclient.Client) ([][]byte, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, -3, 0),
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("alerts uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > f.cfg.MaxMessages {
		uids = uids[:f.cfg.MaxMessages]
	}

	bodyAll := &imap.FetchItemBodySection{Specifier: imap.PartSpecifierNone, Peek: true}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var out [][]byte
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			return nil, fmt.Errorf("alerts fetch collect: %w", err)
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			out = append(out, append([]byte(nil), b...))
		}
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("alerts fetch close: %w", err)
	}
	return out, nil
}

// listingsFromMessage pulls job links out of an alert email's HTML part.
// Anchor text of the shape "Title at Company" or "Title - Company" becomes a
// listing; anything else lacks a required field and is dropped.
func listingsFromMessage(raw []byte, retrievedAt time.Time) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var out []domain.RawListing
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || util.IsJunkURL(href) {
			return
		}
		if !looksLikeJobURL(href) {
			return
		}

		title, company := splitTitleCompany(util.CleanText(a.Text()))
		if title == "" || company == "" {
			return
		}

		out = append(out, domain.RawListing{
			Title:       title,
			Company:     company,
			URL:         href,
			Source:      "alerts",
			RetrievedAt: retrievedAt,
		})
	})
	return out, nil
}

func looksLikeJobURL(u string) bool {
	lu := strings.ToLower(u)
	return strings.Contains(lu, "/jobs/view/") ||
		strings.Contains(lu, "viewjob") ||
		strings.Contains(lu, "/job/") ||
		strings.Contains(lu, "/careers/")
}

func splitTitleCompany(text string) (title, company string) {
	for _, sep := range []string{" at ", " - ", " – " /* en dash */} {
		if i := strings.Index(text, sep); i > 0 {
			title = strings.TrimSpace(text[:i])
			company = strings.TrimSpace(text[i+len(sep):])
			return
		}
	}
	return "", ""
}
