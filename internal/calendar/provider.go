package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Reminder struct {
	Method  string // email | popup
	Minutes int    // before event start
}

type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
	Reminders   []Reminder
}

// Provider inserts one event per reminder into an external calendar.
type Provider interface {
	Insert(ctx context.Context, ev Event) error
}

// HTTPProvider posts events to a calendar API's events endpoint with a
// bearer token. Expired credentials are refreshed, then re-authorized, before
// the insert is given up on.
type HTTPProvider struct {
	EventsURL string
	Creds     CredentialProvider
	hc        *http.Client
}

func NewHTTPProvider(eventsURL string, creds CredentialProvider) *HTTPProvider {
	return &HTTPProvider{
		EventsURL: eventsURL,
		Creds:     creds,
		hc:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) Insert(ctx context.Context, ev Event) error {
	if err := p.ensureAuth(); err != nil {
		return err
	}

	overrides := make([]map[string]any, 0, len(ev.Reminders))
	for _, r := range ev.Reminders {
		overrides = append(overrides, map[string]any{"method": r.Method, "minutes": r.Minutes})
	}
	payload := map[string]any{
		"id":          ev.ID,
		"summary":     ev.Title,
		"description": ev.Description,
		"start":       map[string]string{"dateTime": ev.Start.Format(time.RFC3339), "timeZone": ev.Timezone},
		"end":         map[string]string{"dateTime": ev.End.Format(time.RFC3339), "timeZone": ev.Timezone},
		"reminders":   map[string]any{"useDefault": false, "overrides": overrides},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("calendar event encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.EventsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.Creds.Token())

	res, err := p.hc.Do(req)
	if err != nil {
		return fmt.Errorf("calendar insert: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("calendar insert: status %d", res.StatusCode)
	}
	return nil
}

func (p *HTTPProvider) ensureAuth() error {
	if p.Creds == nil {
		return fmt.Errorf("calendar: no credentials configured")
	}
	if p.Creds.IsValid() {
		return nil
	}
	if err := p.Creds.Refresh(); err == nil {
		return nil
	}
	if err := p.Creds.Reauthorize(); err != nil {
		return fmt.Errorf("calendar auth: %w", err)
	}
	return nil
}
