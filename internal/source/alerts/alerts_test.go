package alerts

import (
	"context"
	"testing"
	"time"

	"autoapply-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertMail = `
<html><body>
<p>New jobs matching your alert:</p>
<a href="https://www.linkedin.com/jobs/view/4242?trk=alert">Security Engineer at Acme</a>
<a href="https://www.indeed.com/viewjob?jk=9">Cloud Architect - Globex</a>
<a href="https://boards.example.com/careers/123">Platform Lead – Initech</a>
<a href="https://www.linkedin.com/jobs/view/5000">Just a title, no company</a>
<a href="https://example.com/blog/post">Security Engineer at Acme</a>
<a href="https://alerts.example.com/unsubscribe">Unsubscribe</a>
</body></html>`

func TestListingsFromMessage(t *testing.T) {
	now := time.Now().UTC()
	out, err := listingsFromMessage([]byte(alertMail), now)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "Security Engineer", out[0].Title)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4242?trk=alert", out[0].URL)
	assert.Equal(t, "alerts", out[0].Source)
	assert.Equal(t, now, out[0].RetrievedAt)

	assert.Equal(t, "Cloud Architect", out[1].Title)
	assert.Equal(t, "Globex", out[1].Company)

	assert.Equal(t, "Platform Lead", out[2].Title)
	assert.Equal(t, "Initech", out[2].Company)
}

func TestSplitTitleCompany(t *testing.T) {
	cases := []struct {
		in      string
		title   string
		company string
	}{
		{"Security Engineer at Acme", "Security Engineer", "Acme"},
		{"Cloud Architect - Globex", "Cloud Architect", "Globex"},
		{"Platform Lead – Initech", "Platform Lead", "Initech"},
		{"NoSeparatorHere", "", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		title, company := splitTitleCompany(tc.in)
		assert.Equal(t, tc.title, title, tc.in)
		assert.Equal(t, tc.company, company, tc.in)
	}
}

func TestLooksLikeJobURL(t *testing.T) {
	assert.True(t, looksLikeJobURL("https://www.linkedin.com/jobs/view/1"))
	assert.True(t, looksLikeJobURL("https://www.indeed.com/viewjob?jk=1"))
	assert.True(t, looksLikeJobURL("https://x.test/careers/42"))
	assert.False(t, looksLikeJobURL("https://x.test/blog/post"))
}

func TestFetchRequiresConfiguration(t *testing.T) {
	f := New(Config{}, func() (string, error) { return "", nil })
	_, err := f.Fetch(context.Background(), domain.Query{})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	f := New(Config{Host: "imap.example.com", Username: "me"}, nil)
	assert.Equal(t, "INBOX", f.cfg.Mailbox)
	assert.Equal(t, 50, f.cfg.MaxMessages)
	assert.Equal(t, "alerts", f.Name())
}
