package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"autoapply-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serpPage = `
<html><body>
<div class="jobsearch-SerpJobCard">
  <a class="jobtitle" href="/viewjob?jk=1">Security   Engineer</a>
  <span class="company">Acme</span>
  <div class="recJobLoc" data-rc-loc="New York, NY"></div>
  <div class="summary">Defend the perimeter</div>
</div>
<div class="jobsearch-SerpJobCard">
  <a class="jobtitle" href="/viewjob?jk=2">Orphan Posting</a>
  <!-- no company: malformed card, must be dropped -->
</div>
<div class="jobsearch-SerpJobCard">
  <a class="jobtitle" href="https://other.example.com/viewjob?jk=3">Analyst</a>
  <span class="company">Globex</span>
</div>
</body></html>`

func TestFetchParsesCards(t *testing.T) {
	var gotQuery, gotLoc, gotStart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotLoc = r.URL.Query().Get("l")
		gotStart = r.URL.Query().Get("start")
		fmt.Fprint(w, serpPage)
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL}, nil)
	out, err := s.Fetch(context.Background(), domain.Query{
		Keywords: "cybersecurity PMP",
		Location: "New York, NY",
		MaxPages: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "cybersecurity PMP", gotQuery)
	assert.Equal(t, "New York, NY", gotLoc)
	assert.Equal(t, "0", gotStart)

	require.Len(t, out, 2, "card without a company is dropped")

	first := out[0]
	assert.Equal(t, "Security Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "New York, NY", first.Location)
	assert.Equal(t, "Defend the perimeter", first.Description)
	assert.Equal(t, srv.URL+"/viewjob?jk=1", first.URL, "relative href resolved against the base")
	assert.Equal(t, "indeed", first.Source)
	assert.False(t, first.RetrievedAt.IsZero())

	assert.Equal(t, "https://other.example.com/viewjob?jk=3", out[1].URL, "absolute href kept as-is")
}

func TestFetchPaginates(t *testing.T) {
	var starts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		starts = append(starts, r.URL.Query().Get("start"))
		fmt.Fprint(w, serpPage)
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL}, nil)
	_, err := s.Fetch(context.Background(), domain.Query{Keywords: "x", MaxPages: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "10", "20"}, starts)
}

func TestFetchSkipsFailedPage(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("start") == "0" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, serpPage)
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL}, nil)
	out, err := s.Fetch(context.Background(), domain.Query{Keywords: "x", MaxPages: 2})
	require.NoError(t, err, "a failed page never fails the whole fetch")
	assert.Equal(t, 2, calls)
	assert.Len(t, out, 2, "the surviving page still contributes its cards")
}

func TestName(t *testing.T) {
	assert.Equal(t, "indeed", New(Config{}, nil).Name())
}
