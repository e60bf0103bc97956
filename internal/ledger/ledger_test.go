package ledger

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"autoapply-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func testRecord(url string, appliedAt time.Time) domain.ApplicationRecord {
	return domain.ApplicationRecord{
		URL:             url,
		Title:           "Security Engineer",
		Company:         "Acme",
		Location:        "Remote",
		AppliedAt:       appliedAt,
		ResumePath:      "artifacts/Custom_Resume_Acme_20260315.yaml",
		CoverLetterPath: "artifacts/Cover_Letter_Acme_20260315.yaml",
		FollowUpSet:     true,
	}
}

func TestAppendAndHas(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	url := "https://jobs.example.com/view/1"

	has, err := l.Has(ctx, url)
	require.NoError(t, err)
	assert.False(t, has)

	added, err := l.Append(ctx, testRecord(url, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, added)

	has, err = l.Has(ctx, url)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAppendIsIdempotentPerURL(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	url := "https://jobs.example.com/view/1"

	first := testRecord(url, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	added, err := l.Append(ctx, first)
	require.NoError(t, err)
	assert.True(t, added)

	second := testRecord(url, time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC))
	second.Title = "Different Title"
	added, err = l.Append(ctx, second)
	require.NoError(t, err)
	assert.False(t, added, "existing record stays, duplicate append is a no-op")

	recs, err := l.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Security Engineer", recs[0].Title)
}

func TestSupersedeAppendsCorrectedRow(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	url := "https://jobs.example.com/view/1"

	orig := testRecord(url, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	orig.FollowUpSet = false
	_, err := l.Append(ctx, orig)
	require.NoError(t, err)

	redo := testRecord(url, time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC))
	require.NoError(t, l.Supersede(ctx, redo))

	// both rows survive: the original stays as the audit trail, the corrected
	// one follows with the later timestamp
	recs, err := l.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].AppliedAt.Equal(orig.AppliedAt))
	assert.False(t, recs[0].FollowUpSet)
	assert.True(t, recs[1].AppliedAt.Equal(redo.AppliedAt))
	assert.True(t, recs[1].FollowUpSet)

	has, err := l.Has(ctx, url)
	require.NoError(t, err)
	assert.True(t, has)

	// a plain append after a supersede is still a no-op for the URL
	added, err := l.Append(ctx, testRecord(url, time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, added)
}

func TestAllOrderedByAppliedAt(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	_, err := l.Append(ctx, testRecord("https://x.test/b", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = l.Append(ctx, testRecord("https://x.test/a", base))
	require.NoError(t, err)
	_, err = l.Append(ctx, testRecord("https://x.test/c", base.Add(2*time.Hour)))
	require.NoError(t, err)

	recs, err := l.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "https://x.test/a", recs[0].URL)
	assert.Equal(t, "https://x.test/b", recs[1].URL)
	assert.Equal(t, "https://x.test/c", recs[2].URL)
}

func TestRecordRoundTrip(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	rec := testRecord("https://x.test/1", time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC))
	_, err := l.Append(ctx, rec)
	require.NoError(t, err)

	recs, err := l.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, rec.URL, got.URL)
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.Company, got.Company)
	assert.Equal(t, rec.Location, got.Location)
	assert.True(t, got.AppliedAt.Equal(rec.AppliedAt))
	assert.Equal(t, rec.ResumePath, got.ResumePath)
	assert.Equal(t, rec.CoverLetterPath, got.CoverLetterPath)
	assert.True(t, got.FollowUpSet)
}

func TestSecondOpenIsLockedOut(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	defer l.Close()

	_, err = Open(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")

	// the lock is released on close
	require.NoError(t, l.Close())
	l2, err := Open(dir)
	require.NoError(t, err)
	_ = l2.Close()
}

func TestExportCSV(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	rec := testRecord("https://x.test/1", time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	_, err := l.Append(ctx, rec)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "applied_jobs.csv")
	path, err := l.ExportCSV(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"Title", "Company", "Location", "URL",
		"Application_Date", "Resume_Path", "CoverLetter_Path", "FollowUp_Set",
	}, rows[0])
	assert.Equal(t, []string{
		"Security Engineer", "Acme", "Remote", "https://x.test/1",
		"2026-03-15T09:00:00Z",
		"artifacts/Custom_Resume_Acme_20260315.yaml",
		"artifacts/Cover_Letter_Acme_20260315.yaml",
		"true",
	}, rows[1])
}

func TestExportCSVBadPath(t *testing.T) {
	l := openTestLedger(t)
	_, err := l.ExportCSV(context.Background(), filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
}
