package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"Title", "Company", "Location", "URL",
	"Application_Date", "Resume_Path", "CoverLetter_Path", "FollowUp_Set",
}

// ExportCSV flushes the ledger to its tabular on-disk form, one row per
// ApplicationRecord. A failure here is fatal to the run: a half-written
// export would break the idempotency guarantee for whoever reads it next.
func (l *Ledger) ExportCSV(ctx context.Context, path string) (string, error) {
	recs, err := l.All(ctx)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ledger export: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("ledger export: %w", err)
	}
	for _, r := range recs {
		row := []string{
			r.Title, r.Company, r.Location, r.URL,
			r.AppliedAt.UTC().Format(time.RFC3339),
			r.ResumePath, r.CoverLetterPath,
			strconv.FormatBool(r.FollowUpSet),
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("ledger export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("ledger export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ledger export: %w", err)
	}
	return path, nil
}
