package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"autoapply-engine/internal/domain"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Ledger is the durable, append-only record of applications attempted,
// keyed by canonical URL. The flock guard enforces the single-writer model:
// a second process gets an open error instead of interleaved writes.
type Ledger struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ledger dir: %w", err)
	}

	fl := flock.New(filepath.Join(dir, "ledger.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("ledger is locked by another process")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(dir, "applications.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = fl.Unlock()
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite wants a single writer

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = fl.Unlock()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		_ = fl.Unlock()
		return nil, fmt.Errorf("ledger migrate: %w", err)
	}
	return &Ledger{db: db, lock: fl}, nil
}

func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	if l.lock != nil {
		_ = l.lock.Unlock()
	}
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func migrate(db *sql.DB) error {
	// url is indexed but not unique: a forced re-application appends a
	// superseding row, it never rewrites history
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  url TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  resume_path TEXT NOT NULL DEFAULT '',
  cover_letter_path TEXT NOT NULL DEFAULT '',
  follow_up_set INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_applications_url ON applications(url);
`)
	return err
}

// Has is the idempotency gate: consulted before any side-effecting stage runs.
func (l *Ledger) Has(ctx context.Context, canonicalURL string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM applications WHERE url = ? LIMIT 1;`, canonicalURL).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger has: %w", err)
	}
	return true, nil
}

// Append writes the record unless one already exists for the URL. Returns
// whether a row was added.
func (l *Ledger) Append(ctx context.Context, rec domain.ApplicationRecord) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
INSERT INTO applications(url, title, company, location, applied_at, resume_path, cover_letter_path, follow_up_set)
SELECT ?,?,?,?,?,?,?,?
WHERE NOT EXISTS (SELECT 1 FROM applications WHERE url = ?);`,
		rec.URL,
		rec.Title,
		rec.Company,
		rec.Location,
		rec.AppliedAt.UTC().Format(time.RFC3339),
		rec.ResumePath,
		rec.CoverLetterPath,
		boolInt(rec.FollowUpSet),
		rec.URL,
	)
	if err != nil {
		return false, fmt.Errorf("ledger append: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Supersede appends a corrected record with a later timestamp. The prior rows
// for rec.URL stay in place as the audit trail; only the explicitly forced
// re-application path calls this.
func (l *Ledger) Supersede(ctx context.Context, rec domain.ApplicationRecord) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO applications(url, title, company, location, applied_at, resume_path, cover_letter_path, follow_up_set)
VALUES(?,?,?,?,?,?,?,?);`,
		rec.URL,
		rec.Title,
		rec.Company,
		rec.Location,
		rec.AppliedAt.UTC().Format(time.RFC3339),
		rec.ResumePath,
		rec.CoverLetterPath,
		boolInt(rec.FollowUpSet),
	)
	if err != nil {
		return fmt.Errorf("ledger supersede: %w", err)
	}
	return nil
}

func (l *Ledger) All(ctx context.Context) ([]domain.ApplicationRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT url, title, company, location, applied_at, resume_path, cover_letter_path, follow_up_set
FROM applications
ORDER BY applied_at, id;`)
	if err != nil {
		return nil, fmt.Errorf("ledger all: %w", err)
	}
	defer rows.Close()

	var out []domain.ApplicationRecord
	for rows.Next() {
		var rec domain.ApplicationRecord
		var appliedAt string
		var followUp int
		if err := rows.Scan(
			&rec.URL,
			&rec.Title,
			&rec.Company,
			&rec.Location,
			&appliedAt,
			&rec.ResumePath,
			&rec.CoverLetterPath,
			&followUp,
		); err != nil {
			return nil, fmt.Errorf("ledger all: %w", err)
		}
		rec.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
		rec.FollowUpSet = followUp != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
