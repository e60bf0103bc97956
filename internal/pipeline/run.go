package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"autoapply-engine/internal/aggregate"
	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/keywords"
	"autoapply-engine/internal/source"

	"golang.org/x/sync/errgroup"
)

const defaultSourceTimeout = 2 * time.Minute

// Options is one run's search input.
type Options struct {
	Keywords       string
	Locations      []string
	PagesPerSource int
	MinScore       int // negative means default
	BatchSize      int
	Force          bool // re-apply even when the ledger already has the URL
	SourceTimeout  time.Duration
}

// Orchestrator composes the stages into the search -> filter -> batch-apply
// -> record workflow. It is the only component with cross-stage failure
// policy: adapters, customization and reminders degrade per unit of work,
// the ledger does not.
type Orchestrator struct {
	Sources      []source.Source
	Docs         Customizer
	FollowUp     FollowUpScheduler
	Ledger       Store
	FollowUpDays int
	ExportPath   string

	// OnFiltered, when set, sees the top scored listings after filtering and
	// before any side-effecting stage runs (the CLI prints them).
	OnFiltered func(top []domain.Listing)

	state State
	now   func() time.Time
}

func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) Run(ctx context.Context, opts Options) (Report, error) {
	if opts.PagesPerSource <= 0 {
		opts.PagesPerSource = 5
	}
	if opts.MinScore < 0 {
		opts.MinScore = aggregate.DefaultMinScore
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = defaultSourceTimeout
	}
	if len(opts.Locations) == 0 {
		opts.Locations = []string{""}
	}
	if o.now == nil {
		o.now = time.Now
	}

	var rep Report

	o.state = StateSearching
	raws := o.search(ctx, opts)
	rep.Found = len(raws)

	o.state = StateFiltering
	listings := aggregate.Aggregate(raws, opts.Keywords)
	rep.Unique = len(listings)
	filtered := aggregate.Filter(listings, opts.MinScore)
	rep.Filtered = len(filtered)
	rep.Top = topN(filtered, 10)
	log.Printf("[pipeline] found=%d unique=%d filtered=%d (min_score=%d)",
		rep.Found, rep.Unique, rep.Filtered, opts.MinScore)
	if o.OnFiltered != nil {
		o.OnFiltered(rep.Top)
	}

	o.state = StateBatching
	batch := filtered
	if len(batch) > opts.BatchSize {
		batch = batch[:opts.BatchSize]
	}
	for i, l := range batch {
		// the run may be aborted between batch items; the idempotency gate
		// keeps a restart from double-recording finished ones
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("run aborted at batch item %d: %w", i, err)
		}
		if err := o.applyOne(ctx, l, opts, &rep); err != nil {
			return rep, err
		}
	}

	path, err := o.Ledger.ExportCSV(ctx, o.ExportPath)
	if err != nil {
		return rep, fmt.Errorf("run aborted: %w", err)
	}
	rep.LedgerPath = path
	o.state = StatePersisted
	log.Printf("[pipeline] %s: applied=%d skipped=%d partial=%d ledger=%s",
		rep.Status(), rep.Applied, rep.Skipped, rep.Partial, path)
	return rep, nil
}

// search queries every (keywords, location) pair against every source.
// Sources fan out in parallel as a pure optimization; within one adapter
// pages stay ordered. Adapter errors are logged and never cancel siblings.
func (o *Orchestrator) search(ctx context.Context, opts Options) []domain.RawListing {
	var mu sync.Mutex
	var out []domain.RawListing

	var g errgroup.Group
	for _, src := range o.Sources {
		src := src
		g.Go(func() error {
			for _, loc := range opts.Locations {
				q := domain.Query{
					Keywords: opts.Keywords,
					Location: loc,
					MaxPages: opts.PagesPerSource,
				}
				fctx, cancel := context.WithTimeout(ctx, opts.SourceTimeout)
				ls, err := src.Fetch(fctx, q)
				cancel()
				if err != nil {
					log.Printf("[search:%s] location=%q err=%v", src.Name(), loc, err)
					continue
				}
				log.Printf("[search:%s] location=%q fetched=%d", src.Name(), loc, len(ls))

				mu.Lock()
				out = append(out, ls...)
				mu.Unlock()
			}
			return nil // best-effort: a failed source never cancels the others
		})
	}
	_ = g.Wait()
	return out
}

func (o *Orchestrator) applyOne(ctx context.Context, l domain.Listing, opts Options, rep *Report) error {
	has, err := o.Ledger.Has(ctx, l.CanonicalURL)
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}
	if has && !opts.Force {
		rep.Skipped++
		log.Printf("[apply] already in ledger, skipping url=%s", l.CanonicalURL)
		return nil
	}

	log.Printf("[apply] %s at %s (score=%d source=%s)", l.Title, l.Company, l.Score, l.Source)
	ks := keywords.Extract(l.Description, keywords.DefaultK)

	resumePath := o.Docs.CustomizeResume(l, ks)
	coverPath := o.Docs.CustomizeCoverLetter(l, ks)

	appliedAt := o.now()
	followUp := false
	if o.FollowUp != nil {
		followUp = o.FollowUp.ScheduleFollowUp(ctx, l.Title, l.Company, appliedAt, o.FollowUpDays)
	}

	rec := domain.ApplicationRecord{
		URL:             l.CanonicalURL,
		Title:           l.Title,
		Company:         l.Company,
		Location:        l.Location,
		AppliedAt:       appliedAt,
		ResumePath:      resumePath,
		CoverLetterPath: coverPath,
		FollowUpSet:     followUp,
	}
	if has {
		err = o.Ledger.Supersede(ctx, rec)
	} else {
		_, err = o.Ledger.Append(ctx, rec)
	}
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	rep.Applied++
	if resumePath == "" || coverPath == "" || (o.FollowUp != nil && !followUp) {
		rep.Partial++
	}
	return nil
}

func topN(ls []domain.Listing, n int) []domain.Listing {
	if len(ls) < n {
		n = len(ls)
	}
	out := make([]domain.Listing, n)
	copy(out, ls[:n])
	return out
}
