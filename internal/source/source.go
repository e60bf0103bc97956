package source

import (
	"context"

	"autoapply-engine/internal/domain"
)

// Source is one external listing provider. Fetch re-issues every request on
// each call (no resume state) and keeps page failures to itself: a bad page is
// logged and skipped, never aborts the rest of the query. The returned error
// is reserved for total failure (auth, dial); partial results come back nil-error.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q domain.Query) ([]domain.RawListing, error)
}
