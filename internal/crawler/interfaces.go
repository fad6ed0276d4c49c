package crawler

import "context"

// Store persists resolved entities and listings. Resolve calls are
// idempotent per distinct name within and across passes: the same name
// always maps to the same entity id and never creates a near-duplicate.
// UpsertListing is keyed by the listing URL — recrawling a URL updates the
// stored row in place instead of duplicating it.
type Store interface {
	ResolveCompany(ctx context.Context, name string) (int64, error)
	ResolveCategory(ctx context.Context, name string) (int64, error)
	UpsertListing(ctx context.Context, listing Listing) (int64, error)
	Close()
}
