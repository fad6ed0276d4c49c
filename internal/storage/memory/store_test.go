package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rankcrawl/internal/crawler"
)

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	first, err := store.ResolveCompany(ctx, "Acme Corp")
	require.NoError(t, err)
	second, err := store.ResolveCompany(ctx, "Acme Corp")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := store.ResolveCompany(ctx, "Globex")
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestCompaniesAndCategoriesAreSeparateNamespaces(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	companyID, err := store.ResolveCompany(ctx, "開発")
	require.NoError(t, err)
	categoryID, err := store.ResolveCategory(ctx, "開発")
	require.NoError(t, err)
	require.NotEqual(t, companyID, categoryID)
}

func TestResolveRejectsBlankName(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, err := store.ResolveCategory(context.Background(), " ")
	require.Error(t, err)
}

func TestUpsertListingByURL(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	listing := crawler.Listing{
		CompanyID:     1,
		CategoryID:    2,
		Title:         "Senior Engineer",
		URL:           "https://type.jp/job-11/1343474_detail/",
		SalarySummary: "500万円〜700万円",
	}
	first, err := store.UpsertListing(ctx, listing)
	require.NoError(t, err)

	listing.SalarySummary = "600万円〜800万円"
	second, err := store.UpsertListing(ctx, listing)
	require.NoError(t, err)
	require.Equal(t, first, second, "same URL updates in place")
	require.Equal(t, 1, store.ListingCount())

	stored, ok := store.ListingByURL(listing.URL)
	require.True(t, ok)
	require.Equal(t, "600万円〜800万円", stored.SalarySummary)
}

func TestUpsertListingWithoutURLAlwaysInserts(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	listing := crawler.Listing{CompanyID: 1, CategoryID: 2, Title: "no link"}
	first, err := store.UpsertListing(ctx, listing)
	require.NoError(t, err)
	second, err := store.UpsertListing(ctx, listing)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Equal(t, 2, store.ListingCount())
}

func TestUpsertListingRequiresResolvedReferences(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, err := store.UpsertListing(context.Background(), crawler.Listing{Title: "orphan"})
	require.Error(t, err)
}
