package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesFetched counts pages retrieved successfully (index and detail).
	TotalPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankcrawl_pages_fetched_total",
		Help: "The total number of pages fetched successfully.",
	})
	// TotalPageFailures counts fetches that ended in a FetchError.
	TotalPageFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankcrawl_page_failures_total",
		Help: "The total number of failed page fetches.",
	})
	// TotalListingsPersisted counts listings upserted into storage.
	TotalListingsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankcrawl_listings_persisted_total",
		Help: "The total number of listings inserted or updated.",
	})
	// TotalListingFailures counts listings skipped due to a per-item failure.
	TotalListingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankcrawl_listing_failures_total",
		Help: "The total number of listings skipped due to errors.",
	})
)
