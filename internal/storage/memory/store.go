// Package memory provides an in-memory Store for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rankcrawl/internal/crawler"
)

// Store keeps entities and listings in maps. It mirrors the Postgres
// semantics: name-keyed idempotent resolution and URL-keyed listing upsert.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	companies  map[string]int64
	categories map[string]int64
	byURL      map[string]int64
	listings   map[int64]crawler.Listing
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		companies:  make(map[string]int64),
		categories: make(map[string]int64),
		byURL:      make(map[string]int64),
		listings:   make(map[int64]crawler.Listing),
	}
}

// ResolveCompany returns the stable id for the company name, creating it on
// first sight.
func (s *Store) ResolveCompany(_ context.Context, name string) (int64, error) {
	return s.resolve(s.companies, name)
}

// ResolveCategory returns the stable id for the category name.
func (s *Store) ResolveCategory(_ context.Context, name string) (int64, error) {
	return s.resolve(s.categories, name)
}

func (s *Store) resolve(entities map[string]int64, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("entity name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := entities[name]; ok {
		return id, nil
	}
	s.nextID++
	entities[name] = s.nextID
	return s.nextID, nil
}

// UpsertListing stores the listing, replacing any earlier row with the same
// non-empty URL.
func (s *Store) UpsertListing(_ context.Context, listing crawler.Listing) (int64, error) {
	if listing.CompanyID == 0 || listing.CategoryID == 0 {
		return 0, fmt.Errorf("listing must reference resolved company and category")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.URL != "" {
		if id, ok := s.byURL[listing.URL]; ok {
			s.listings[id] = listing
			return id, nil
		}
	}
	s.nextID++
	id := s.nextID
	s.listings[id] = listing
	if listing.URL != "" {
		s.byURL[listing.URL] = id
	}
	return id, nil
}

// Close is a no-op.
func (s *Store) Close() {}

// ListingCount reports how many listings are stored.
func (s *Store) ListingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}

// ListingByURL returns the stored listing for a URL.
func (s *Store) ListingByURL(url string) (crawler.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byURL[url]
	if !ok {
		return crawler.Listing{}, false
	}
	return s.listings[id], true
}

// CompanyID returns the id previously resolved for a company name.
func (s *Store) CompanyID(name string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.companies[name]
	return id, ok
}

// CategoryID returns the id previously resolved for a category name.
func (s *Store) CategoryID(name string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.categories[name]
	return id, ok
}
