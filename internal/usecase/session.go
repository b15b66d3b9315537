package usecase

import (
	"sync"

	"qaforge/internal/domain"
)

// Session holds the mutable per-run state shared between ingestion and
// script synthesis: the raw checkout page and the DOM catalog extracted from
// it. Re-ingesting the checkout page replaces both atomically.
type Session struct {
	mu           sync.RWMutex
	checkoutHTML string
	catalog      domain.DomCatalog
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// SetCheckoutPage stores the page and its catalog, replacing any previous
// ones.
func (s *Session) SetCheckoutPage(rawHTML string, catalog domain.DomCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkoutHTML = rawHTML
	s.catalog = catalog
}

// Catalog returns the current DOM catalog. The zero catalog means no checkout
// page has been ingested yet.
func (s *Session) Catalog() domain.DomCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// HasCheckoutPage reports whether a checkout page has been ingested.
func (s *Session) HasCheckoutPage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkoutHTML != ""
}

// CheckoutHTML returns the raw page source, empty if none was ingested.
func (s *Session) CheckoutHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkoutHTML
}
