// Package source contains the contact sources the resolution cascade
// consults: the 2GIS directory, the hh.ru job board, and company websites.
package source

import (
	"context"

	"github.com/leadforge/leadscout/internal/model"
)

// Query identifies the company a lookup is for.
type Query struct {
	Company string
	City    string

	// PostingURL optionally points at a known vacancy of the company.
	// Only the job-board source uses it; without it that source is
	// skipped entirely.
	PostingURL string
}

// Partial is one source's contribution to a contact record. The engine
// merges partials in cascade order; list fields are appended, singleton
// fields keep their first non-empty value.
type Partial struct {
	Contacts model.Contacts
	Info     model.AdditionalInfo
}

// Adapter is a single rung of the cascade. Lookup returns (nil, nil)
// when the source has nothing for the query; errors are logged by the
// engine and treated the same as a miss.
type Adapter interface {
	Name() string
	// CanProvide reports whether the query carries enough for this
	// source to attempt a lookup. A false answer means the engine skips
	// the source without counting an outbound call.
	CanProvide(q Query) bool
	Lookup(ctx context.Context, q Query) (*Partial, error)
}

// SiteScanner extracts contacts from a company website. Scan returns
// (nil, nil) when the page yields nothing usable.
type SiteScanner interface {
	Scan(ctx context.Context, siteURL string) (*Partial, error)
}
