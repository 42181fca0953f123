package store

import (
	"context"
	"time"

	"dbpediafacts/pkg/dbpedia"
)

// Record is a stored set of facts for one resource.
type Record struct {
	Resource  dbpedia.Resource
	Facts     dbpedia.Facts
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FactStore persists fetched facts. It is an export target; the client never reads from it.
type FactStore interface {
	// SaveFacts upserts facts for res. Keys missing from facts keep their stored value.
	SaveFacts(ctx context.Context, res dbpedia.Resource, facts dbpedia.Facts) error
	// GetFacts returns the record for resourceURL, or nil when none is stored.
	GetFacts(ctx context.Context, resourceURL string) (*Record, error)
	// ListFacts returns every record ordered by resource URL.
	ListFacts(ctx context.Context) ([]*Record, error)
}
