// Package propertyrepo provides persistent sources of property records.
//
// Two drivers are available: a SQLite file store for local and embedded
// deployments, and a Redis store for shared deployments where records are
// loaded by an external ingestion job.
package propertyrepo

import (
	"context"

	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Source reads and writes property records.
type Source interface {
	// Get returns the record with the given id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*property.Record, error)

	// List returns up to limit records starting at offset, ordered by id.
	// limit <= 0 means no limit.
	List(ctx context.Context, offset, limit int) ([]*property.Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// Put stores or replaces a record.
	Put(ctx context.Context, rec *property.Record) error

	// PutMany stores or replaces a batch of records.
	PutMany(ctx context.Context, recs []*property.Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}
