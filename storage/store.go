package storage

import (
	"context"
	"errors"

	"github.com/4propertygraphs/PDL4/models"
)

// ErrNotFound is returned by single-row lookups with no match.
var ErrNotFound = errors.New("not found")

// CatalogStore is the property catalog. ReplaceProperties is the scoped
// replace: within one transaction it deletes every record for the
// (agencyName, source) partition and inserts the given batch, leaving other
// partitions untouched. A failed transaction restores the pre-delete state.
type CatalogStore interface {
	ReplaceProperties(ctx context.Context, agencyName string, source models.Source, props []*models.Property) (int, error)
	AllProperties(ctx context.Context) ([]*models.Property, error)
	PropertiesByAgency(ctx context.Context, agencyName string) ([]*models.Property, error)
	PropertyByID(ctx context.Context, id int64) (*models.Property, error)
	PropertyByReference(ctx context.Context, reference string) (*models.Property, error)
}

// AgencyStore reads agency metadata. Agencies are owned by the API layer;
// the engine never mutates them.
type AgencyStore interface {
	Agencies(ctx context.Context) ([]*models.Agency, error)
	// AgencyByKey resolves a key against every known key field (unique key,
	// MyHome key, Daft key, site prefix, Acquaint prefix), first match wins.
	AgencyByKey(ctx context.Context, key string) (*models.Agency, error)
}

// ActivityStore is the append-only import audit log.
type ActivityStore interface {
	RecordActivity(ctx context.Context, a *models.ImportActivity) error
	RecentActivity(ctx context.Context, limit int) ([]*models.ImportActivity, error)
	LatestActivity(ctx context.Context) (*models.ImportActivity, error)
}

// Store is the full persistence surface the engine consumes.
type Store interface {
	CatalogStore
	AgencyStore
	ActivityStore
	Close() error
}
