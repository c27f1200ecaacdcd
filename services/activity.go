package services

import (
	"context"

	"github.com/4propertygraphs/PDL4/models"
	"github.com/4propertygraphs/PDL4/storage"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityReader serves the import audit log to API consumers.
type ActivityReader struct {
	store storage.ActivityStore
}

func NewActivityReader(store storage.ActivityStore) *ActivityReader {
	return &ActivityReader{store: store}
}

// ListRecentActivity returns the newest activity rows first. Limits outside
// [1, 100] fall back to the default page size.
func (r *ActivityReader) ListRecentActivity(ctx context.Context, limit int) ([]*models.ImportActivity, error) {
	if limit < 1 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}
	return r.store.RecentActivity(ctx, limit)
}
