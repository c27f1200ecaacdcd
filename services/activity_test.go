package services

import (
	"context"
	"testing"

	"github.com/4propertygraphs/PDL4/models"
)

func TestListRecentActivity(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		store.RecordActivity(ctx, &models.ImportActivity{
			RunID:  "run-1",
			Source: models.SourceMyHome,
			Status: models.ActivityStatusOK,
		})
	}

	reader := NewActivityReader(store)

	rows, err := reader.ListRecentActivity(ctx, 5)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0].ID != 30 {
		t.Fatalf("expected newest first, got id %d", rows[0].ID)
	}

	// Out-of-range limits fall back to the default page size.
	rows, err = reader.ListRecentActivity(ctx, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != defaultActivityLimit {
		t.Fatalf("expected %d rows, got %d", defaultActivityLimit, len(rows))
	}
	rows, _ = reader.ListRecentActivity(ctx, 1000)
	if len(rows) != defaultActivityLimit {
		t.Fatalf("expected clamped default, got %d", len(rows))
	}
}
