package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/4propertygraphs/PDL4/feeds"
	"github.com/4propertygraphs/PDL4/models"
	"github.com/4propertygraphs/PDL4/storage"
)

// Importer runs the scoped-replace import: for every agency and every feed
// whose credential the agency carries, replace the (agency, source) partition
// of the catalog with freshly fetched records and append one activity row per
// attempt. Units of work touch disjoint partitions, so a failure never
// crosses agency or source boundaries.
type Importer struct {
	store    storage.Store
	adapters []feeds.Adapter
}

func NewImporter(store storage.Store, adapters []feeds.Adapter) *Importer {
	return &Importer{store: store, adapters: adapters}
}

// ImportScope narrows a run to a set of sources and/or one agency name.
// The zero value means everything.
type ImportScope struct {
	Sources map[models.Source]bool
	Agency  string
}

func (s ImportScope) allows(source models.Source) bool {
	return len(s.Sources) == 0 || s.Sources[source]
}

// Run executes one import pass. Per-unit failures are recorded in the
// activity log and never abort the pass; the returned error covers only the
// inability to enumerate agencies.
func (im *Importer) Run(ctx context.Context, scope ImportScope) error {
	agencies, err := im.store.Agencies(ctx)
	if err != nil {
		return fmt.Errorf("list agencies: %w", err)
	}

	runID := uuid.NewString()
	log.Printf("Import run %s: %d agencies", runID, len(agencies))

	for _, agency := range agencies {
		if scope.Agency != "" && !strings.EqualFold(agency.Name, scope.Agency) {
			continue
		}
		for _, adapter := range im.adapters {
			if !scope.allows(adapter.Source()) {
				continue
			}
			if !adapter.Applies(agency) {
				continue
			}
			im.runUnit(ctx, runID, agency, adapter)
		}
	}
	return nil
}

// runUnit performs the scoped replace for one (agency, source) pair.
func (im *Importer) runUnit(ctx context.Context, runID string, agency *models.Agency, adapter feeds.Adapter) {
	source := adapter.Source()
	started := time.Now().UTC()

	log.Printf("[%s] Fetching for agency %q", source, agency.Name)

	raws, err := adapter.Fetch(ctx, adapter.Credential(agency))
	if err != nil {
		log.Printf("[%s] Fetch failed for %s: %v", source, agency.Name, err)
		im.record(ctx, runID, agency.Name, source, 0, models.ActivityStatusFailed, err.Error(), started)
		return
	}

	props := make([]*models.Property, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		p, err := adapter.Map(raw, agency.Name)
		if err != nil {
			skipped++
			log.Printf("[%s] Skip item for %s: %v", source, agency.Name, err)
			continue
		}
		props = append(props, p)
	}

	added, err := im.store.ReplaceProperties(ctx, agency.Name, source, props)
	if err != nil {
		log.Printf("[%s] Commit failed for %s: %v", source, agency.Name, err)
		im.record(ctx, runID, agency.Name, source, 0, models.ActivityStatusFailed, err.Error(), started)
		return
	}

	im.record(ctx, runID, agency.Name, source, added, models.ActivityStatusOK, "", started)
	if skipped > 0 {
		log.Printf("[%s] Imported %d properties for %s (%d skipped)", source, added, agency.Name, skipped)
	} else {
		log.Printf("[%s] Imported %d properties for %s", source, added, agency.Name)
	}
}

func (im *Importer) record(ctx context.Context, runID, agencyName string, source models.Source, added int, status models.ActivityStatus, message string, started time.Time) {
	finished := time.Now().UTC()
	activity := &models.ImportActivity{
		RunID:       runID,
		AgencyName:  agencyName,
		Source:      source,
		AddedCount:  added,
		Status:      status,
		Message:     message,
		StartedAt:   started,
		FinishedAt:  finished,
		DurationSec: finished.Sub(started).Seconds(),
	}
	if err := im.store.RecordActivity(ctx, activity); err != nil {
		log.Printf("Warning: failed to record activity for %s/%s: %v", agencyName, source, err)
	}
}
