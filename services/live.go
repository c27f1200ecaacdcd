package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/4propertygraphs/PDL4/feeds"
	"github.com/4propertygraphs/PDL4/models"
	"github.com/4propertygraphs/PDL4/storage"
)

// SourceError is one source's failure in a fan-out read. Read paths return
// whatever succeeded plus these, never an all-or-nothing error.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// LiveFetcher re-fetches fresh items from every feed an agency is wired to,
// without touching the catalog.
type LiveFetcher struct {
	agencies storage.AgencyStore
	adapters []feeds.Adapter
}

func NewLiveFetcher(agencies storage.AgencyStore, adapters []feeds.Adapter) *LiveFetcher {
	return &LiveFetcher{agencies: agencies, adapters: adapters}
}

// Fetch resolves the agency by any known key field and fans out to every
// applicable adapter, optionally narrowed by sourceFilter. Adapter failures
// are collected per source; the items of the sources that succeeded are
// still returned.
func (l *LiveFetcher) Fetch(ctx context.Context, agencyKey string, sourceFilter map[models.Source]bool) ([]*models.Property, []SourceError, error) {
	agency, err := l.agencies.AgencyByKey(ctx, strings.TrimSpace(agencyKey))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve agency: %w", err)
	}
	items, errs := l.fetchForAgency(ctx, agency, sourceFilter)
	return items, errs, nil
}

func (l *LiveFetcher) fetchForAgency(ctx context.Context, agency *models.Agency, sourceFilter map[models.Source]bool) ([]*models.Property, []SourceError) {
	var items []*models.Property
	var errs []SourceError

	for _, adapter := range l.adapters {
		source := adapter.Source()
		if len(sourceFilter) > 0 && !sourceFilter[source] {
			continue
		}
		if !adapter.Applies(agency) {
			continue
		}

		raws, err := adapter.Fetch(ctx, adapter.Credential(agency))
		if err != nil {
			errs = append(errs, SourceError{Source: string(source), Error: err.Error()})
			continue
		}
		mapped, mapErrs := mapRawItems(adapter, raws, agency.Name)
		items = append(items, mapped...)
		errs = append(errs, mapErrs...)
	}
	return items, errs
}

// mapRawItems maps a fetched batch, collecting per-item failures instead of
// aborting the batch.
func mapRawItems(adapter feeds.Adapter, raws []any, agencyName string) ([]*models.Property, []SourceError) {
	var items []*models.Property
	var errs []SourceError
	for _, raw := range raws {
		p, err := adapter.Map(raw, agencyName)
		if err != nil {
			errs = append(errs, SourceError{Source: string(adapter.Source()), Error: err.Error()})
			continue
		}
		items = append(items, p)
	}
	return items, errs
}

// ParseSourceFilter turns a comma-separated source list into a filter set.
// Empty input means no filter.
func ParseSourceFilter(raw string) map[models.Source]bool {
	filter := make(map[models.Source]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			filter[models.Source(part)] = true
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}
