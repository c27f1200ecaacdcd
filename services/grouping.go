package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/4propertygraphs/PDL4/models"
	"github.com/4propertygraphs/PDL4/storage"
)

// NormalizeLocation is the grouping key: trimmed, lower-cased address.
func NormalizeLocation(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GroupOptions filters a grouped read. Filters compose; the zero value
// returns every non-empty-location group.
type GroupOptions struct {
	// AgencyKey scopes the read to one agency, resolved like every other
	// key lookup (any of the five key fields).
	AgencyKey string
	// OnlyDupes keeps groups with more than one member.
	OnlyDupes bool
	// MinCount keeps groups with at least N members; values below 1 mean 1.
	MinCount int
	// Sources keeps groups containing at least one member from the set.
	Sources map[models.Source]bool
	// Limit caps the number of groups, applied after filtering, in
	// grouping order.
	Limit int
}

// PropertyGroup is one normalized-location bucket.
type PropertyGroup struct {
	GroupKey string             `json:"group_key"`
	Count    int                `json:"count"`
	Sources  []string           `json:"sources"`
	Variants []*models.Property `json:"variants"`
}

// Grouper is the read-only aggregation over the stored catalog.
type Grouper struct {
	store storage.Store
}

func NewGrouper(store storage.Store) *Grouper {
	return &Grouper{store: store}
}

func (g *Grouper) GroupByLocation(ctx context.Context, opts GroupOptions) ([]PropertyGroup, error) {
	var props []*models.Property
	var err error
	if opts.AgencyKey != "" {
		agency, aerr := g.store.AgencyByKey(ctx, strings.TrimSpace(opts.AgencyKey))
		if aerr != nil {
			return nil, fmt.Errorf("resolve agency: %w", aerr)
		}
		props, err = g.store.PropertiesByAgency(ctx, agency.Name)
	} else {
		props, err = g.store.AllProperties(ctx)
	}
	if err != nil {
		return nil, err
	}
	return GroupProperties(props, opts), nil
}

// GroupProperties buckets records by normalized location and applies the
// composable filters. Records with an empty normalized location belong to no
// group. Group order is first-seen order of the keys.
func GroupProperties(props []*models.Property, opts GroupOptions) []PropertyGroup {
	buckets := make(map[string][]*models.Property)
	var order []string
	for _, p := range props {
		key := NormalizeLocation(p.Location)
		if key == "" {
			continue
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], p)
	}

	minCount := opts.MinCount
	if minCount < 1 {
		minCount = 1
	}

	groups := make([]PropertyGroup, 0, len(order))
	for _, key := range order {
		members := buckets[key]
		count := len(members)
		if opts.OnlyDupes && count <= 1 {
			continue
		}
		if count < minCount {
			continue
		}

		sources := distinctSources(members)
		if len(opts.Sources) > 0 && !anySourceIn(sources, opts.Sources) {
			continue
		}

		groups = append(groups, PropertyGroup{
			GroupKey: key,
			Count:    count,
			Sources:  sources,
			Variants: members,
		})
		if opts.Limit > 0 && len(groups) == opts.Limit {
			break
		}
	}
	return groups
}

func distinctSources(members []*models.Property) []string {
	seen := make(map[string]bool)
	for _, m := range members {
		if m.Source != "" {
			seen[strings.ToLower(string(m.Source))] = true
		}
	}
	sources := make([]string, 0, len(seen))
	for s := range seen {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

func anySourceIn(sources []string, want map[models.Source]bool) bool {
	for _, s := range sources {
		if want[models.Source(s)] {
			return true
		}
	}
	return false
}
