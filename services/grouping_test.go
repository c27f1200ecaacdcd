package services

import (
	"context"
	"testing"

	"github.com/4propertygraphs/PDL4/models"
)

func groupFixture() []*models.Property {
	return []*models.Property{
		{ID: 1, AgencyName: "A", Location: "14 The Green, Malahide", Source: models.SourceMyHome},
		{ID: 2, AgencyName: "A", Location: "  14 the green, malahide ", Source: models.SourceDaft},
		{ID: 3, AgencyName: "A", Location: "9 Quay Rd, Westport", Source: models.SourceAcquaint},
		{ID: 4, AgencyName: "B", Location: "", Source: models.SourceMyHome},
		{ID: 5, AgencyName: "B", Location: "14 The Green, Malahide", Source: models.SourceMyHome},
	}
}

func TestGroupProperties_ByNormalizedLocation(t *testing.T) {
	groups := GroupProperties(groupFixture(), GroupOptions{})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// First-seen order: the Malahide group precedes Westport.
	first := groups[0]
	if first.GroupKey != "14 the green, malahide" {
		t.Fatalf("unexpected group key %q", first.GroupKey)
	}
	if first.Count != 3 || len(first.Variants) != 3 {
		t.Fatalf("expected 3 members, got %d", first.Count)
	}
	if len(first.Sources) != 2 || first.Sources[0] != "daft" || first.Sources[1] != "myhome" {
		t.Fatalf("unexpected sources %v", first.Sources)
	}

	// Two records are in the same group iff their normalized locations match,
	// so the empty-location record lands nowhere.
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	if total != 4 {
		t.Fatalf("expected 4 grouped records, got %d", total)
	}
}

func TestGroupProperties_OnlyDupes(t *testing.T) {
	groups := GroupProperties(groupFixture(), GroupOptions{OnlyDupes: true})
	if len(groups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(groups))
	}
	if groups[0].Count != 3 {
		t.Fatalf("unexpected count %d", groups[0].Count)
	}

	// OnlyDupes is equivalent to filtering the unfiltered result by count > 1.
	all := GroupProperties(groupFixture(), GroupOptions{})
	var kept int
	for _, g := range all {
		if g.Count > 1 {
			kept++
		}
	}
	if kept != len(groups) {
		t.Fatalf("OnlyDupes disagrees with post-filter: %d vs %d", len(groups), kept)
	}
}

func TestGroupProperties_MinCountAndSources(t *testing.T) {
	groups := GroupProperties(groupFixture(), GroupOptions{MinCount: 3})
	if len(groups) != 1 || groups[0].Count != 3 {
		t.Fatalf("expected only the 3-member group, got %v", groups)
	}

	groups = GroupProperties(groupFixture(), GroupOptions{
		Sources: map[models.Source]bool{models.SourceAcquaint: true},
	})
	if len(groups) != 1 || groups[0].GroupKey != "9 quay rd, westport" {
		t.Fatalf("expected only the acquaint group, got %v", groups)
	}

	// Filters compose: dupes plus an acquaint requirement matches nothing.
	groups = GroupProperties(groupFixture(), GroupOptions{
		OnlyDupes: true,
		Sources:   map[models.Source]bool{models.SourceAcquaint: true},
	})
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}

func TestGroupProperties_Limit(t *testing.T) {
	groups := GroupProperties(groupFixture(), GroupOptions{Limit: 1})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].GroupKey != "14 the green, malahide" {
		t.Fatalf("limit should keep grouping order, got %q", groups[0].GroupKey)
	}
}

func TestGrouperGroupByLocation_AgencyScope(t *testing.T) {
	store := newMemStore(&models.Agency{Name: "Coastal Homes", UniqueKey: "uk-1"})
	ctx := context.Background()
	store.ReplaceProperties(ctx, "Coastal Homes", models.SourceMyHome, []*models.Property{
		{AgencyName: "Coastal Homes", Location: "1 Main St", Source: models.SourceMyHome},
	})
	store.ReplaceProperties(ctx, "Other Agency", models.SourceMyHome, []*models.Property{
		{AgencyName: "Other Agency", Location: "2 Side St", Source: models.SourceMyHome},
	})

	grouper := NewGrouper(store)
	groups, err := grouper.GroupByLocation(ctx, GroupOptions{AgencyKey: "uk-1"})
	if err != nil {
		t.Fatalf("group failed: %v", err)
	}
	if len(groups) != 1 || groups[0].GroupKey != "1 main st" {
		t.Fatalf("expected only the scoped agency's group, got %v", groups)
	}

	if _, err := grouper.GroupByLocation(ctx, GroupOptions{AgencyKey: "missing"}); err == nil {
		t.Fatalf("expected error for unknown agency key")
	}
}
