package services

import (
	"context"
	"errors"
	"testing"

	"github.com/4propertygraphs/PDL4/feeds"
	"github.com/4propertygraphs/PDL4/models"
)

func TestLiveFetcher_PartialSourceResilience(t *testing.T) {
	store := newMemStore(&models.Agency{Name: "Coastal Homes", UniqueKey: "uk-1", MyHomeAPIKey: "mh", SitePrefix: "ABCD"})
	myhome := &fakeAdapter{source: models.SourceMyHome, fetchErr: errors.New("timeout")}
	acquaint := &fakeAdapter{source: models.SourceAcquaint, raws: []any{prop("a1", "9 Quay Rd", "300")}}

	fetcher := NewLiveFetcher(store, []feeds.Adapter{myhome, acquaint})
	items, errs, err := fetcher.Fetch(context.Background(), "uk-1", nil)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(items) != 1 || items[0].Source != models.SourceAcquaint {
		t.Fatalf("expected the healthy source's items, got %+v", items)
	}
	if len(errs) != 1 || errs[0].Source != "myhome" {
		t.Fatalf("expected one myhome error, got %+v", errs)
	}
}

func TestLiveFetcher_SourceFilter(t *testing.T) {
	store := newMemStore(&models.Agency{Name: "Coastal Homes", UniqueKey: "uk-1", MyHomeAPIKey: "mh", SitePrefix: "ABCD"})
	myhome := &fakeAdapter{source: models.SourceMyHome, raws: []any{prop("m1", "1 Main St", "100")}}
	acquaint := &fakeAdapter{source: models.SourceAcquaint, raws: []any{prop("a1", "9 Quay Rd", "300")}}

	fetcher := NewLiveFetcher(store, []feeds.Adapter{myhome, acquaint})
	filter := map[models.Source]bool{models.SourceAcquaint: true}
	items, errs, err := fetcher.Fetch(context.Background(), "uk-1", filter)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %+v", errs)
	}
	if len(items) != 1 || items[0].Source != models.SourceAcquaint {
		t.Fatalf("filter not applied, got %+v", items)
	}
}

func TestLiveFetcher_BadItemsCollected(t *testing.T) {
	store := newMemStore(&models.Agency{Name: "Coastal Homes", UniqueKey: "uk-1", MyHomeAPIKey: "mh"})
	myhome := &fakeAdapter{
		source: models.SourceMyHome,
		raws:   []any{prop("m1", "1 Main St", "100"), 42},
	}

	fetcher := NewLiveFetcher(store, []feeds.Adapter{myhome})
	items, errs, err := fetcher.Fetch(context.Background(), "uk-1", nil)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 mapped item, got %d", len(items))
	}
	if len(errs) != 1 || errs[0].Source != "myhome" {
		t.Fatalf("expected a per-item error, got %+v", errs)
	}
}

func TestLiveFetcher_UnknownAgency(t *testing.T) {
	fetcher := NewLiveFetcher(newMemStore(), nil)
	if _, _, err := fetcher.Fetch(context.Background(), "nope", nil); err == nil {
		t.Fatalf("expected error for unknown agency")
	}
}

func TestParseSourceFilter(t *testing.T) {
	if got := ParseSourceFilter(""); got != nil {
		t.Fatalf("expected nil filter, got %v", got)
	}
	got := ParseSourceFilter(" MyHome , daft ,")
	if len(got) != 2 || !got[models.SourceMyHome] || !got[models.SourceDaft] {
		t.Fatalf("unexpected filter %v", got)
	}
}
