package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/4propertygraphs/PDL4/feeds"
	"github.com/4propertygraphs/PDL4/models"
	"github.com/4propertygraphs/PDL4/storage"
)

// ErrPropertyNotFound means no stored record matched the given identifier,
// neither by catalog id nor by upstream reference.
var ErrPropertyNotFound = errors.New("property not found")

// Comparator messages, surfaced verbatim to callers.
const (
	MessageDelta       = "Delta computed"
	MessageNoDelta     = "No delta detected"
	MessageNoLiveMatch = "Property not found in live feed"
)

// Projection is the minimal comparison shape for delta checks. Absent values
// normalize to "" so absent-vs-present counts as a difference.
type Projection struct {
	ID      string `json:"id"`
	Price   string `json:"price"`
	Status  string `json:"status"`
	Address string `json:"address"`
}

// NormalizeProjection projects a canonical record for comparison. The id
// prefers the upstream reference so stored and live items normalize alike;
// status comes from the status slot.
func NormalizeProjection(p *models.Property) Projection {
	if p == nil {
		return Projection{}
	}
	id := strings.TrimSpace(p.Reference)
	if id == "" && p.ID != 0 {
		id = strconv.FormatInt(p.ID, 10)
	}
	return Projection{
		ID:      id,
		Price:   strings.TrimSpace(p.Price),
		Status:  strings.TrimSpace(p.ExtraInfo2),
		Address: strings.TrimSpace(p.Location),
	}
}

// Delta is one differing comparison field.
type Delta struct {
	Field string `json:"field"`
	Local string `json:"local"`
	Live  string `json:"live"`
}

// CompareResult is the full outcome of a stored-vs-live comparison.
type CompareResult struct {
	Agency  string        `json:"agency"`
	Local   Projection    `json:"local"`
	Live    Projection    `json:"live"`
	Deltas  []Delta       `json:"deltas"`
	Errors  []SourceError `json:"errors"`
	Message string        `json:"message"`
}

// Comparator diffs a stored record against its live upstream counterpart.
// Purely diagnostic: it never writes.
type Comparator struct {
	store     storage.Store
	live      *LiveFetcher
	wordpress *feeds.WordPressAdapter
}

func NewComparator(store storage.Store, live *LiveFetcher, wordpress *feeds.WordPressAdapter) *Comparator {
	return &Comparator{store: store, live: live, wordpress: wordpress}
}

// Compare resolves the agency, locates the stored record, re-fetches live
// items from the applicable feeds, matches one to the record and diffs the
// comparison fields. When no configured feed yields a match and an explicit
// WordPress endpoint is given, that single feed is tried as a fallback.
func (c *Comparator) Compare(ctx context.Context, agencyKey, propertyID string, sourceFilter map[models.Source]bool, wordpressURL string) (*CompareResult, error) {
	agency, err := c.store.AgencyByKey(ctx, strings.TrimSpace(agencyKey))
	if err != nil {
		return nil, fmt.Errorf("resolve agency: %w", err)
	}

	local, err := c.findLocal(ctx, strings.TrimSpace(propertyID))
	if err != nil {
		return nil, err
	}
	localNorm := NormalizeProjection(local)

	liveItems, errs := c.live.fetchForAgency(ctx, agency, sourceFilter)
	match := matchLive(liveItems, propertyID, localNorm)

	if match == nil && wordpressURL != "" {
		wpRaws, err := c.wordpress.Fetch(ctx, wordpressURL)
		if err != nil {
			errs = append(errs, SourceError{Source: string(models.SourceWordPress), Error: err.Error()})
		} else {
			wpItems, wpErrs := mapRawItems(c.wordpress, wpRaws, agency.Name)
			errs = append(errs, wpErrs...)
			match = matchLive(wpItems, propertyID, localNorm)
		}
	}

	liveNorm := NormalizeProjection(match)
	deltas := diffProjections(localNorm, liveNorm)

	message := MessageNoLiveMatch
	if match != nil {
		if len(deltas) > 0 {
			message = MessageDelta
		} else {
			message = MessageNoDelta
		}
	}

	return &CompareResult{
		Agency:  agency.Name,
		Local:   localNorm,
		Live:    liveNorm,
		Deltas:  deltas,
		Errors:  errs,
		Message: message,
	}, nil
}

// findLocal tries an exact catalog id first, then the upstream reference.
func (c *Comparator) findLocal(ctx context.Context, propertyID string) (*models.Property, error) {
	if id, err := strconv.ParseInt(propertyID, 10, 64); err == nil {
		p, err := c.store.PropertyByID(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	p, err := c.store.PropertyByReference(ctx, propertyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// matchLive picks the live candidate for a stored record: exact normalized
// id first, then a case-insensitive substring match of the live address
// inside the local address.
func matchLive(items []*models.Property, requestedID string, local Projection) *models.Property {
	requestedID = strings.TrimSpace(requestedID)
	for _, item := range items {
		norm := NormalizeProjection(item)
		if norm.ID != "" && (norm.ID == requestedID || (local.ID != "" && norm.ID == local.ID)) {
			return item
		}
		if norm.Address != "" && local.Address != "" &&
			strings.Contains(strings.ToLower(local.Address), strings.ToLower(norm.Address)) {
			return item
		}
	}
	return nil
}

func diffProjections(local, live Projection) []Delta {
	var deltas []Delta
	if local.Price != live.Price {
		deltas = append(deltas, Delta{Field: "price", Local: local.Price, Live: live.Price})
	}
	if local.Status != live.Status {
		deltas = append(deltas, Delta{Field: "status", Local: local.Status, Live: live.Status})
	}
	if local.Address != live.Address {
		deltas = append(deltas, Delta{Field: "address", Local: local.Address, Live: live.Address})
	}
	return deltas
}
