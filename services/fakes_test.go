package services

import (
	"context"
	"errors"
	"sync"

	"github.com/4propertygraphs/PDL4/models"
	"github.com/4propertygraphs/PDL4/storage"
)

// memStore is an in-memory storage.Store with the same scoped-replace
// semantics as the real backends.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	props    []*models.Property
	agencies []*models.Agency
	activity []*models.ImportActivity

	replaceErr error
}

func newMemStore(agencies ...*models.Agency) *memStore {
	s := &memStore{nextID: 1}
	for i, a := range agencies {
		cp := *a
		cp.ID = int64(i + 1)
		s.agencies = append(s.agencies, &cp)
	}
	return s
}

func (s *memStore) ReplaceProperties(ctx context.Context, agencyName string, source models.Source, props []*models.Property) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.replaceErr != nil {
		return 0, s.replaceErr
	}

	kept := s.props[:0]
	for _, p := range s.props {
		if p.AgencyName == agencyName && p.Source == source {
			continue
		}
		kept = append(kept, p)
	}
	s.props = kept

	for _, p := range props {
		cp := *p
		cp.ID = s.nextID
		s.nextID++
		s.props = append(s.props, &cp)
	}
	return len(props), nil
}

func (s *memStore) AllProperties(ctx context.Context) ([]*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Property(nil), s.props...), nil
}

func (s *memStore) PropertiesByAgency(ctx context.Context, agencyName string) ([]*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Property
	for _, p := range s.props {
		if p.AgencyName == agencyName {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) PropertyByID(ctx context.Context, id int64) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.props {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) PropertyByReference(ctx context.Context, reference string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.props {
		if p.Reference == reference {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) Agencies(ctx context.Context) ([]*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Agency(nil), s.agencies...), nil
}

func (s *memStore) AgencyByKey(ctx context.Context, key string) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agencies {
		if key != "" && (a.UniqueKey == key || a.MyHomeAPIKey == key || a.DaftAPIKey == key ||
			a.SitePrefix == key || a.AcquaintSitePrefix == key) {
			return a, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) RecordActivity(ctx context.Context, a *models.ImportActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.ID = int64(len(s.activity) + 1)
	s.activity = append(s.activity, &cp)
	return nil
}

func (s *memStore) RecentActivity(ctx context.Context, limit int) ([]*models.ImportActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ImportActivity
	for i := len(s.activity) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.activity[i])
	}
	return out, nil
}

func (s *memStore) LatestActivity(ctx context.Context) (*models.ImportActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.activity) == 0 {
		return nil, storage.ErrNotFound
	}
	return s.activity[len(s.activity)-1], nil
}

func (s *memStore) Close() error { return nil }

// fakeAdapter serves canned raw items; Map expects each raw to be a
// *models.Property template and stamps the agency name onto a copy.
type fakeAdapter struct {
	source   models.Source
	raws     []any
	fetchErr error
}

func (f *fakeAdapter) Source() models.Source { return f.source }

func (f *fakeAdapter) Applies(a *models.Agency) bool { return f.Credential(a) != "" }

func (f *fakeAdapter) Credential(a *models.Agency) string {
	switch f.source {
	case models.SourceMyHome:
		return a.MyHomeAPIKey
	case models.SourceAcquaint:
		return a.AcquaintPrefix()
	case models.SourceDaft:
		return a.DaftKey()
	default:
		return a.SiteName
	}
}

func (f *fakeAdapter) Fetch(ctx context.Context, credential string) ([]any, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.raws, nil
}

func (f *fakeAdapter) Map(raw any, agencyName string) (*models.Property, error) {
	tmpl, ok := raw.(*models.Property)
	if !ok {
		return nil, errors.New("raw item is not an object")
	}
	cp := *tmpl
	cp.AgencyName = agencyName
	cp.Source = f.source
	return &cp, nil
}

func prop(reference, location, price string) *models.Property {
	return &models.Property{
		Reference:  reference,
		Location:   location,
		Price:      price,
		ExtraInfo2: "For Sale",
	}
}
