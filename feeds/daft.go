package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/4propertygraphs/PDL4/models"
)

const defaultDaftBaseURL = "https://daftapi.4pm.ie/property"

// DaftAdapter reads the Daft/4PM property API (JSON). The payload is either
// a bare list or an object whose list values are concatenated.
type DaftAdapter struct {
	client  *http.Client
	baseURL string
}

func NewDaftAdapter(client *http.Client, baseURL string) *DaftAdapter {
	if baseURL == "" {
		baseURL = defaultDaftBaseURL
	}
	return &DaftAdapter{client: client, baseURL: baseURL}
}

func (a *DaftAdapter) Source() models.Source { return models.SourceDaft }

func (a *DaftAdapter) Applies(ag *models.Agency) bool {
	if strings.EqualFold(strings.TrimSpace(ag.PrimarySource), "4pm") || strings.TrimSpace(ag.DaftAPIKey) != "" {
		return ag.DaftKey() != ""
	}
	return false
}

func (a *DaftAdapter) Credential(ag *models.Agency) string {
	return ag.DaftKey()
}

func (a *DaftAdapter) Fetch(ctx context.Context, key string) ([]any, error) {
	endpoint := fmt.Sprintf("%s?key=%s", a.baseURL, url.QueryEscape(key))
	body, err := fetchBody(ctx, a.client, a.Source(), endpoint)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseShape, err)
	}

	switch v := data.(type) {
	case []any:
		return v, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var combined []any
		for _, k := range keys {
			if list, ok := v[k].([]any); ok {
				combined = append(combined, list...)
			}
		}
		return combined, nil
	default:
		return nil, ErrResponseShape
	}
}

func (a *DaftAdapter) Map(raw any, agencyName string) (*models.Property, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	address := firstString(m, "full_address", "address")
	price := firstString(m, "price", "rent")
	beds := leadingInt(firstRaw(m, "bedrooms", "beds"))
	baths := leadingInt(firstRaw(m, "bathrooms", "baths"))
	size := firstString(m, "square_metres", "sq_ft", "acres")

	propertyType := firstString(m, "property_type", "house_type")
	status := "For Sale"
	if daftAgreed(m["agreed"]) {
		status = "Agreed"
	}
	saleType := firstString(m, "selling_type", "price_type")
	if saleType == "" {
		saleType = status
	}

	photos := make([]string, 0, 5)
	for _, key := range []string{"large_thumbnail_url", "medium_thumbnail_url", "small_thumbnail_url", "ipad_search_url", "ipad_gallery_url"} {
		if u := stringify(m[key]); u != "" {
			photos = append(photos, u)
		}
	}
	mainPhoto := ""
	if len(photos) > 0 {
		mainPhoto = photos[0]
	}

	agent := firstString(m, "agent", "Agent")
	reference := firstString(m, "id", "property_id", "daft_id")

	return buildProperty(a.Source(), agencyName, agent, address, price, beds, baths, size,
		[4]string{propertyType, status, "Live", saleType}, mainPhoto, photos, reference), nil
}

// daftAgreed derives the sale-agreed flag from whatever scalar the feed puts
// in "agreed" (0/1, "0"/"1", bool).
func daftAgreed(v any) bool {
	s := strings.TrimSpace(stringify(v))
	if s == "" || s == "0" {
		return false
	}
	return !strings.EqualFold(s, "false")
}
