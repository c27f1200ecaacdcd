package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/4propertygraphs/PDL4/models"
)

const (
	defaultMyHomeBaseURL  = "https://agentapi.myhome.ie/search"
	defaultMyHomePageSize = 50
)

// myhomeContainerKeys is the priority order for locating the result list in
// a MyHome search response.
var myhomeContainerKeys = []string{"SearchResults", "results", "Properties", "items", "properties"}

// MyHomeAdapter reads the MyHome agent search API (JSON).
type MyHomeAdapter struct {
	client   *http.Client
	baseURL  string
	pageSize int
}

func NewMyHomeAdapter(client *http.Client, baseURL string, pageSize int) *MyHomeAdapter {
	if baseURL == "" {
		baseURL = defaultMyHomeBaseURL
	}
	if pageSize <= 0 {
		pageSize = defaultMyHomePageSize
	}
	return &MyHomeAdapter{client: client, baseURL: baseURL, pageSize: pageSize}
}

func (a *MyHomeAdapter) Source() models.Source { return models.SourceMyHome }

func (a *MyHomeAdapter) Applies(ag *models.Agency) bool {
	return a.Credential(ag) != ""
}

func (a *MyHomeAdapter) Credential(ag *models.Agency) string {
	return strings.TrimSpace(ag.MyHomeAPIKey)
}

func (a *MyHomeAdapter) Fetch(ctx context.Context, apiKey string) ([]any, error) {
	url := fmt.Sprintf("%s/%s?format=json&correlationId=%s&PageSize=%d&PropertyClassIds=1",
		a.baseURL, apiKey, apiKey, a.pageSize)
	body, err := fetchBody(ctx, a.client, a.Source(), url)
	if err != nil {
		return nil, err
	}
	return itemsFromJSON(body, myhomeContainerKeys)
}

func (a *MyHomeAdapter) Map(raw any, agencyName string) (*models.Property, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	address := firstString(m, "DisplayAddress", "displayAddress", "OrderedDisplayAddress", "SeoDisplayAddress")
	price := firstString(m, "PriceAsString", "price", "formattedPrice", "displayPrice")
	beds := leadingInt(firstRaw(m, "BedsString", "beds", "bedrooms"))
	baths := leadingInt(firstRaw(m, "BathString", "baths", "bathrooms"))
	size := firstString(m, "SizeStringMeters", "size", "floorArea")

	propertyType := firstString(m, "PropertyClass", "PropertyClassUrlSlug", "propertyType", "type")
	status := firstString(m, "PropertyStatus")
	if status == "" {
		status = "For Sale"
	}
	state := "Live"
	if active, isBool := m["IsActive"].(bool); isBool && !active {
		state = "Inactive"
	}
	saleType := firstString(m, "SaleTypeId", "SaleType")
	if saleType == "" {
		saleType = status
	}

	photos := photoURLsFrom(firstRaw(m, "Photos", "photos", "images"))
	mainPhoto := firstString(m, "MainPhoto")
	if mainPhoto == "" && len(photos) > 0 {
		mainPhoto = photos[0]
	}

	agent := firstString(m, "GroupName", "Group", "agentName")
	reference := firstString(m, "PropertyId", "propertyId", "Id", "id")

	return buildProperty(a.Source(), agencyName, agent, address, price, beds, baths, size,
		[4]string{propertyType, status, state, saleType}, mainPhoto, photos, reference), nil
}

// photoURLsFrom accepts the photo container shapes MyHome is known to emit:
// a list of URLs, a list of objects, or a dict of lists.
func photoURLsFrom(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			if inner, isList := firstRaw(m, "items", "large").([]any); isList {
				list = inner
			}
		}
	}
	var urls []string
	for _, p := range list {
		switch t := p.(type) {
		case string:
			urls = append(urls, t)
		case map[string]any:
			if u := firstString(t, "url", "src", "large"); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
