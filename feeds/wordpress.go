package feeds

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/4propertygraphs/PDL4/models"
	"github.com/PuerkitoBio/goquery"
)

// wordpressContainerKeys locates the CPT item list in a WordPress response.
var wordpressContainerKeys = []string{"items", "results", "properties", "value"}

// WordPressAdapter reads a WordPress property CPT feed. An agency has no
// stored WordPress credential; its endpoint is guessed by matching the
// domains of the configured endpoint list against the agency's site fields.
type WordPressAdapter struct {
	client    *http.Client
	endpoints []string
}

func NewWordPressAdapter(client *http.Client, endpoints []string) *WordPressAdapter {
	return &WordPressAdapter{client: client, endpoints: endpoints}
}

func (a *WordPressAdapter) Source() models.Source { return models.SourceWordPress }

func (a *WordPressAdapter) Applies(ag *models.Agency) bool {
	return a.EndpointFor(ag) != ""
}

func (a *WordPressAdapter) Credential(ag *models.Agency) string {
	return a.EndpointFor(ag)
}

// EndpointFor returns the first configured endpoint whose domain appears in
// one of the agency's site-related fields, or "".
func (a *WordPressAdapter) EndpointFor(ag *models.Agency) string {
	if len(a.endpoints) == 0 {
		return ""
	}
	candidates := make([]string, 0, 5)
	for _, c := range []string{ag.SiteName, ag.SitePrefix, ag.Logo, ag.Address1, ag.Address2} {
		if c != "" {
			candidates = append(candidates, strings.ToLower(c))
		}
	}
	for _, ep := range a.endpoints {
		domain := strings.ToLower(domainFromURL(ep))
		if domain == "" {
			continue
		}
		for _, c := range candidates {
			if strings.Contains(c, domain) {
				return ep
			}
		}
	}
	return ""
}

func domainFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (a *WordPressAdapter) Fetch(ctx context.Context, endpoint string) ([]any, error) {
	body, err := fetchBody(ctx, a.client, a.Source(), endpoint)
	if err != nil {
		return nil, err
	}
	return itemsFromJSON(body, wordpressContainerKeys)
}

func (a *WordPressAdapter) Map(raw any, agencyName string) (*models.Property, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	// Title is the listing address; rendered rich text needs unescaping and
	// tag stripping.
	var title string
	switch t := m["title"].(type) {
	case map[string]any:
		title = htmlText(stringify(t["rendered"]))
	default:
		title = htmlText(stringify(t))
	}

	price := firstString(m, "price", "price_sold")
	status := firstString(m, "property_status", "status", "property_market")
	beds := leadingInt(firstRaw(m, "bedrooms", "beds"))
	baths := leadingInt(firstRaw(m, "bathrooms", "baths"))
	size := firstString(m, "floor_area", "size")
	propertyType := firstString(m, "property_type", "type")

	var photos []string
	if pics, isList := m["wppd_pics"].([]any); isList {
		for _, p := range pics {
			if u := stringify(p); u != "" {
				photos = append(photos, u)
			}
		}
	} else if primary := stringify(m["wppd_primary_image"]); primary != "" {
		photos = []string{primary}
	}
	mainPhoto := ""
	if len(photos) > 0 {
		mainPhoto = photos[0]
	}

	reference := stringify(m["id"])

	return buildProperty(a.Source(), agencyName, "", title, price, beds, baths, size,
		[4]string{propertyType, status, "Live", status}, mainPhoto, photos, reference), nil
}

// htmlText flattens a rendered rich-text fragment to plain text.
func htmlText(s string) string {
	s = html.UnescapeString(s)
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
