package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/4propertygraphs/PDL4/models"
)

const defaultAcquaintBaseURL = "https://www.acquaintcrm.co.uk/datafeeds/standardxml"

// AcquaintAdapter reads the Acquaint CRM standard XML datafeed, keyed by a
// 4-character site prefix.
type AcquaintAdapter struct {
	client  *http.Client
	baseURL string
}

func NewAcquaintAdapter(client *http.Client, baseURL string) *AcquaintAdapter {
	if baseURL == "" {
		baseURL = defaultAcquaintBaseURL
	}
	return &AcquaintAdapter{client: client, baseURL: baseURL}
}

func (a *AcquaintAdapter) Source() models.Source { return models.SourceAcquaint }

func (a *AcquaintAdapter) Applies(ag *models.Agency) bool {
	return ag.AcquaintPrefix() != ""
}

func (a *AcquaintAdapter) Credential(ag *models.Agency) string {
	return ag.AcquaintPrefix()
}

func (a *AcquaintAdapter) Fetch(ctx context.Context, prefix string) ([]any, error) {
	url := fmt.Sprintf("%s/%s-0.xml", a.baseURL, prefix)
	body, err := fetchBody(ctx, a.client, a.Source(), url)
	if err != nil {
		return nil, err
	}
	items, err := parseAcquaintFeed(body)
	if err != nil {
		return nil, err
	}
	raws := make([]any, len(items))
	for i, item := range items {
		raws[i] = item
	}
	return raws, nil
}

// parseAcquaintFeed decodes the fixed data>properties>property layout. A
// feed holding a lone <property> element still decodes to a one-element
// slice, so callers never see a bare object.
func parseAcquaintFeed(body []byte) ([]acquaintItem, error) {
	var feed acquaintFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseShape, err)
	}
	return feed.Properties.Property, nil
}

type acquaintFeed struct {
	XMLName    xml.Name `xml:"data"`
	Properties struct {
		Property []acquaintItem `xml:"property"`
	} `xml:"properties"`
}

// acquaintItem carries every element the mapper probes. Address parts live
// under <address> in newer feeds and at the property root in older ones.
type acquaintItem struct {
	Reference string `xml:"uniquereferencenumber"`
	ID        string `xml:"id"`

	Address struct {
		PropertyName string `xml:"propertyname"`
		Street       string `xml:"street"`
		Locality     string `xml:"locality"`
		Town         string `xml:"town"`
		Region       string `xml:"region"`
		Postcode     string `xml:"postcode"`
	} `xml:"address"`
	PropertyName string `xml:"propertyname"`
	Street       string `xml:"street"`
	StreetName   string `xml:"streetname"`
	Locality     string `xml:"locality"`
	City         string `xml:"city"`
	County       string `xml:"county"`
	Region       string `xml:"region"`
	Postcode     string `xml:"postcode"`
	PostalCode   string `xml:"postalcode"`

	Price        string `xml:"price"`
	DisplayPrice string `xml:"displayprice"`
	AskingPrice  string `xml:"askingprice"`
	Amount       string `xml:"amount"`

	Beds     string `xml:"beds"`
	Bedrooms string `xml:"bedrooms"`
	Bed      string `xml:"bed"`
	Baths    string `xml:"baths"`
	Bathrooms string `xml:"bathrooms"`
	Bath     string `xml:"bath"`

	Size      string `xml:"size"`
	FloorArea string `xml:"floorarea"`
	Area      string `xml:"area"`

	Type         string `xml:"type"`
	PropertyType string `xml:"propertytype"`
	Status       string `xml:"status"`
	SaleType     string `xml:"saletype"`
	Tenure       string `xml:"tenure"`

	Agent      string `xml:"agent"`
	Negotiator string `xml:"negotiator"`
	Agency     string `xml:"agency"`

	Images struct {
		Image []acquaintImage `xml:"image"`
	} `xml:"images"`
	Image acquaintImage `xml:"image"`
}

// acquaintImage tolerates the URL arriving as an attribute, a child element
// or bare character data.
type acquaintImage struct {
	URLAttr string `xml:"url,attr"`
	URL     string `xml:"url"`
	Text    string `xml:",chardata"`
}

func (img acquaintImage) value() string {
	return firstNonEmpty(img.URLAttr, img.URL, img.Text)
}

func (a *AcquaintAdapter) Map(raw any, agencyName string) (*models.Property, error) {
	item, ok := raw.(acquaintItem)
	if !ok {
		return nil, errNotObject
	}

	address := joinAddress(
		firstNonEmpty(item.Address.PropertyName, item.PropertyName),
		firstNonEmpty(item.Address.Street, item.Street, item.StreetName),
		firstNonEmpty(item.Address.Locality, item.Locality),
		firstNonEmpty(item.Address.Town, item.City, item.County),
		firstNonEmpty(item.Address.Region, item.Region),
		firstNonEmpty(item.Address.Postcode, item.Postcode, item.PostalCode),
	)

	price := firstNonEmpty(item.Price, item.DisplayPrice, item.AskingPrice, item.Amount)
	beds := leadingInt(firstNonEmpty(item.Beds, item.Bedrooms, item.Bed))
	baths := leadingInt(firstNonEmpty(item.Baths, item.Bathrooms, item.Bath))
	size := firstNonEmpty(item.Size, item.FloorArea, item.Area)

	propertyType := firstNonEmpty(item.Type, item.PropertyType)
	status := firstNonEmpty(item.Status, "For Sale")
	saleType := firstNonEmpty(item.SaleType, item.Tenure, status)

	var photos []string
	for _, img := range item.Images.Image {
		if u := img.value(); u != "" {
			photos = append(photos, u)
		}
	}
	if len(photos) == 0 {
		if u := item.Image.value(); u != "" {
			photos = []string{u}
		}
	}
	mainPhoto := ""
	if len(photos) > 0 {
		mainPhoto = photos[0]
	}

	agent := firstNonEmpty(item.Agent, item.Negotiator, item.Agency)
	reference := firstNonEmpty(item.Reference, item.ID)

	return buildProperty(a.Source(), agencyName, agent, address, price, beds, baths, size,
		[4]string{propertyType, status, "Live", saleType}, mainPhoto, photos, reference), nil
}
