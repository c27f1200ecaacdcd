package models

// Source identifies the upstream feed a property record came from.
type Source string

const (
	SourceMyHome    Source = "myhome"
	SourceAcquaint  Source = "acquaint"
	SourceDaft      Source = "daft"
	SourceWordPress Source = "wordpress"
	SourceUnknown   Source = "unknown"
)

// ParseSource maps a free-form source name to a known tag.
func ParseSource(s string) Source {
	switch Source(s) {
	case SourceMyHome, SourceAcquaint, SourceDaft, SourceWordPress:
		return Source(s)
	default:
		return SourceUnknown
	}
}

// Property is the canonical record every feed adapter normalizes into.
// Every string field is already clamped to the 255-char column width by the
// adapter that produced it; the store never re-coerces.
type Property struct {
	ID         int64  `json:"id" db:"id"`
	AgentName  string `json:"agency_agent_name" db:"agency_agent_name"`
	AgencyName string `json:"agency_name" db:"agency_name"`
	Location   string `json:"house_location" db:"house_location"`
	Price      string `json:"house_price" db:"house_price"`
	Bedrooms   int    `json:"house_bedrooms" db:"house_bedrooms"`
	Bathrooms  int    `json:"house_bathrooms" db:"house_bathrooms"`
	Size       string `json:"house_mt_squared" db:"house_mt_squared"`
	// Generic extra slots. By convention: 1=property type, 2=status,
	// 3=live state, 4=sale type. Not enforced by the schema.
	ExtraInfo1 string `json:"house_extra_info_1" db:"house_extra_info_1"`
	ExtraInfo2 string `json:"house_extra_info_2" db:"house_extra_info_2"`
	ExtraInfo3 string `json:"house_extra_info_3" db:"house_extra_info_3"`
	ExtraInfo4 string `json:"house_extra_info_4" db:"house_extra_info_4"`
	ImageURL   string `json:"agency_image_url" db:"agency_image_url"`
	// ImageURLs is a JSON array of up to five photo URLs; empty means absent.
	ImageURLs string `json:"images_url_house" db:"images_url_house"`
	// Reference carries the upstream listing id so live items can be
	// matched back to stored records.
	Reference string `json:"reference" db:"reference"`
	Source    Source `json:"source" db:"source"`
}

// SourceLabel mirrors Source for API consumers.
func (p *Property) SourceLabel() string {
	if p.Source == "" {
		return string(SourceUnknown)
	}
	return string(p.Source)
}

const (
	// UnknownAddress is the sentinel location for items with no address field.
	UnknownAddress = "Unknown address"
	// NotAvailable is the default for absent price/size strings.
	NotAvailable = "N/A"
)
