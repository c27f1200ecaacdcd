package models

import "strings"

// Agency is owned by the API layer; the importer only reads its key fields
// to decide which feeds apply.
type Agency struct {
	ID                 int64  `json:"id" db:"id"`
	Name               string `json:"name" db:"name"`
	Address1           string `json:"address1" db:"address1"`
	Address2           string `json:"address2" db:"address2"`
	Logo               string `json:"logo" db:"logo"`
	SiteName           string `json:"site_name" db:"site_name"`
	SitePrefix         string `json:"site_prefix" db:"site_prefix"`
	MyHomeAPIKey       string `json:"myhome_api_key" db:"myhome_api_key"`
	DaftAPIKey         string `json:"daft_api_key" db:"daft_api_key"`
	UniqueKey          string `json:"key" db:"unique_key"`
	AcquaintSitePrefix string `json:"acquaint_site_prefix" db:"acquaint_site_prefix"`
	PrimarySource      string `json:"primary_source" db:"primary_source"`
}

// AcquaintPrefix returns the 4-char datafeed prefix, preferring site_prefix.
func (a *Agency) AcquaintPrefix() string {
	if p := strings.TrimSpace(a.SitePrefix); p != "" {
		return p
	}
	return strings.TrimSpace(a.AcquaintSitePrefix)
}

// DaftKey returns the Daft/4PM API key, falling back to the unique key.
func (a *Agency) DaftKey() string {
	if k := strings.TrimSpace(a.DaftAPIKey); k != "" {
		return k
	}
	return strings.TrimSpace(a.UniqueKey)
}
