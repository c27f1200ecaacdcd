package feeds

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/4propertygraphs/PDL4/models"
)

// maxColumnLen is the varchar width of every string column in the catalog.
// Coercion happens here, in the adapters, never at the storage boundary.
const maxColumnLen = 255

// stringify renders a decoded JSON/XML value as a plain string. Numbers are
// rendered without a float suffix (decoding uses json.Number).
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// sanitize stringifies v, substituting def when the value is absent.
func sanitize(v any, def string) string {
	s := stringify(v)
	if s == "" {
		return def
	}
	return s
}

// clamp cuts s to the catalog column width.
func clamp(s string) string {
	if len(s) > maxColumnLen {
		return s[:maxColumnLen]
	}
	return s
}

// leadingInt resolves a bed/bath count from either a number or a
// leading-integer-prefixed string ("3 bed" -> 3). Unparsable input is 0.
func leadingInt(v any) int {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return clampCount(int(n))
		}
		if f, err := t.Float64(); err == nil {
			return clampCount(int(f))
		}
		return 0
	case float64:
		return clampCount(int(t))
	case int:
		return clampCount(t)
	case string:
		fields := strings.Fields(t)
		if len(fields) == 0 {
			return 0
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return clampCount(n)
		}
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return clampCount(int(f))
		}
		return 0
	default:
		return 0
	}
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// firstRaw returns the first present, non-empty value among keys.
func firstRaw(m map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// firstString is firstRaw with the winner stringified.
func firstString(m map[string]any, keys ...string) string {
	return stringify(firstRaw(m, keys...))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// joinAddress concatenates the non-empty address parts with commas.
func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ", ")
}

// photosJSON serializes up to five non-blank photo URLs as a JSON array,
// clamped like every other stored column. Empty input yields "".
func photosJSON(urls []string) string {
	kept := make([]string, 0, 5)
	for _, u := range urls {
		if u == "" {
			continue
		}
		kept = append(kept, u)
		if len(kept) == 5 {
			break
		}
	}
	if len(kept) == 0 {
		return ""
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return ""
	}
	return clamp(string(data))
}

// buildProperty applies the shared default and column-width rules every
// adapter funnels through.
func buildProperty(source models.Source, agencyName, agentName, address, price string, beds, baths int, size string, extras [4]string, mainPhoto string, photos []string, reference string) *models.Property {
	if agentName == "" {
		agentName = agencyName
	}
	if address == "" {
		address = models.UnknownAddress
	}
	if price == "" {
		price = models.NotAvailable
	}
	if size == "" {
		size = models.NotAvailable
	}
	return &models.Property{
		AgentName:  clamp(agentName),
		AgencyName: clamp(agencyName),
		Location:   clamp(address),
		Price:      clamp(price),
		Bedrooms:   beds,
		Bathrooms:  baths,
		Size:       clamp(size),
		ExtraInfo1: clamp(extras[0]),
		ExtraInfo2: clamp(extras[1]),
		ExtraInfo3: clamp(extras[2]),
		ExtraInfo4: clamp(extras[3]),
		ImageURL:   clamp(mainPhoto),
		ImageURLs:  photosJSON(photos),
		Reference:  clamp(reference),
		Source:     source,
	}
}
