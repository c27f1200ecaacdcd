package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/4propertygraphs/PDL4/models"
)

// Adapter is one upstream feed: a network fetch plus a pure per-item mapping
// into the canonical property record. Map substitutes documented defaults for
// missing or malformed fields; it only errors when the raw item itself is not
// usable (wrong shape for the source), and such items are skipped by callers
// without failing the batch.
type Adapter interface {
	Source() models.Source
	// Applies reports whether the agency carries the credential this feed
	// needs. Adapter selection is key-presence dispatch, not inheritance.
	Applies(a *models.Agency) bool
	// Credential extracts the fetch credential (API key, site prefix or
	// endpoint URL) from the agency record.
	Credential(a *models.Agency) string
	Fetch(ctx context.Context, credential string) ([]any, error)
	Map(raw any, agencyName string) (*models.Property, error)
}

// ErrResponseShape marks a 2xx response whose body matches no known
// container shape for the source.
var ErrResponseShape = errors.New("unexpected response shape")

// errNotObject marks a raw item that is not an object of the source's kind.
var errNotObject = errors.New("raw item is not an object")

// FetchError wraps a network or HTTP failure reaching a source.
type FetchError struct {
	Source models.Source
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch %s: status %d", e.Source, e.URL, e.Status)
	}
	return fmt.Sprintf("%s fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// fetchBody issues a GET and returns the body, or a FetchError on network
// failure or non-2xx status.
func fetchBody(ctx context.Context, client *http.Client, source models.Source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Source: source, URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	return body, nil
}

// itemsFromJSON decodes a feed body and locates the item list. A top-level
// array is the list itself; a top-level object is probed with containerKeys
// in priority order, first non-empty match wins. An object with no known
// container parses as an empty feed. Anything else is a shape error.
func itemsFromJSON(body []byte, containerKeys []string) ([]any, error) {
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
		for _, key := range containerKeys {
			if list, ok := v[key].([]any); ok && len(list) > 0 {
				return list, nil
			}
		}
		return nil, nil
	default:
		return nil, ErrResponseShape
	}
}
