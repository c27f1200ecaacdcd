package feeds

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/4propertygraphs/PDL4/models"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func TestLeadingInt(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{"3 bed", 3},
		{"3", 3},
		{"2.5 bath", 2},
		{"n/a", 0},
		{"", 0},
		{nil, 0},
		{json.Number("4"), 4},
		{json.Number("2.5"), 2},
		{float64(5), 5},
		{"-2", 0},
	}
	for _, c := range cases {
		if got := leadingInt(c.in); got != c.want {
			t.Fatalf("leadingInt(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestStringify(t *testing.T) {
	if got := stringify(json.Number("495000")); got != "495000" {
		t.Fatalf("expected 495000, got %q", got)
	}
	if got := stringify(true); got != "true" {
		t.Fatalf("expected true, got %q", got)
	}
	if got := stringify(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := stringify(map[string]any{}); got != "" {
		t.Fatalf("expected empty string for non-scalar, got %q", got)
	}
}

func TestClamp(t *testing.T) {
	long := strings.Repeat("x", 300)
	if got := clamp(long); len(got) != maxColumnLen {
		t.Fatalf("expected %d chars, got %d", maxColumnLen, len(got))
	}
	if got := clamp("short"); got != "short" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestFirstRaw_SkipsBlankStrings(t *testing.T) {
	m := map[string]any{"a": "  ", "b": nil, "c": "value"}
	if got := firstString(m, "a", "b", "c"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := firstRaw(m, "a", "b"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestJoinAddress(t *testing.T) {
	got := joinAddress("Rose Cottage", "", "  Main Street ", "Ballina")
	if got != "Rose Cottage, Main Street, Ballina" {
		t.Fatalf("unexpected address %q", got)
	}
	if got := joinAddress("", "  "); got != "" {
		t.Fatalf("expected empty address, got %q", got)
	}
}

func TestPhotosJSON_CapsAtFive(t *testing.T) {
	urls := []string{"u1", "u2", "", "u3", "u4", "u5", "u6"}
	got := photosJSON(urls)

	var decoded []string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("expected JSON array, got %q: %v", got, err)
	}
	if len(decoded) != 5 {
		t.Fatalf("expected 5 photos, got %d", len(decoded))
	}
	if decoded[2] != "u3" {
		t.Fatalf("blank URL not skipped: %v", decoded)
	}
	if photosJSON(nil) != "" {
		t.Fatalf("expected empty string for no photos")
	}
}

func TestBuildProperty_Defaults(t *testing.T) {
	p := buildProperty(models.SourceMyHome, "Coastal Homes", "", "", "", 0, 0, "", [4]string{}, "", nil, "")

	if p.AgentName != "Coastal Homes" {
		t.Fatalf("expected agent to default to agency, got %q", p.AgentName)
	}
	if p.Location != models.UnknownAddress {
		t.Fatalf("expected %q, got %q", models.UnknownAddress, p.Location)
	}
	if p.Price != models.NotAvailable {
		t.Fatalf("expected %q, got %q", models.NotAvailable, p.Price)
	}
	if p.Size != models.NotAvailable {
		t.Fatalf("expected %q, got %q", models.NotAvailable, p.Size)
	}
	if p.Source != models.SourceMyHome {
		t.Fatalf("expected myhome source, got %q", p.Source)
	}
}

func TestItemsFromJSON(t *testing.T) {
	items, err := itemsFromJSON([]byte(`[{"a":1},{"b":2}]`), myhomeContainerKeys)
	if err != nil {
		t.Fatalf("top-level array failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	// An empty container earlier in the priority order is skipped.
	body := []byte(`{"SearchResults": [], "results": [{"id": 1}]}`)
	items, err = itemsFromJSON(body, myhomeContainerKeys)
	if err != nil {
		t.Fatalf("container probe failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item from results, got %d", len(items))
	}

	items, err = itemsFromJSON([]byte(`{"unrelated": true}`), myhomeContainerKeys)
	if err != nil || items != nil {
		t.Fatalf("expected empty feed for unknown container, got %v, %v", items, err)
	}

	if _, err := itemsFromJSON([]byte(`"just a string"`), myhomeContainerKeys); err == nil {
		t.Fatalf("expected shape error for scalar body")
	}
	if _, err := itemsFromJSON([]byte(`not json`), myhomeContainerKeys); err == nil {
		t.Fatalf("expected shape error for invalid JSON")
	}
}
