package templates

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemplates(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write templates file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemplates(t, `{
		"flow_alerts": {
			"title": "Flow Alert",
			"message": "Asset: {{asset}}",
			"parameters": ["asset"]
		},
		"top_funding": {
			"title": "Funding",
			"message": "Rate: {{fundingRate}}",
			"parameters": ["fundingRate"]
		}
	}`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	tmpl, ok := s.Get("flow_alerts")
	if !ok {
		t.Fatal("Get(flow_alerts) not found")
	}
	if tmpl.Title != "Flow Alert" || len(tmpl.Parameters) != 1 {
		t.Errorf("unexpected template: %+v", tmpl)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get must report absent keys")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load() must fail on a missing file")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeTemplates(t, `{"flow_alerts": `)
	if _, err := Load(path); err == nil {
		t.Error("Load() must fail on malformed JSON")
	}
}

func TestLoad_EmptyTemplate(t *testing.T) {
	path := writeTemplates(t, `{"flow_alerts": {"parameters": ["asset"]}}`)
	if _, err := Load(path); err == nil {
		t.Error("Load() must reject a template with neither title nor message")
	}
}
