package render

import (
	"strings"
	"testing"

	"github.com/cryptohawk/cryptohawk/internal/models"
)

func TestRender(t *testing.T) {
	tmpl := models.Template{
		Title:      "Alert",
		Message:    "Asset: {{asset}}, Volume: {{volume}}",
		Parameters: []string{"asset", "volume"},
	}

	tests := []struct {
		name string
		data map[string]string
		want string
	}{
		{
			name: "all parameters present",
			data: map[string]string{"asset": "BTC", "volume": "1200"},
			want: "Alert\n\nAsset: BTC, Volume: 1200",
		},
		{
			name: "missing parameter renders the sentinel",
			data: map[string]string{"asset": "BTC"},
			want: "Alert\n\nAsset: BTC, Volume: N/A",
		},
		{
			name: "empty value renders the sentinel",
			data: map[string]string{"asset": "BTC", "volume": ""},
			want: "Alert\n\nAsset: BTC, Volume: N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tmpl, tt.data); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_UndeclaredPlaceholderUntouched(t *testing.T) {
	tmpl := models.Template{
		Title:      "Alert",
		Message:    "{{asset}} and {{mystery}}",
		Parameters: []string{"asset"},
	}
	got := Render(tmpl, map[string]string{"asset": "BTC", "mystery": "value"})
	if !strings.Contains(got, "{{mystery}}") {
		t.Errorf("placeholder not in parameters must stay literal, got %q", got)
	}
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	tmpl := models.Template{
		Title:      "{{asset}}",
		Message:    "{{asset}} again",
		Parameters: []string{"asset"},
	}
	want := "BTC\n\nBTC again"
	if got := Render(tmpl, map[string]string{"asset": "BTC"}); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestFallback(t *testing.T) {
	ev := models.RawEvent{
		Category:  models.CategoryFlowAlerts,
		EventName: "whale_move",
		Asset:     "BTC",
		Timestamp: 1_700_000_000_000,
		Metrics:   map[string]float64{"volume": 1200.5, "amount": 3},
	}
	got := Fallback("CEX", ev)

	if !strings.HasPrefix(got, "CEX Event: whale_move\n") {
		t.Errorf("unexpected header in %q", got)
	}
	for _, want := range []string{"asset: BTC", "volume: 1200.5", "amount: 3", "timestamp: 2023-11-14T22:13:20Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("Fallback() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "exchange") {
		t.Error("empty fields must be omitted")
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("trailing newline must be trimmed")
	}

	// Metric ordering is deterministic.
	if strings.Index(got, "amount") > strings.Index(got, "volume") {
		t.Error("metrics must be listed in sorted order")
	}
}

func TestParams(t *testing.T) {
	ev := models.RawEvent{
		Category:  models.CategoryOpenInterest,
		Type:      "open_interest",
		EventName: "oi_shift",
		Asset:     "ETH",
		Side:      models.SideSell,
		Timestamp: 1_700_000_000_000,
		Metrics:   map[string]float64{models.MetricOIChangePerc15: -6.25},
		Extra:     map[string]string{"additionalInfo": "squeeze"},
	}
	data := Params(ev)

	want := map[string]string{
		"event":                     "oi_shift",
		"asset":                     "ETH",
		"side":                      models.SideSell,
		"type":                      "open_interest",
		"timestamp":                 "2023-11-14 22:13:20",
		models.MetricOIChangePerc15: "-6.25",
		"additionalInfo":            "squeeze",
	}
	for k, v := range want {
		if data[k] != v {
			t.Errorf("Params()[%q] = %q, want %q", k, data[k], v)
		}
	}
}

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1200, "1200"},
		{0.0003, "0.0003"},
		{-6.5, "-6.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatMetric(tt.in); got != tt.want {
			t.Errorf("FormatMetric(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
