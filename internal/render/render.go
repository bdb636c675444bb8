// Package render turns a notification template and a flat data record into
// the final message text.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Sentinel substituted for placeholders with no value.
const missingValue = "N/A"

// Render concatenates the template title and body with a blank line, then
// replaces every {{name}} token for each declared parameter with the value
// from data, or "N/A" when absent. Placeholders not listed in the template's
// parameters are left untouched.
func Render(tmpl models.Template, data map[string]string) string {
	msg := tmpl.Title + "\n\n" + tmpl.Message
	for _, param := range tmpl.Parameters {
		val, ok := data[param]
		if !ok || val == "" {
			val = missingValue
		}
		msg = strings.ReplaceAll(msg, "{{"+param+"}}", val)
	}
	return msg
}

// Fallback produces the structural dump used when no template exists for an
// event's category or type: a label line followed by the event's fields in
// deterministic order.
func Fallback(label string, ev models.RawEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Event: %s\n", label, ev.EventName)

	writeField := func(name, val string) {
		if val != "" {
			fmt.Fprintf(&b, "  %s: %s\n", name, val)
		}
	}
	writeField("category", string(ev.Category))
	writeField("type", ev.Type)
	writeField("asset", ev.Asset)
	writeField("exchange", ev.Exchange)
	writeField("side", ev.Side)
	if ev.Timestamp > 0 {
		writeField("timestamp", ev.Time().UTC().Format(time.RFC3339))
	}
	for _, name := range sortedKeys(ev.Metrics) {
		writeField(name, FormatMetric(ev.Metrics[name]))
	}
	for _, name := range sortedStringKeys(ev.Extra) {
		writeField(name, ev.Extra[name])
	}
	return strings.TrimRight(b.String(), "\n")
}

// Params flattens a merged event into the placeholder set the templates
// expect: identity fields, a formatted timestamp, every metric by name, and
// any producer-supplied extras such as commentary.
func Params(ev models.RawEvent) map[string]string {
	data := map[string]string{
		"event":    ev.EventName,
		"asset":    ev.Asset,
		"exchange": ev.Exchange,
		"side":     ev.Side,
		"category": string(ev.Category),
		"type":     ev.Type,
	}
	if ev.Timestamp > 0 {
		data["timestamp"] = ev.Time().UTC().Format("2006-01-02 15:04:05")
	}
	for name, v := range ev.Metrics {
		data[name] = FormatMetric(v)
	}
	for name, v := range ev.Extra {
		data[name] = v
	}
	return data
}

// FormatMetric renders a metric value without trailing zeros.
func FormatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
