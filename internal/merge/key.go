package merge

import (
	"encoding/json"
	"fmt"

	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Identity keys are a canonical JSON encoding of the fields that define "the
// same occurrence" for merging. encoding/json serializes map keys in sorted
// order, so two events with the same metrics in different insertion order
// derive the same key, and the structural encoding keeps distinct semantic
// events from colliding the way a display string could.

type cexKeyFields struct {
	Event   string             `json:"event"`
	Metrics map[string]float64 `json:"metrics"`
}

type marketStatsKeyFields struct {
	Event   string             `json:"event"`
	Type    string             `json:"type"`
	Metrics map[string]float64 `json:"metrics"`
}

// CEXKey derives the identity key for a CEX event: the pair of event name
// and metrics snapshot.
func CEXKey(ev models.RawEvent) string {
	return encodeKey(cexKeyFields{Event: ev.EventName, Metrics: ev.Metrics})
}

// MarketStatsKey derives the identity key for a MarketStats event: the
// triple of event name, type, and metrics snapshot.
func MarketStatsKey(ev models.RawEvent) string {
	return encodeKey(marketStatsKeyFields{Event: ev.EventName, Type: ev.Type, Metrics: ev.Metrics})
}

func encodeKey(fields any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		// Key fields are strings and float maps; Marshal cannot fail on them.
		panic(fmt.Sprintf("merge: key encoding failed: %v", err))
	}
	return string(b)
}
