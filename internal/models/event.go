package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Well-known metric names carried in RawEvent.Metrics. Producers are free to
// attach additional metrics; these are the ones the filter rules read.
const (
	MetricPriceChangePerc     = "priceChangePerc"
	MetricPriceChangePerc1Min = "priceChangePerc1min"
	MetricBuySellDiff         = "buySellDiff"
	MetricDailyVolume         = "dailyVolume"
	MetricOIChangePerc15      = "oiChangePerc15"
	MetricOIChangePerc30      = "oiChangePerc30"
	MetricFundingRate         = "fundingRate"
	MetricPercentChange       = "percentChange"
)

// Event sides for spot/derivatives volume events.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// RawEvent is a single observation submitted by a producer. It passes through
// the pipeline once and is never mutated after being merged into a
// MergedRecord.
type RawEvent struct {
	Category      Category           `json:"category,omitempty"`
	Type          string             `json:"type,omitempty"`
	EventName     string             `json:"event"`
	Asset         string             `json:"asset,omitempty"`
	Exchange      string             `json:"exchange,omitempty"`
	Side          string             `json:"side,omitempty"`
	Timestamp     int64              `json:"timestamp"` // epoch milliseconds
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Extra         map[string]string  `json:"extra,omitempty"`
	AttachmentURL string             `json:"attachment_url,omitempty"`
}

// Metric returns a named metric and whether it is present.
func (e RawEvent) Metric(name string) (float64, bool) {
	v, ok := e.Metrics[name]
	return v, ok
}

// Time returns the observation instant.
func (e RawEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Validate performs the minimal shape checks the pipeline relies on.
// Category/type resolution is domain-specific and handled by the processor.
func (e RawEvent) Validate() error {
	if e.EventName == "" {
		return errors.New("event name must not be empty")
	}
	if e.Timestamp < 0 {
		return errors.New("timestamp must not be negative")
	}
	// NaN and infinities are not JSON-encodable, so they would break identity
	// key derivation downstream; producers sending them get the event dropped.
	for name, v := range e.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("metric %q is not a finite number", name)
		}
	}
	return nil
}

// MergedRecord is the coalescing state for one identity key. At most one
// record exists per key; a record older than the merge window is expired and
// never reused.
type MergedRecord struct {
	Key        string
	Data       RawEvent
	LastUpdate time.Time
}
