// Package filter decides, per category, whether a raw event proceeds to
// notification. All predicates are pure functions of the event, the settings
// snapshot, and an explicitly passed clock reading.
package filter

import (
	"time"

	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Thresholds used by the cex_tracking rule. The buy/sell difference must
// reach the absolute floor and, when a daily volume is known, at least this
// share of it.
const (
	buySellDiffFloor   = 100_000.0
	buySellVolumeShare = 0.1
	rate5Threshold     = 5.0
	rate10Threshold    = 10.0
	rate60Threshold    = 1.0
	fundingMaxEventAge = 4 * time.Hour
)

// volumePeriods maps the period bucket labels of the spot/derivatives
// categories to their durations.
var volumePeriods = map[string]time.Duration{
	models.Period5Min:  5 * time.Minute,
	models.Period30Min: 30 * time.Minute,
	models.Period60Min: 60 * time.Minute,
	models.Period24Hrs: 24 * time.Hour,
}

// Evaluate reports whether the event passes the category's rule under the
// given settings. Inputs are never mutated. Unknown categories fail and are
// logged; the processor has already validated membership, so hitting the
// default arm indicates a category was added without a rule.
func Evaluate(cat models.Category, ev models.RawEvent, st models.FilterSettings, now time.Time) bool {
	if !st.Active {
		return false
	}

	switch cat {
	case models.CategoryFlowAlerts:
		return coinFiltersPass(ev, st)
	case models.CategoryCEXTracking:
		return evaluateCEXTracking(ev, st)
	case models.CategoryAllSpot, models.CategoryAllDerivatives:
		return evaluateVolume(ev, st, now)
	case models.CategoryAllSpotPercent, models.CategoryAllDerivativesPercent:
		return evaluateVolumePercent(ev, st, now)
	case models.CategoryOpenInterest:
		return evaluateOpenInterest(ev, st)
	case models.CategoryTopFunding:
		return evaluateTopFunding(ev, st, now)
	case models.CategoryGeneric:
		return true
	default:
		logger.Warn("filter: no rule for category %q, dropping event %q", cat, ev.EventName)
		return false
	}
}

// coinFiltersPass applies the favorite allow-list and unwanted deny-list.
// The deny-list takes precedence: an asset on both lists fails.
func coinFiltersPass(ev models.RawEvent, st models.FilterSettings) bool {
	if st.IsUnwanted(ev.Asset) {
		return false
	}
	return st.IsFavorite(ev.Asset)
}

// evaluateCEXTracking ANDs together whichever optional threshold checks are
// enabled. With no checks enabled the event passes once the coin filters
// clear (permissive default).
func evaluateCEXTracking(ev models.RawEvent, st models.FilterSettings) bool {
	if !coinFiltersPass(ev, st) {
		return false
	}
	if st.Rate5 && !metricAtLeast(ev, models.MetricPriceChangePerc, rate5Threshold) {
		return false
	}
	if st.Rate10 && !metricAtLeast(ev, models.MetricPriceChangePerc, rate10Threshold) {
		return false
	}
	if st.Rate60 && !metricAtLeast(ev, models.MetricPriceChangePerc1Min, rate60Threshold) {
		return false
	}
	if st.Activate && !activationPass(ev) {
		return false
	}
	return true
}

// activationPass checks the buy/sell difference against the absolute floor
// and, when a daily volume is present, against the relative share of it.
func activationPass(ev models.RawEvent) bool {
	diff, ok := ev.Metric(models.MetricBuySellDiff)
	if !ok || diff < buySellDiffFloor {
		return false
	}
	if vol, ok := ev.Metric(models.MetricDailyVolume); ok && diff < buySellVolumeShare*vol {
		return false
	}
	return true
}

// evaluateVolume handles all_spot and all_derivatives: the event's side must
// match an enabled side toggle and its age must fall within at least one
// enabled period bucket.
func evaluateVolume(ev models.RawEvent, st models.FilterSettings, now time.Time) bool {
	if !sideMatches(ev, st) {
		return false
	}
	return withinAnyPeriod(ev, st, now)
}

// evaluateVolumePercent uses the same pass/fail logic as the non-percent
// categories. MinPercentChange is an opt-in gate that defaults to disabled;
// the percent-change metric otherwise only feeds the renderer.
func evaluateVolumePercent(ev models.RawEvent, st models.FilterSettings, now time.Time) bool {
	if !evaluateVolume(ev, st, now) {
		return false
	}
	if st.MinPercentChange > 0 && !metricAtLeast(ev, models.MetricPercentChange, st.MinPercentChange) {
		return false
	}
	return true
}

func sideMatches(ev models.RawEvent, st models.FilterSettings) bool {
	if !st.Buy && !st.Sell {
		return false
	}
	switch ev.Side {
	case models.SideBuy:
		return st.Buy
	case models.SideSell:
		return st.Sell
	default:
		return false
	}
}

func withinAnyPeriod(ev models.RawEvent, st models.FilterSettings, now time.Time) bool {
	age := now.Sub(ev.Time())
	for label, d := range volumePeriods {
		if st.HasPeriod(label) && age <= d {
			return true
		}
	}
	return false
}

// evaluateOpenInterest requires a configured window (15min/30min) whose
// change metric is present and matches the direction mode; when thresholds
// are configured the absolute change must also meet one of them in at least
// one enabled window.
func evaluateOpenInterest(ev models.RawEvent, st models.FilterSettings) bool {
	windows := []struct {
		period string
		metric string
	}{
		{models.Period15Min, models.MetricOIChangePerc15},
		{models.Period30Min, models.MetricOIChangePerc30},
	}

	valid := false
	for _, w := range windows {
		if valid || !st.HasPeriod(w.period) {
			continue
		}
		if v, ok := ev.Metric(w.metric); ok && directionMatches(v, st.Mode) {
			valid = true
		}
	}
	if !valid {
		return false
	}

	if len(st.ChangeFilters) == 0 {
		return true
	}
	for _, w := range windows {
		if !st.HasPeriod(w.period) {
			continue
		}
		v, ok := ev.Metric(w.metric)
		if !ok {
			continue
		}
		for _, th := range st.ChangeFilters {
			if abs(v) >= th {
				return true
			}
		}
	}
	return false
}

// evaluateTopFunding matches the funding-rate sign against the mode and, when
// the 4h period constraint is configured, caps the event age.
func evaluateTopFunding(ev models.RawEvent, st models.FilterSettings, now time.Time) bool {
	rate, ok := ev.Metric(models.MetricFundingRate)
	if !ok {
		return false
	}
	if !fundingModeMatches(rate, st.Mode) {
		return false
	}
	if st.HasPeriod(models.Period4H) && now.Sub(ev.Time()) > fundingMaxEventAge {
		return false
	}
	return true
}

func directionMatches(v float64, mode string) bool {
	switch mode {
	case models.ModeGainers:
		return v > 0
	case models.ModeLosers:
		return v < 0
	case models.ModeBoth:
		return true
	default:
		return false
	}
}

func fundingModeMatches(rate float64, mode string) bool {
	switch mode {
	case models.ModeHighest:
		return rate > 0
	case models.ModeLowest:
		return rate < 0
	case models.ModeBoth:
		return true
	default:
		return false
	}
}

// metricAtLeast fails when the metric is absent: a missing numeric fails the
// rule that needs it.
func metricAtLeast(ev models.RawEvent, name string, threshold float64) bool {
	v, ok := ev.Metric(name)
	return ok && abs(v) >= threshold
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
