package models

// Period bucket labels accepted in FilterSettings.Periods. The spot and
// derivatives categories use the first four; open_interest uses the 15/30
// minute windows and top_funding the 4 hour cap.
const (
	Period5Min  = "5min"
	Period15Min = "15min"
	Period30Min = "30min"
	Period60Min = "60min"
	Period24Hrs = "24hrs"
	Period4H    = "4h"
)

// Direction modes for open_interest and top_funding.
const (
	ModeGainers = "gainers"
	ModeLosers  = "losers"
	ModeHighest = "highest"
	ModeLowest  = "lowest"
	ModeBoth    = "both"
)

// FilterSettings is the per-category, per-audience configuration the filter
// engine evaluates against. The pipeline reads whole-value snapshots; edits
// go through the settings store.
type FilterSettings struct {
	Active bool `json:"active"`

	// Coin filters. Favorite is an allow-list ignored when empty; unwanted
	// is a deny-list and takes precedence.
	FavoriteCoins []string `json:"favorite_coins,omitempty"`
	UnwantedCoins []string `json:"unwanted_coins,omitempty"`
	AutoTrack     bool     `json:"auto_track,omitempty"`

	// cex_tracking threshold toggles.
	Rate5    bool `json:"rate5,omitempty"`
	Rate10   bool `json:"rate10,omitempty"`
	Rate60   bool `json:"rate60,omitempty"`
	Activate bool `json:"activate,omitempty"`

	// Side toggles for all_spot / all_derivatives and percent variants.
	Buy  bool `json:"buy,omitempty"`
	Sell bool `json:"sell,omitempty"`

	// Enabled period buckets, see the Period* constants.
	Periods []string `json:"periods,omitempty"`

	// Direction mode for open_interest (gainers/losers/both) and
	// top_funding (highest/lowest/both).
	Mode string `json:"mode,omitempty"`

	// Absolute change thresholds for open_interest; an event passes when at
	// least one threshold is met in at least one enabled window.
	ChangeFilters []float64 `json:"change_filters,omitempty"`

	// Extension point for the percent categories. Zero disables the gate so
	// percent variants behave exactly like their non-percent counterpart.
	MinPercentChange float64 `json:"min_percent_change,omitempty"`
}

// HasPeriod reports whether a period bucket is enabled.
func (s FilterSettings) HasPeriod(p string) bool {
	for _, q := range s.Periods {
		if q == p {
			return true
		}
	}
	return false
}

// IsFavorite reports whether asset clears the allow-list. An empty list
// allows everything.
func (s FilterSettings) IsFavorite(asset string) bool {
	if len(s.FavoriteCoins) == 0 {
		return true
	}
	for _, c := range s.FavoriteCoins {
		if c == asset {
			return true
		}
	}
	return false
}

// IsUnwanted reports whether asset is on the deny-list.
func (s FilterSettings) IsUnwanted(asset string) bool {
	for _, c := range s.UnwantedCoins {
		if c == asset {
			return true
		}
	}
	return false
}
