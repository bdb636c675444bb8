// Package models defines the core domain entities: raw events, filter
// settings, templates, merged records, and notifications.
package models

// Domain identifies which pipeline an event belongs to. Each domain owns one
// event processor and one notification bus.
type Domain string

const (
	DomainCEX         Domain = "cex"
	DomainMarketStats Domain = "market_stats"
)

// Category is the fixed classification of an event. It determines which
// filter rule and which notification template apply.
type Category string

const (
	CategoryFlowAlerts            Category = "flow_alerts"
	CategoryCEXTracking           Category = "cex_tracking"
	CategoryAllSpot               Category = "all_spot"
	CategoryAllDerivatives        Category = "all_derivatives"
	CategoryAllSpotPercent        Category = "all_spot_percent"
	CategoryAllDerivativesPercent Category = "all_derivatives_percent"
	CategoryOpenInterest          Category = "open_interest"
	CategoryTopFunding            Category = "top_funding"
	CategoryGeneric               Category = "generic"
)

// CEXCategories is the closed set of categories handled by the CEX domain.
var CEXCategories = []Category{
	CategoryFlowAlerts,
	CategoryCEXTracking,
	CategoryAllSpot,
	CategoryAllDerivatives,
	CategoryAllSpotPercent,
	CategoryAllDerivativesPercent,
}

// MarketStatsCategories is the set of categories with dedicated filter rules
// in the MarketStats domain. Anything else falls back to CategoryGeneric.
var MarketStatsCategories = []Category{
	CategoryOpenInterest,
	CategoryTopFunding,
	CategoryGeneric,
}

// Domain returns the domain a category belongs to.
func (c Category) Domain() Domain {
	switch c {
	case CategoryFlowAlerts, CategoryCEXTracking, CategoryAllSpot,
		CategoryAllDerivatives, CategoryAllSpotPercent, CategoryAllDerivativesPercent:
		return DomainCEX
	default:
		return DomainMarketStats
	}
}

// ParseCEXCategory validates a raw category string against the closed CEX
// set. The CEX domain drops events outside this set.
func ParseCEXCategory(s string) (Category, bool) {
	for _, c := range CEXCategories {
		if Category(s) == c {
			return c, true
		}
	}
	return "", false
}

// ResolveMarketStatsCategory maps a MarketStats event type to its filter
// category. "top_oi" is an alias of open_interest kept from the upstream
// producers; unknown types resolve to the generic fallback.
func ResolveMarketStatsCategory(eventType string) (Category, bool) {
	switch eventType {
	case "":
		return "", false
	case "open_interest", "top_oi":
		return CategoryOpenInterest, true
	case "top_funding":
		return CategoryTopFunding, true
	default:
		return CategoryGeneric, true
	}
}
