// Package processor orchestrates the per-domain pipeline:
// validate → filter → merge → render → publish.
package processor

import (
	"time"

	"github.com/google/uuid"

	"github.com/cryptohawk/cryptohawk/internal/bus"
	"github.com/cryptohawk/cryptohawk/internal/filter"
	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/merge"
	"github.com/cryptohawk/cryptohawk/internal/metrics"
	"github.com/cryptohawk/cryptohawk/internal/models"
	"github.com/cryptohawk/cryptohawk/internal/render"
)

// SettingsSource supplies the per-category settings snapshot. It never fails:
// an unconfigured category yields a safe inactive default.
type SettingsSource interface {
	Get(models.Category) models.FilterSettings
}

// TemplateSource supplies the parsed template for a category or event type.
type TemplateSource interface {
	Get(key string) (models.Template, bool)
}

// Processor runs the pipeline for one domain. Process is safe for concurrent
// use; the merge store and bus carry their own locking.
type Processor struct {
	domain    models.Domain
	settings  SettingsSource
	templates TemplateSource
	store     *merge.Store
	bus       *bus.Bus
	nowFn     func() time.Time
}

// New creates a processor with its injected collaborators.
func New(domain models.Domain, settings SettingsSource, templates TemplateSource, store *merge.Store, b *bus.Bus) *Processor {
	return &Processor{
		domain:    domain,
		settings:  settings,
		templates: templates,
		store:     store,
		bus:       b,
		nowFn:     time.Now,
	}
}

// SetClock overrides the clock used for period checks and merge windows.
func (p *Processor) SetClock(nowFn func() time.Time) {
	p.nowFn = nowFn
}

// Process runs one event through the pipeline. It is fire-and-forget: every
// per-event problem is logged and absorbed, nothing is returned to the
// producer beyond the publish side effect.
func (p *Processor) Process(ev models.RawEvent) {
	metrics.EventsReceived.WithLabelValues(string(p.domain)).Inc()
	traceID := uuid.NewString()

	if err := ev.Validate(); err != nil {
		metrics.EventsRejected.WithLabelValues(string(p.domain)).Inc()
		logger.Error("%s [%s]: rejected malformed event: %v", p.domain, traceID, err)
		return
	}
	cat, ok := p.resolveCategory(ev)
	if !ok {
		metrics.EventsRejected.WithLabelValues(string(p.domain)).Inc()
		logger.Warn("%s [%s]: unknown category %q / type %q for event %q, skipped",
			p.domain, traceID, ev.Category, ev.Type, ev.EventName)
		return
	}

	now := p.nowFn()
	settings := p.settings.Get(cat)
	if !filter.Evaluate(cat, ev, settings, now) {
		metrics.EventsFiltered.WithLabelValues(string(p.domain), string(cat)).Inc()
		logger.Info("%s [%s]: event %q did not pass filter for category %q",
			p.domain, traceID, ev.EventName, cat)
		return
	}

	rec, fresh := p.store.Upsert(p.identityKey(ev), ev, now)
	if fresh {
		metrics.EventsNew.WithLabelValues(string(p.domain), string(cat)).Inc()
		logger.Info("%s [%s]: new event %q", p.domain, traceID, ev.EventName)
	} else {
		metrics.EventsMerged.WithLabelValues(string(p.domain), string(cat)).Inc()
		logger.Info("%s [%s]: merged event %q", p.domain, traceID, ev.EventName)
	}

	n := models.Notification{
		ID:            traceID,
		Domain:        p.domain,
		Category:      cat,
		Message:       p.renderMessage(cat, rec.Data),
		AttachmentURL: rec.Data.AttachmentURL,
		CreatedAt:     now,
	}
	delivered, dropped := p.bus.Publish(n)
	metrics.NotificationsPublished.WithLabelValues(string(p.domain)).Inc()
	if dropped > 0 {
		metrics.NotificationsDropped.WithLabelValues(string(p.domain)).Add(float64(dropped))
	}
	logger.Debug("%s [%s]: published notification to %d subscriber(s)", p.domain, traceID, delivered)
}

// resolveCategory validates category membership per domain. CEX events carry
// an explicit category from the closed set; MarketStats events carry a type
// that resolves to open_interest, top_funding, or the generic fallback.
func (p *Processor) resolveCategory(ev models.RawEvent) (models.Category, bool) {
	if p.domain == models.DomainCEX {
		return models.ParseCEXCategory(string(ev.Category))
	}
	return models.ResolveMarketStatsCategory(ev.Type)
}

func (p *Processor) identityKey(ev models.RawEvent) string {
	if p.domain == models.DomainCEX {
		return merge.CEXKey(ev)
	}
	return merge.MarketStatsKey(ev)
}

// renderMessage picks the template by event type, falling back to the
// category, and dumps the event structurally when neither has a template.
func (p *Processor) renderMessage(cat models.Category, data models.RawEvent) string {
	key := data.Type
	if key == "" {
		key = string(cat)
	}
	tmpl, ok := p.templates.Get(key)
	if !ok {
		logger.Debug("%s: no template for %q, using fallback dump", p.domain, key)
		return render.Fallback(p.domainLabel(), data)
	}
	return render.Render(tmpl, render.Params(data))
}

func (p *Processor) domainLabel() string {
	if p.domain == models.DomainCEX {
		return "CEX"
	}
	return "MarketStats"
}
