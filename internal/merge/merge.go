// Package merge coalesces near-duplicate events that share an identity key
// and arrive within a bounded time window, so producer bursts yield a single
// evolving notification stream instead of a flood.
package merge

import (
	"context"
	"sync"
	"time"

	"github.com/cryptohawk/cryptohawk/internal/models"
)

// DefaultWindow is the span during which events with the same identity key
// are merged into one record.
const DefaultWindow = 30 * time.Second

// Store holds at most one MergedRecord per identity key. Expiry is checked
// lazily on upsert; Sweep offers explicit eviction for callers that want to
// bound growth between upserts.
type Store struct {
	mu      sync.Mutex
	window  time.Duration
	records map[string]models.MergedRecord
}

// NewStore creates a store with the given merge window. A non-positive
// window falls back to DefaultWindow.
func NewStore(window time.Duration) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		window:  window,
		records: make(map[string]models.MergedRecord),
	}
}

// Window returns the merge window.
func (s *Store) Window() time.Duration {
	return s.window
}

// Upsert folds the event into the record for key. When no live record exists
// (none, or the existing one last updated a full window or more ago) a fresh
// record is started and fresh is true. Otherwise the event's fields are
// shallow-merged on top of the record's data, the later event winning on
// conflicts. The returned record is a copy; callers render from it.
func (s *Store) Upsert(key string, ev models.RawEvent, now time.Time) (rec models.MergedRecord, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[key]
	if !ok || now.Sub(existing.LastUpdate) >= s.window {
		rec = models.MergedRecord{Key: key, Data: cloneEvent(ev), LastUpdate: now}
		s.records[key] = rec
		return rec, true
	}

	existing.Data = mergeEvent(existing.Data, ev)
	existing.LastUpdate = now
	s.records[key] = existing
	return existing, false
}

// Len returns the number of records currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Sweep evicts records whose last update is a full window or more old and
// returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, rec := range s.records {
		if now.Sub(rec.LastUpdate) >= s.window {
			delete(s.records, key)
			n++
		}
	}
	return n
}

// StartSweeper evicts expired records every interval until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.window
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				s.Sweep(t)
			}
		}
	}()
}

// mergeEvent shallow-merges ev on top of base. Scalar fields take the new
// value when the new event carries one; metric and extra maps merge per key
// with the new event winning.
func mergeEvent(base, ev models.RawEvent) models.RawEvent {
	out := cloneEvent(base)

	if ev.Category != "" {
		out.Category = ev.Category
	}
	if ev.Type != "" {
		out.Type = ev.Type
	}
	if ev.EventName != "" {
		out.EventName = ev.EventName
	}
	if ev.Asset != "" {
		out.Asset = ev.Asset
	}
	if ev.Exchange != "" {
		out.Exchange = ev.Exchange
	}
	if ev.Side != "" {
		out.Side = ev.Side
	}
	if ev.Timestamp != 0 {
		out.Timestamp = ev.Timestamp
	}
	if ev.AttachmentURL != "" {
		out.AttachmentURL = ev.AttachmentURL
	}
	for name, v := range ev.Metrics {
		if out.Metrics == nil {
			out.Metrics = make(map[string]float64, len(ev.Metrics))
		}
		out.Metrics[name] = v
	}
	for name, v := range ev.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(ev.Extra))
		}
		out.Extra[name] = v
	}
	return out
}

// cloneEvent copies the event so records never alias producer-owned maps.
func cloneEvent(ev models.RawEvent) models.RawEvent {
	out := ev
	if ev.Metrics != nil {
		out.Metrics = make(map[string]float64, len(ev.Metrics))
		for name, v := range ev.Metrics {
			out.Metrics[name] = v
		}
	}
	if ev.Extra != nil {
		out.Extra = make(map[string]string, len(ev.Extra))
		for name, v := range ev.Extra {
			out.Extra[name] = v
		}
	}
	return out
}
