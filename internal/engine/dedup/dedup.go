package dedup

import (
	"time"

	"github.com/crimson-sun/marquee/internal/model"
)

// Config controls deduplication behavior.
type Config struct {
	Window time.Duration // grouping window; 0 disables merging
}

// Deduplicator collapses events that display identically within a time window.
type Deduplicator struct {
	cfg Config
}

// New creates a Deduplicator with the given config.
func New(cfg Config) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

// group accumulates events with the same dedup key.
type group struct {
	event   model.ResolvedEvent
	count   int
	firstTS time.Time
}

// key identifies what a user sees for an event. Tombstones have no title,
// so their message stands in for it.
func key(e model.ResolvedEvent) string {
	if e.Kind == model.KindTombstone {
		return e.Kind + "\x00" + e.Message
	}
	return e.Kind + "\x00" + e.Title + "\x00" + e.Subtitle
}

// DeduplicateBatch collapses events with identical display identity whose
// timestamps fall within Window of the first one seen. Returns events in
// first-occurrence order with Count set on merged events.
func (d *Deduplicator) DeduplicateBatch(events []model.ResolvedEvent) []model.ResolvedEvent {
	if len(events) == 0 {
		return nil
	}

	var order []*group
	groups := make(map[string]*group)

	for _, e := range events {
		k := key(e)
		if g, ok := groups[k]; ok && d.cfg.Window > 0 && within(e.Timestamp.Sub(g.firstTS), d.cfg.Window) {
			g.count++
			continue
		}

		// New group: either new key or outside window.
		g := &group{event: e, count: 1, firstTS: e.Timestamp}
		groups[k] = g
		order = append(order, g)
	}

	result := make([]model.ResolvedEvent, 0, len(order))
	for _, g := range order {
		e := g.event
		if g.count > 1 {
			e.Count = g.count
		}
		result = append(result, e)
	}
	return result
}

func within(d, window time.Duration) bool {
	if d < 0 {
		d = -d
	}
	return d <= window
}
