package faction

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownFaction is returned when a referenced faction key does not
// exist in the registry. This is caller error or stale client state.
var ErrUnknownFaction = errors.New("unknown faction")

// ErrNoFactionsRegistered indicates an empty registry. This is a setup
// defect, not a gameplay state.
var ErrNoFactionsRegistered = errors.New("no factions registered")

type entry struct {
	mu sync.Mutex
	f  *Faction
}

// Registry is the owned, in-memory table of faction state. Updates are
// serialized per faction: each entry carries its own lock, and multi-entry
// updates acquire locks in sorted key order so a primary delta and its
// rival propagation land atomically with respect to other events.
type Registry struct {
	mu      sync.RWMutex // guards the map structure, not entry contents
	entries map[string]*entry
}

// NewRegistry creates an empty faction registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Upsert adds or replaces a faction record.
func (r *Registry) Upsert(f *Faction) error {
	if err := f.Validate(); err != nil {
		return err
	}
	cp := *f
	cp.Clamp()

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[cp.Key]; ok {
		e.mu.Lock()
		e.f = &cp
		e.mu.Unlock()
		return nil
	}
	r.entries[cp.Key] = &entry{f: &cp}
	return nil
}

// Get returns a copy of the faction record for the given key.
func (r *Registry) Get(key string) (*Faction, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFaction, key)
	}

	e.mu.Lock()
	cp := *e.f
	e.mu.Unlock()
	return &cp, nil
}

// Exists reports whether the key is registered.
func (r *Registry) Exists(key string) bool {
	r.mu.RLock()
	_, ok := r.entries[key]
	r.mu.RUnlock()
	return ok
}

// Len returns the number of registered factions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns point-in-time copies of all factions, sorted by key.
// Each copy is taken under that faction's lock, so no value is torn
// mid-update. Readers need no cross-entity lock.
func (r *Registry) Snapshot() []*Faction {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)

	out := make([]*Faction, 0, len(keys))
	for _, k := range keys {
		if f, err := r.Get(k); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Update applies fn to the factions named by keys while holding all of
// their locks. Locks are acquired in sorted key order to keep multi-entry
// updates deadlock-free and order-independent. fn receives live records;
// mutations are clamped and timestamped on release.
func (r *Registry) Update(keys []string, fn func(map[string]*Faction) error) error {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	sort.Strings(uniq)

	r.mu.RLock()
	locked := make([]*entry, 0, len(uniq))
	live := make(map[string]*Faction, len(uniq))
	for _, k := range uniq {
		e, ok := r.entries[k]
		if !ok {
			r.mu.RUnlock()
			return fmt.Errorf("%w: %s", ErrUnknownFaction, k)
		}
		locked = append(locked, e)
		live[k] = e.f
	}
	r.mu.RUnlock()

	for _, e := range locked {
		e.mu.Lock()
	}
	defer func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].mu.Unlock()
		}
	}()

	// Re-read under lock; Upsert may have swapped the record.
	for i, k := range uniq {
		live[k] = locked[i].f
	}

	if err := fn(live); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, f := range live {
		f.Clamp()
		f.UpdatedAt = now
	}
	return nil
}

// Momentum is an aggregate restlessness metric for the whole galaxy:
// total awareness plus a bonus for factions at reputation extremes,
// capped at 100.
func (r *Registry) Momentum() float64 {
	var total float64
	for _, f := range r.Snapshot() {
		total += f.Awareness
		if f.Reputation > 60 || f.Reputation < -60 {
			total += 20
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}
