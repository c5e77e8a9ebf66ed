package alignment

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnknownCharacter is returned when a character has no alignment record.
var ErrUnknownCharacter = errors.New("unknown character")

type entry struct {
	mu  sync.Mutex
	rec *Record
}

// Tracker owns per-character alignment records. Updates to a single
// character are serialized by that character's lock; the delta-then-clamp
// rule is order-sensitive at the bounds.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewTracker creates an empty alignment tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*entry)}
}

// Register creates a record for the character if one does not exist.
func (t *Tracker) Register(character string, initial float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[character]; ok {
		return
	}
	t.entries[character] = &entry{rec: &Record{
		Character: character,
		Value:     clamp(initial),
	}}
}

// Restore replaces a character's record wholesale, for loading persisted
// state on startup.
func (t *Tracker) Restore(rec *Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *rec
	cp.Value = clamp(cp.Value)
	t.entries[rec.Character] = &entry{rec: &cp}
}

// Get returns a copy of the character's record.
func (t *Tracker) Get(character string) (*Record, error) {
	t.mu.RLock()
	e, ok := t.entries[character]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharacter, character)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *e.rec
	cp.History = append([]Shift(nil), e.rec.History...)
	return &cp, nil
}

// Exists reports whether the character has an alignment record.
func (t *Tracker) Exists(character string) bool {
	t.mu.RLock()
	_, ok := t.entries[character]
	t.mu.RUnlock()
	return ok
}

// Apply shifts the character's alignment by delta, clamps the result, and
// appends the shift to history. Unknown characters are registered at
// neutral first so an action never fails on a fresh character.
func (t *Tracker) Apply(character string, delta float64, cause string) (*Record, error) {
	t.mu.RLock()
	e, ok := t.entries[character]
	t.mu.RUnlock()
	if !ok {
		t.Register(character, 0)
		t.mu.RLock()
		e = t.entries[character]
		t.mu.RUnlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rec.Value = clamp(e.rec.Value + delta)
	e.rec.History = append(e.rec.History, Shift{
		Timestamp: time.Now().UTC(),
		Delta:     delta,
		Cause:     cause,
	})

	cp := *e.rec
	cp.History = append([]Shift(nil), e.rec.History...)
	return &cp, nil
}

func clamp(v float64) float64 {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}
