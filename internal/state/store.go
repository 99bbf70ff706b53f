// Package state holds the interaction state shared by every chart view.
package state

import "sync"

// ZoomRange is a [Min, Max] window over the lap distance domain.
type ZoomRange struct {
	Min, Max float64
}

// Store is the single source of truth for cross-chart interaction state:
// cursor distance, lap selection, corner selection, and the zoom window.
// Any view may write; every view reads each write. Writes are
// last-write-wins and the fields are orthogonal — setting one never
// changes another.
//
// One Store is constructed per dashboard run and injected into the views;
// it is not a package global.
type Store struct {
	mu sync.RWMutex

	cursorDistance float64
	hasCursor      bool

	selectedLaps   []int // ordered, unique
	selectedCorner int   // corner number, 0 = none

	zoom       *ZoomRange
	fullExtent ZoomRange
	hasExtent  bool

	subs    map[int]func()
	nextSub int
}

// NewStore creates an empty interaction store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func())}
}

// Snapshot is a consistent copy of the store at one instant. Views take
// one snapshot per frame so all overlays within a frame observe the same
// state.
type Snapshot struct {
	CursorDistance float64
	HasCursor      bool
	SelectedLaps   []int
	SelectedCorner int
	Zoom           *ZoomRange
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	laps := make([]int, len(s.selectedLaps))
	copy(laps, s.selectedLaps)

	var zoom *ZoomRange
	if s.zoom != nil {
		z := *s.zoom
		zoom = &z
	}

	return Snapshot{
		CursorDistance: s.cursorDistance,
		HasCursor:      s.hasCursor,
		SelectedLaps:   laps,
		SelectedCorner: s.selectedCorner,
		Zoom:           zoom,
	}
}

// SetCursorDistance moves the shared cursor to a lap distance.
func (s *Store) SetCursorDistance(distance float64) {
	s.mu.Lock()
	s.cursorDistance = distance
	s.hasCursor = true
	s.mu.Unlock()
	s.notify()
}

// ClearCursor removes the cursor (pointer left the plot bounds).
func (s *Store) ClearCursor() {
	s.mu.Lock()
	changed := s.hasCursor
	s.cursorDistance = 0
	s.hasCursor = false
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// CursorDistance returns the cursor distance and whether a cursor is set.
func (s *Store) CursorDistance() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorDistance, s.hasCursor
}

// SelectLaps replaces the selected lap set, preserving order and
// dropping duplicates. The first lap is the reference lap.
func (s *Store) SelectLaps(laps []int) {
	unique := make([]int, 0, len(laps))
	seen := make(map[int]bool, len(laps))
	for _, lap := range laps {
		if seen[lap] {
			continue
		}
		seen[lap] = true
		unique = append(unique, lap)
	}

	s.mu.Lock()
	s.selectedLaps = unique
	s.mu.Unlock()
	s.notify()
}

// SelectedLaps returns a copy of the selected lap numbers in order.
func (s *Store) SelectedLaps() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	laps := make([]int, len(s.selectedLaps))
	copy(laps, s.selectedLaps)
	return laps
}

// SelectCorner sets the selected corner number; 0 clears the selection.
func (s *Store) SelectCorner(number int) {
	s.mu.Lock()
	s.selectedCorner = number
	s.mu.Unlock()
	s.notify()
}

// SelectedCorner returns the selected corner number, 0 when none.
func (s *Store) SelectedCorner() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedCorner
}

// SetFullExtent records the full distance domain of the loaded session,
// used to normalize trivial zoom ranges.
func (s *Store) SetFullExtent(min, max float64) {
	s.mu.Lock()
	s.fullExtent = ZoomRange{Min: min, Max: max}
	s.hasExtent = true
	s.mu.Unlock()
}

// SetZoomRange sets the shared zoom window. Inverted bounds are swapped.
// A range covering the full extent normalizes to nil ("not zoomed") so
// scales derived from nil and from the literal full range render
// identically.
func (s *Store) SetZoomRange(min, max float64) {
	if max < min {
		min, max = max, min
	}

	s.mu.Lock()
	if s.hasExtent && coversExtent(min, max, s.fullExtent) {
		s.zoom = nil
	} else {
		s.zoom = &ZoomRange{Min: min, Max: max}
	}
	s.mu.Unlock()
	s.notify()
}

// ClearZoom resets to the full distance extent.
func (s *Store) ClearZoom() {
	s.mu.Lock()
	changed := s.zoom != nil
	s.zoom = nil
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Zoom returns a copy of the zoom window, or nil for full extent.
func (s *Store) Zoom() *ZoomRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.zoom == nil {
		return nil
	}
	z := *s.zoom
	return &z
}

// FullExtent returns the recorded distance domain.
func (s *Store) FullExtent() (ZoomRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fullExtent, s.hasExtent
}

// Subscribe registers a callback invoked after every state change. The
// returned id can be passed to Unsubscribe. Callbacks run synchronously
// on the writer's goroutine and outside the store lock.
func (s *Store) Subscribe(fn func()) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return id
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// coversExtent reports whether [min, max] covers the full extent within
// a relative tolerance.
func coversExtent(min, max float64, full ZoomRange) bool {
	span := full.Max - full.Min
	if span <= 0 {
		return true
	}
	eps := span * 1e-6
	return min <= full.Min+eps && max >= full.Max-eps
}
