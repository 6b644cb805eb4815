package store

import (
	"strings"
	"sync"

	"github.com/showdeskhq/showdesk/internal/model"
)

// Preferences are simple UI settings that survive restarts alongside the
// collections.
type Preferences struct {
	LargeText            bool            `json:"large_text"`
	NotificationsEnabled bool            `json:"notifications_enabled"`
	NotificationSound    bool            `json:"notification_sound"`
	RecentSearches       []string        `json:"recent_searches"`
	SelectedStation      model.StationID `json:"selected_station"`
	SelectedDay          string          `json:"selected_day"`
}

// Snapshot is the full local state: the five synced collections, preferences,
// and a few ephemeral UI flags that are never persisted.
type Snapshot struct {
	Preferences

	Schedule     []model.ScheduleSlot `json:"schedule"`
	Clips        []model.ClipMarker   `json:"clips"`
	Notes        []model.Note         `json:"notes"`
	Deliverables []model.Deliverable  `json:"deliverables"`
	Completions  []model.Completion   `json:"completions"`

	// ephemeral
	SearchOpen      bool     `json:"-"`
	ClipModalOpen   bool     `json:"-"`
	SelectedClipIDs []string `json:"-"`
}

// Patch is a shallow merge into the snapshot: nil fields are left untouched,
// non-nil fields replace the whole field. Collections are always replaced
// wholesale, never merged element-wise.
type Patch struct {
	LargeText            *bool
	NotificationsEnabled *bool
	NotificationSound    *bool
	RecentSearches       *[]string
	SelectedStation      *model.StationID
	SelectedDay          *string

	Schedule     *[]model.ScheduleSlot
	Clips        *[]model.ClipMarker
	Notes        *[]model.Note
	Deliverables *[]model.Deliverable
	Completions  *[]model.Completion

	SearchOpen      *bool
	ClipModalOpen   *bool
	SelectedClipIDs *[]string
}

// Store is the single shared mutable state object. Writers are last-write-wins
// at the field level; there is no merge conflict detection. Consumers treat
// returned snapshots as read-only.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	version uint64
	subs    []func(Snapshot)
	persist *persister
	closed  bool
}

// Open rehydrates the store from the state directory. A missing or corrupt
// blob falls back to the default snapshot without error.
func Open(stateDir string) (*Store, error) {
	p, err := newPersister(stateDir)
	if err != nil {
		return nil, err
	}
	s := &Store{persist: p}
	s.snap = p.load()
	return s, nil
}

// NewMemory returns a store with no durable backing, for tests.
func NewMemory() *Store {
	return &Store{snap: defaultSnapshot()}
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		Preferences: Preferences{
			NotificationsEnabled: true,
			NotificationSound:    true,
			SelectedStation:      model.StationSigning,
		},
	}
}

// Get returns the current snapshot.
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Set shallow-merges the patch and notifies subscribers. Calls after Close are
// dropped: an in-flight fetch finishing during teardown must not write to a
// store that is already gone.
func (s *Store) Set(p Patch) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.apply(p)
	s.version++
	version := s.version
	snap := s.snap
	subs := make([]func(Snapshot), len(s.subs))
	copy(subs, s.subs)
	persist := s.persist
	s.mu.Unlock()

	if persist != nil {
		persist.save(snap, version)
	}
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) apply(p Patch) {
	if p.LargeText != nil {
		s.snap.LargeText = *p.LargeText
	}
	if p.NotificationsEnabled != nil {
		s.snap.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.NotificationSound != nil {
		s.snap.NotificationSound = *p.NotificationSound
	}
	if p.RecentSearches != nil {
		s.snap.RecentSearches = *p.RecentSearches
	}
	if p.SelectedStation != nil {
		s.snap.SelectedStation = *p.SelectedStation
	}
	if p.SelectedDay != nil {
		s.snap.SelectedDay = *p.SelectedDay
	}
	if p.Schedule != nil {
		s.snap.Schedule = *p.Schedule
	}
	if p.Clips != nil {
		s.snap.Clips = *p.Clips
	}
	if p.Notes != nil {
		s.snap.Notes = *p.Notes
	}
	if p.Deliverables != nil {
		s.snap.Deliverables = *p.Deliverables
	}
	if p.Completions != nil {
		s.snap.Completions = *p.Completions
	}
	if p.SearchOpen != nil {
		s.snap.SearchOpen = *p.SearchOpen
	}
	if p.ClipModalOpen != nil {
		s.snap.ClipModalOpen = *p.ClipModalOpen
	}
	if p.SelectedClipIDs != nil {
		s.snap.SelectedClipIDs = *p.SelectedClipIDs
	}
}

// Subscribe registers a listener invoked after every applied patch.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// AddRecentSearch keeps the five most recent distinct queries, newest first.
func (s *Store) AddRecentSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	recent := []string{query}
	for _, q := range s.Get().RecentSearches {
		if strings.EqualFold(q, query) {
			continue
		}
		recent = append(recent, q)
		if len(recent) == 5 {
			break
		}
	}
	s.Set(Patch{RecentSearches: &recent})
}

// Close stops accepting writes. Subscribers are not called again.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
}
