// Package store holds one in-progress resume document and its presentation settings.
package store

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/types"
)

// Operation names reported to observers, one per mutation kind.
const (
	OpSetSection     = "set_section"
	OpSetNestedField = "set_nested_field"
	OpAddListItem    = "add_list_item"
	OpRemoveListItem = "remove_list_item"
	OpUpdateListItem = "update_list_item"
	OpLoadDocument   = "load_document"
	OpReset          = "reset"
	OpSetThemeColor  = "set_theme_color"
)

// Snapshot is the committed state at one instant. Treat it as read-only.
type Snapshot struct {
	Document   types.ResumeDocument `json:"document"`
	ThemeColor string               `json:"themeColor"`
	Version    uint64               `json:"version"`
}

// Settings returns the presentation settings carried by the snapshot.
func (s Snapshot) Settings() types.PresentationSettings {
	return types.PresentationSettings{ThemeColor: s.ThemeColor}
}

// Subscriber receives every committed snapshot.
// It runs on the mutating goroutine and must not call back into the store.
type Subscriber func(Snapshot)

// Option configures a Store
type Option func(*Store)

// WithIDGenerator sets the generator used for new list entries.
func WithIDGenerator(ids document.IDGenerator) Option {
	return func(s *Store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithDefaultThemeColor sets the theme color used on creation and reset.
func WithDefaultThemeColor(color string) Option {
	return func(s *Store) {
		if color != "" {
			s.defaultTheme = color
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithObserver registers a callback invoked with the operation name of each committed mutation.
func WithObserver(fn func(operation string)) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// Store serializes mutations over a single document.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	// notifyMu is taken before mu is released so subscribers see commits in order.
	notifyMu sync.Mutex

	subMu   sync.Mutex
	subs    map[uint64]Subscriber
	nextSub uint64

	ids          document.IDGenerator
	defaultTheme string
	log          zerolog.Logger
	observer     func(string)
}

// New creates a store holding the default empty document.
func New(opts ...Option) *Store {
	s := &Store{
		subs:         make(map[uint64]Subscriber),
		ids:          document.UUIDGenerator{},
		defaultTheme: types.DefaultThemeColor,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap = Snapshot{Document: document.New(), ThemeColor: s.defaultTheme}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snap)
}

// Subscribe registers fn for future commits. The returned func unsubscribes and is safe to call twice.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// SetSection replaces a whole top-level field.
func (s *Store) SetSection(section types.Section, value json.RawMessage) error {
	return s.commit(OpSetSection, func(cur Snapshot) (Snapshot, error) {
		doc, err := document.SetSection(cur.Document, section, value)
		cur.Document = doc
		return cur, err
	})
}

// SetNestedField replaces one field of an object-valued section.
func (s *Store) SetNestedField(section types.Section, field, value string) error {
	return s.commit(OpSetNestedField, func(cur Snapshot) (Snapshot, error) {
		doc, err := document.SetNestedField(cur.Document, section, field, value)
		cur.Document = doc
		return cur, err
	})
}

// AddListItem appends an entry built from itemData and returns its new id.
func (s *Store) AddListItem(section types.Section, itemData map[string]any) (string, error) {
	return s.AddListItemChecked(section, itemData, nil)
}

// AddListItemChecked is AddListItem with a precondition. check sees the document the
// item would be appended to, under the same lock as the commit; a non-nil error from it
// is returned and nothing is committed.
func (s *Store) AddListItemChecked(section types.Section, itemData map[string]any, check func(types.ResumeDocument) error) (string, error) {
	id := s.ids.NewID()
	err := s.commit(OpAddListItem, func(cur Snapshot) (Snapshot, error) {
		if check != nil {
			if err := check(cur.Document); err != nil {
				return cur, err
			}
		}
		doc, err := document.AddListItem(cur.Document, section, itemData, id)
		cur.Document = doc
		return cur, err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveListItem removes an entry. Unknown ids still commit an unchanged document.
func (s *Store) RemoveListItem(section types.Section, itemID string) error {
	return s.commit(OpRemoveListItem, func(cur Snapshot) (Snapshot, error) {
		doc, err := document.RemoveListItem(cur.Document, section, itemID)
		cur.Document = doc
		return cur, err
	})
}

// UpdateListItem shallow-merges patch into an entry. Unknown ids still commit an unchanged document.
func (s *Store) UpdateListItem(section types.Section, itemID string, patch map[string]any) error {
	return s.commit(OpUpdateListItem, func(cur Snapshot) (Snapshot, error) {
		doc, err := document.UpdateListItem(cur.Document, section, itemID, patch)
		cur.Document = doc
		return cur, err
	})
}

// LoadDocument replaces the document with data overlaid on the default shape.
// The theme color is left alone.
func (s *Store) LoadDocument(data json.RawMessage) error {
	return s.commit(OpLoadDocument, func(cur Snapshot) (Snapshot, error) {
		doc, err := document.Load(data, s.ids)
		if err != nil {
			return cur, err
		}
		s.log.Debug().
			Int("experience", len(doc.Experience)).
			Int("projects", len(doc.Projects)).
			Int("skills", len(doc.Skills)).
			Msg("document loaded")
		cur.Document = doc
		return cur, nil
	})
}

// Reset restores the default document and theme color.
func (s *Store) Reset() {
	_ = s.commit(OpReset, func(cur Snapshot) (Snapshot, error) {
		s.log.Debug().Uint64("version", cur.Version).Msg("document reset")
		cur.Document = document.New()
		cur.ThemeColor = s.defaultTheme
		return cur, nil
	})
}

// SetThemeColor replaces the theme color without validating it.
func (s *Store) SetThemeColor(color string) {
	_ = s.commit(OpSetThemeColor, func(cur Snapshot) (Snapshot, error) {
		cur.ThemeColor = color
		return cur, nil
	})
}

func (s *Store) commit(op string, apply func(Snapshot) (Snapshot, error)) error {
	s.mu.Lock()
	next, err := apply(s.snap)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next.Version = s.snap.Version + 1
	s.snap = next

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	if s.observer != nil {
		s.observer(op)
	}

	subs := s.subscribers()
	if len(subs) == 0 {
		return nil
	}
	published := cloneSnapshot(next)
	for _, fn := range subs {
		fn(published)
	}
	return nil
}

func (s *Store) subscribers() []Subscriber {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	subs := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	return subs
}

func cloneSnapshot(snap Snapshot) Snapshot {
	doc := snap.Document
	doc.Experience = slices.Clone(doc.Experience)
	doc.Education = slices.Clone(doc.Education)
	doc.Projects = slices.Clone(doc.Projects)
	doc.Skills = slices.Clone(doc.Skills)
	doc.Certifications = slices.Clone(doc.Certifications)
	doc.Achievements = slices.Clone(doc.Achievements)
	snap.Document = doc
	return snap
}
