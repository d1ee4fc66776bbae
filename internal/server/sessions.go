package server

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-builder/internal/assistclient"
	"github.com/jonathan/resume-builder/internal/store"
)

// Event names sent on a session's event stream.
const (
	EventSnapshot    = "snapshot"
	EventAssistError = "assist_error"
	EventError       = "error"
)

// eventBuffer is how many events a slow subscriber may lag before events are dropped.
const eventBuffer = 64

// Event is one message for a session's stream subscribers.
type Event struct {
	Name string
	Data any
}

// hub fans events out to stream subscribers without blocking the publisher.
type hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
	log    zerolog.Logger
}

func newHub(log zerolog.Logger) *hub {
	return &hub{subs: make(map[chan Event]struct{}), log: log}
}

// subscribe returns a channel of future events and a func to stop receiving them.
// The channel is closed when the hub closes or the subscription is cancelled.
func (h *hub) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *hub) publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.log.Warn().Str("event", e.Name).Msg("stream subscriber lagging, event dropped")
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

// Session is one document being edited: its store, its background assist calls and
// its event stream.
type Session struct {
	ID         string
	Store      *store.Store
	Dispatcher *assistclient.Dispatcher
	CreatedAt  time.Time

	events      *hub
	unsubscribe func()
}

// Subscribe streams the session's events until cancel is called or the session closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

func (s *Session) close() {
	s.unsubscribe()
	s.events.close()
}

// SessionFactory builds the parts of a new session.
type SessionFactory struct {
	StoreOptions []store.Option
	Assistant    assistclient.Assistant
	AITimeout    time.Duration
	Logger       zerolog.Logger
}

func (f SessionFactory) build(id string) *Session {
	log := f.Logger.With().Str("session", id).Logger()
	events := newHub(log)

	opts := append(slices.Clip(f.StoreOptions), store.WithLogger(log))
	st := store.New(opts...)
	unsubscribe := st.Subscribe(func(snap store.Snapshot) {
		events.publish(Event{Name: EventSnapshot, Data: snap})
	})

	dispatcher := assistclient.NewDispatcher(st,
		assistclient.WithTimeout(f.AITimeout),
		assistclient.WithLogger(log),
		assistclient.OnError(func(key string, err error) {
			events.publish(Event{Name: EventAssistError, Data: map[string]string{"key": key, "error": err.Error()}})
		}),
	)

	return &Session{
		ID:          id,
		Store:       st,
		Dispatcher:  dispatcher,
		CreatedAt:   time.Now(),
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Registry holds the live sessions, up to a fixed number.
type Registry struct {
	factory  SessionFactory
	max      int
	onChange func(n int)

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry holding at most limit sessions. onChange, when set,
// receives the session count after every create and delete.
func NewRegistry(factory SessionFactory, limit int, onChange func(n int)) *Registry {
	return &Registry{
		factory:  factory,
		max:      limit,
		onChange: onChange,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session with the default document.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	if r.max > 0 && len(r.sessions) >= r.max {
		r.mu.Unlock()
		return nil, &ErrSessionLimit{Max: r.max}
	}
	session := r.factory.build(uuid.NewString())
	r.sessions[session.ID] = session
	n := len(r.sessions)
	r.mu.Unlock()

	r.changed(n)
	return session, nil
}

// Get returns the session, or nil when id is unknown.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Delete ends a session. Calls still in flight finish against the orphaned store.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	session.close()
	r.changed(n)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close ends every session and waits for their background calls.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
		s.Dispatcher.Wait()
	}
	r.changed(0)
}

func (r *Registry) changed(n int) {
	if r.onChange != nil {
		r.onChange(n)
	}
}
