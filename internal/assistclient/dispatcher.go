package assistclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/rs/zerolog"
)

// ErrInFlight is returned by TryStart when a call for the key has not finished.
var ErrInFlight = errors.New("enhance call already in flight")

// Target receives completed results. *store.Store implements it.
type Target interface {
	SetSection(section types.Section, value json.RawMessage) error
	UpdateListItem(section types.Section, itemID string, patch map[string]any) error
}

// Result is the change a finished task applies. A non-empty ItemID patches that
// list entry; otherwise Value replaces the whole section.
type Result struct {
	Section types.Section
	ItemID  string
	Patch   map[string]any
	Value   json.RawMessage
}

// Task performs one assistant call and returns the change to apply.
type Task func(ctx context.Context) (Result, error)

// Dispatcher runs enhance calls in the background, at most one per key. Results
// are applied through the Target's no-op-safe mutations, so a call whose entry
// was deleted meanwhile changes nothing. Calls are never cancelled.
type Dispatcher struct {
	target  Target
	timeout time.Duration
	logger  zerolog.Logger
	onError func(key string, err error)
	onDone  func(key string)

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each task. Zero means no bound.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// OnError registers a callback for failed tasks. The document is not touched on failure.
func OnError(fn func(key string, err error)) DispatcherOption {
	return func(d *Dispatcher) { d.onError = fn }
}

// OnDone registers a callback run after every task, successful or not.
func OnDone(fn func(key string)) DispatcherOption {
	return func(d *Dispatcher) { d.onDone = fn }
}

// NewDispatcher creates a dispatcher applying results to target.
func NewDispatcher(target Target, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		target:   target,
		logger:   zerolog.Nop(),
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TryStart launches task under key unless a call for key is still running.
func (d *Dispatcher) TryStart(key string, task Task) error {
	d.mu.Lock()
	if _, busy := d.inFlight[key]; busy {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", key, ErrInFlight)
	}
	d.inFlight[key] = struct{}{}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(key, task)
	return nil
}

// InFlight reports whether a call for key is running.
func (d *Dispatcher) InFlight(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, busy := d.inFlight[key]
	return busy
}

// Wait blocks until every started task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(key string, task Task) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.inFlight, key)
		d.mu.Unlock()
		if d.onDone != nil {
			d.onDone(key)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	result, err := task(ctx)
	if err == nil {
		err = d.apply(result)
	}
	if err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("enhance call failed")
		if d.onError != nil {
			d.onError(key, err)
		}
		return
	}
	d.logger.Debug().Str("key", key).Msg("enhance result applied")
}

func (d *Dispatcher) apply(r Result) error {
	if r.ItemID != "" {
		return d.target.UpdateListItem(r.Section, r.ItemID, r.Patch)
	}
	return d.target.SetSection(r.Section, r.Value)
}

// SummaryKey is the dispatch key for whole-summary generation.
const SummaryKey = "summary"

// ItemKey is the dispatch key for one list entry.
func ItemKey(section types.Section, id string) string {
	return string(section) + "/" + id
}

// ExperienceTask rewrites entry's summary into bullets.
func ExperienceTask(a Assistant, entry types.ExperienceEntry) Task {
	return func(ctx context.Context) (Result, error) {
		resp, err := a.EnhanceExperience(ctx, assist.ExperienceRequest{
			JobTitle: entry.Title,
			Company:  entry.Company,
			Summary:  entry.Summary,
		})
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(resp.EnhancedSummary) == "" {
			return Result{}, fmt.Errorf("enhancedSummary: %w", ErrMissingField)
		}
		return Result{
			Section: types.SectionExperience,
			ItemID:  entry.ID,
			Patch:   map[string]any{"summary": resp.EnhancedSummary},
		}, nil
	}
}

// ProjectTask rewrites entry's description into bullets.
func ProjectTask(a Assistant, entry types.ProjectEntry) Task {
	return func(ctx context.Context) (Result, error) {
		resp, err := a.EnhanceProject(ctx, assist.ProjectRequest{
			Title:       entry.Title,
			Tech:        assist.Tech(entry.Tech),
			Description: entry.Description,
		})
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(resp.EnhancedDescription) == "" {
			return Result{}, fmt.Errorf("enhancedDescription: %w", ErrMissingField)
		}
		return Result{
			Section: types.SectionProjects,
			ItemID:  entry.ID,
			Patch:   map[string]any{"description": resp.EnhancedDescription},
		}, nil
	}
}

// SummaryTask replaces the summary with a refined version of current.
func SummaryTask(a Assistant, jobTitle, current string) Task {
	return func(ctx context.Context) (Result, error) {
		resp, err := a.GenerateSummary(ctx, assist.SummaryRequest{JobTitle: jobTitle, CurrentSummary: current})
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(resp.RefinedSummary) == "" {
			return Result{}, fmt.Errorf("refinedSummary: %w", ErrMissingField)
		}
		value, err := json.Marshal(resp.RefinedSummary)
		if err != nil {
			return Result{}, err
		}
		return Result{Section: types.SectionSummary, Value: value}, nil
	}
}
