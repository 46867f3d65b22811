// Package store holds the todo collection for a session and mirrors it to a
// durable key-value slot after every mutation.
//
// A Store is owned by a single caller: it takes no locks and every operation
// runs to completion before returning.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/ids"
	"github.com/Makepad-fr/tada/internal/model"
)

// Key is the slot key the collection is stored under.
const Key = "todos"

// Slot is a synchronous string-keyed storage surface.
// Get reports ok=false when nothing is stored under key.
type Slot interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// ErrMalformed is wrapped by Load when the stored value is not a todo list.
var ErrMalformed = errors.New("malformed todo data")

// LoadResult tells what Load found in the slot.
type LoadResult int

const (
	// LoadAbsent: nothing stored, collection left as it was.
	LoadAbsent LoadResult = iota
	// LoadLoaded: collection replaced with the stored list.
	LoadLoaded
	// LoadMalformed: stored value could not be parsed, collection left as it was.
	LoadMalformed
)

func (r LoadResult) String() string {
	switch r {
	case LoadLoaded:
		return "loaded"
	case LoadMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Store is the todo collection of one session.
type Store struct {
	slot  Slot
	newID ids.Generator
	log   *zap.Logger
	todos []model.Todo
}

// Option configures a Store.
type Option func(*Store)

// WithIDs replaces the identifier generator (default ids.New).
func WithIDs(gen ids.Generator) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithLogger sets the logger used for load/persist traces.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New returns an empty store backed by slot. Call Load to pick up a
// previously persisted collection.
func New(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:  slot,
		newID: ids.New,
		log:   zap.NewNop(),
		todos: []model.Todo{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a new, not-done todo and persists. Any title is accepted.
// The returned error is a storage failure; the todo stays in memory either way.
func (s *Store) Add(title string) (model.Todo, error) {
	t := model.Todo{
		ID:    s.newID(),
		Title: title,
		Done:  false,
	}
	s.todos = append(s.todos, t)
	return t, s.Persist()
}

// Update replaces the title of the todo with the given id and persists.
// Unknown ids are a silent no-op.
func (s *Store) Update(id, newTitle string) error {
	i, ok := s.find(id)
	if !ok {
		return nil
	}
	s.todos[i].Title = newTitle
	return s.Persist()
}

// Toggle flips the done flag of the todo with the given id and persists.
// Unknown ids are a silent no-op.
func (s *Store) Toggle(id string) error {
	i, ok := s.find(id)
	if !ok {
		return nil
	}
	s.todos[i].Done = !s.todos[i].Done
	return s.Persist()
}

// Remove drops the todo with the given id and persists, whether or not
// anything matched.
func (s *Store) Remove(id string) error {
	kept := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.todos = kept
	return s.Persist()
}

// Load replaces the collection with the one stored in the slot.
// An absent or empty value leaves the collection unchanged. A value that is
// not a todo list also leaves it unchanged and returns an error wrapping
// ErrMalformed.
func (s *Store) Load() (LoadResult, error) {
	raw, ok, err := s.slot.Get(Key)
	if err != nil {
		return LoadAbsent, fmt.Errorf("read %s: %w", Key, err)
	}
	if !ok || raw == "" {
		s.log.Debug("nothing persisted", zap.String("key", Key))
		return LoadAbsent, nil
	}

	todos, err := decode(raw)
	if err != nil {
		s.log.Warn("persisted todos unreadable", zap.String("key", Key), zap.Error(err))
		return LoadMalformed, err
	}
	s.todos = todos
	s.log.Debug("loaded todos", zap.String("key", Key), zap.Int("count", len(todos)))
	return LoadLoaded, nil
}

// Persist writes the whole collection to the slot, overwriting what was there.
func (s *Store) Persist() error {
	b, err := json.Marshal(s.todos)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := s.slot.Set(Key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", Key, err)
	}
	s.log.Debug("persisted todos", zap.String("key", Key), zap.Int("count", len(s.todos)))
	return nil
}

// Todos returns a copy of the collection in insertion order.
func (s *Store) Todos() []model.Todo {
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Get returns a copy of the todo with the given id.
func (s *Store) Get(id string) (model.Todo, bool) {
	i, ok := s.find(id)
	if !ok {
		return model.Todo{}, false
	}
	return s.todos[i], true
}

// Len returns the number of todos.
func (s *Store) Len() int { return len(s.todos) }

// Stats counts done and pending todos.
func (s *Store) Stats() (done, pending int) {
	return model.Stats(s.todos)
}

func (s *Store) find(id string) (int, bool) {
	for i, t := range s.todos {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

var fields = []string{"id", "title", "done"}

// decode accepts only an array of objects carrying exactly the keys id, title
// and done (case-sensitive), with unique ids and nothing after the array.
func decode(raw string) ([]model.Todo, error) {
	var recs []map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	if recs == nil {
		return nil, fmt.Errorf("%w: not a list", ErrMalformed)
	}

	todos := make([]model.Todo, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		t, err := decodeRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, t.ID)
		}
		seen[t.ID] = struct{}{}
		todos = append(todos, t)
	}
	return todos, nil
}

func decodeRecord(r map[string]json.RawMessage) (model.Todo, error) {
	if len(r) != len(fields) {
		return model.Todo{}, fmt.Errorf("want exactly the keys %v", fields)
	}
	for _, k := range fields {
		v, ok := r[k]
		if !ok {
			return model.Todo{}, fmt.Errorf("missing key %q", k)
		}
		if string(v) == "null" {
			return model.Todo{}, fmt.Errorf("key %q is null", k)
		}
	}

	var t model.Todo
	if err := json.Unmarshal(r["id"], &t.ID); err != nil {
		return model.Todo{}, fmt.Errorf("id: %v", err)
	}
	if err := json.Unmarshal(r["title"], &t.Title); err != nil {
		return model.Todo{}, fmt.Errorf("title: %v", err)
	}
	if err := json.Unmarshal(r["done"], &t.Done); err != nil {
		return model.Todo{}, fmt.Errorf("done: %v", err)
	}
	return t, nil
}
