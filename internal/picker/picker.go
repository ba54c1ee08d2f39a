// Package picker owns the picker's state and the reducer that moves it
// forward one event at a time.
//
// Each event is applied to a State value and produces a new State. Nothing
// is mutated in place, so any snapshot can be kept, compared or rendered
// without worrying about later events.
package picker

import (
	"errors"
	"fmt"

	"github.com/kingrea/idolmbti/internal/catalog"
	"github.com/kingrea/idolmbti/internal/consensus"
	"github.com/kingrea/idolmbti/internal/selection"
)

// ErrUnknownIdol means an add referenced a name the catalog does not have.
var ErrUnknownIdol = errors.New("picker: idol not in catalog")

// MaxReachedNotice is shown while the selection is at capacity.
var MaxReachedNotice = fmt.Sprintf("Maximum of %d idols reached", selection.MaxSize)

// State is one immutable snapshot of the picker.
type State struct {
	Selection selection.Selection
	// Result is nil until a computation succeeds, and again after a reset.
	Result *consensus.Result
	Query  string
	// MaxReached drives the "maximum reached" notice.
	MaxReached bool
	// Warning is a user-facing message from the last event, if any.
	Warning string
	// Err is the error of the last computation attempt, if it failed.
	Err error
}

// CanCompute reports whether the compute trigger should be enabled.
func (s State) CanCompute() bool {
	return !s.Selection.Empty()
}

// Msg is an event the reducer understands.
type Msg interface {
	pickerMsg()
}

// AddMsg selects an idol by name.
type AddMsg struct{ NameGroup string }

// RemoveMsg deselects an idol by name.
type RemoveMsg struct{ NameGroup string }

// ResetMsg clears everything.
type ResetMsg struct{}

// ComputeMsg runs the consensus over the current selection.
type ComputeMsg struct{}

// SearchMsg updates the search text.
type SearchMsg struct{ Query string }

func (AddMsg) pickerMsg()     {}
func (RemoveMsg) pickerMsg()  {}
func (ResetMsg) pickerMsg()   {}
func (ComputeMsg) pickerMsg() {}
func (SearchMsg) pickerMsg()  {}

// Reducer applies messages against a fixed catalog.
type Reducer struct {
	Catalog *catalog.Catalog
	Engine  *consensus.Engine
}

// NewReducer wires a reducer. A nil engine gets a clock-seeded one.
func NewReducer(cat *catalog.Catalog, engine *consensus.Engine) *Reducer {
	if engine == nil {
		engine = consensus.NewEngine(nil)
	}
	return &Reducer{Catalog: cat, Engine: engine}
}

// Apply returns the state that follows s after msg.
func (r *Reducer) Apply(s State, msg Msg) State {
	switch msg := msg.(type) {
	case AddMsg:
		return r.add(s, msg.NameGroup)
	case RemoveMsg:
		return r.remove(s, msg.NameGroup)
	case ResetMsg:
		return State{}
	case ComputeMsg:
		return r.compute(s)
	case SearchMsg:
		s.Query = msg.Query
		s.Warning = ""
		return s
	}
	return s
}

// Matches returns the catalog records matching the current search text.
func (r *Reducer) Matches(s State) []*catalog.IdolRecord {
	return r.Catalog.Search(s.Query)
}

func (r *Reducer) add(s State, name string) State {
	s.Warning = ""
	idol, ok := r.Catalog.Lookup(name)
	if !ok {
		s.Warning = fmt.Sprintf("%q is not in the catalog", name)
		return s
	}
	next, err := s.Selection.Add(idol)
	switch {
	case errors.Is(err, selection.ErrCapacityExceeded):
		s.MaxReached = true
		s.Warning = MaxReachedNotice
	case errors.Is(err, selection.ErrDuplicateSelection):
		// already selected; nothing to report
	case err != nil:
		s.Warning = err.Error()
	default:
		s.Selection = next
		s.MaxReached = next.Full()
	}
	// picking from the list clears the search box, as the web widget did
	s.Query = ""
	return s
}

func (r *Reducer) remove(s State, name string) State {
	s.Warning = ""
	s.Selection = s.Selection.Remove(name)
	if !s.Selection.Full() {
		s.MaxReached = false
	}
	return s
}

func (r *Reducer) compute(s State) State {
	s.Warning = ""
	res, err := r.Engine.Compute(s.Selection.Items(), r.Catalog)
	if err != nil {
		// keep the previous result on screen
		s.Err = err
		s.Warning = computeWarning(err)
		return s
	}
	s.Err = nil
	s.Result = res
	return s
}

func computeWarning(err error) string {
	switch {
	case errors.Is(err, consensus.ErrEmptySelection):
		return "Select at least one idol first"
	case errors.Is(err, consensus.ErrNoKnownTypes):
		return "None of the selected idols has a known type"
	default:
		return err.Error()
	}
}
