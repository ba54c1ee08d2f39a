package picker

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/kingrea/idolmbti/internal/catalog"
	"github.com/kingrea/idolmbti/internal/consensus"
	"github.com/kingrea/idolmbti/internal/selection"
)

func newTestReducer(t *testing.T) *Reducer {
	t.Helper()
	records := []*catalog.IdolRecord{
		{NameGroup: "A (G1)", Personality: "ENFP"},
		{NameGroup: "B (G1)", Personality: "ENFP"},
		{NameGroup: "C (G2)", Personality: "INFP"},
		{NameGroup: "Unknown (G2)", Personality: ""},
	}
	for i := 0; i < 12; i++ {
		records = append(records, &catalog.IdolRecord{NameGroup: fmt.Sprintf("Extra %02d (G3)", i), Personality: "ISTJ"})
	}
	engine := consensus.NewEngine(rand.New(rand.NewSource(1)))
	return NewReducer(catalog.New(records), engine)
}

func apply(r *Reducer, s State, msgs ...Msg) State {
	for _, msg := range msgs {
		s = r.Apply(s, msg)
	}
	return s
}

func fill(r *Reducer, s State, n int) State {
	for i := 0; i < n; i++ {
		s = r.Apply(s, AddMsg{NameGroup: fmt.Sprintf("Extra %02d (G3)", i)})
	}
	return s
}

func TestAddSetsNoticeAtCapacity(t *testing.T) {
	r := newTestReducer(t)
	s := fill(r, State{}, 9)
	if s.MaxReached {
		t.Fatalf("notice should not be active at 9")
	}
	s = fill(r, s, 10)
	if s.Selection.Len() != selection.MaxSize {
		t.Fatalf("len = %d, want %d", s.Selection.Len(), selection.MaxSize)
	}
	if !s.MaxReached {
		t.Fatalf("notice should be active at 10")
	}
	s = r.Apply(s, AddMsg{NameGroup: "Extra 11 (G3)"})
	if s.Selection.Len() != selection.MaxSize {
		t.Fatalf("11th add changed size to %d", s.Selection.Len())
	}
	if !s.MaxReached || s.Warning != MaxReachedNotice {
		t.Fatalf("expected capacity warning, got %q", s.Warning)
	}
}

func TestRemoveClearsNotice(t *testing.T) {
	r := newTestReducer(t)
	s := fill(r, State{}, 10)
	s = r.Apply(s, RemoveMsg{NameGroup: "Extra 03 (G3)"})
	if s.MaxReached {
		t.Fatalf("notice should clear after removal")
	}
	if s.Selection.Len() != 9 || s.Selection.Contains("Extra 03 (G3)") {
		t.Fatalf("unexpected selection: %v", s.Selection.Names())
	}
}

func TestDuplicateAddIsSilent(t *testing.T) {
	r := newTestReducer(t)
	s := apply(r, State{}, AddMsg{"A (G1)"}, AddMsg{"A (G1)"})
	if s.Selection.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Selection.Len())
	}
	if s.Warning != "" {
		t.Fatalf("duplicate should not warn, got %q", s.Warning)
	}
}

func TestAddUnknownWarns(t *testing.T) {
	r := newTestReducer(t)
	s := r.Apply(State{}, AddMsg{"Nobody (None)"})
	if s.Selection.Len() != 0 || s.Warning == "" {
		t.Fatalf("expected warning and no change, got len=%d warning=%q", s.Selection.Len(), s.Warning)
	}
}

func TestAddClearsSearch(t *testing.T) {
	r := newTestReducer(t)
	s := apply(r, State{}, SearchMsg{"g1"})
	if got := len(r.Matches(s)); got != 2 {
		t.Fatalf("matches = %d, want 2", got)
	}
	s = r.Apply(s, AddMsg{"A (G1)"})
	if s.Query != "" {
		t.Fatalf("query = %q, want cleared", s.Query)
	}
}

func TestComputeProducesResult(t *testing.T) {
	r := newTestReducer(t)
	s := apply(r, State{}, AddMsg{"A (G1)"}, AddMsg{"B (G1)"}, AddMsg{"C (G2)"}, ComputeMsg{})
	if s.Err != nil {
		t.Fatalf("unexpected error: %v", s.Err)
	}
	if s.Result == nil || s.Result.Code != "ENFP" {
		t.Fatalf("unexpected result: %+v", s.Result)
	}
	if s.Result.OtherShare["I"] != 33 {
		t.Fatalf("other share = %v", s.Result.OtherShare)
	}
}

func TestComputeOnEmptyKeepsPreviousResult(t *testing.T) {
	r := newTestReducer(t)
	s := apply(r, State{}, AddMsg{"A (G1)"}, ComputeMsg{})
	prev := s.Result
	if prev == nil {
		t.Fatalf("expected a result")
	}
	s = apply(r, s, RemoveMsg{"A (G1)"})
	if s.CanCompute() {
		t.Fatalf("compute should be disabled on empty selection")
	}
	s = r.Apply(s, ComputeMsg{})
	if !errors.Is(s.Err, consensus.ErrEmptySelection) {
		t.Fatalf("err = %v, want ErrEmptySelection", s.Err)
	}
	if s.Result != prev {
		t.Fatalf("failed computation replaced the previous result")
	}
	if prev.Code != "ENFP" {
		t.Fatalf("previous result was modified: %s", prev.Code)
	}
}

func TestComputeWithOnlyUnknownTypes(t *testing.T) {
	r := newTestReducer(t)
	s := apply(r, State{}, AddMsg{"Unknown (G2)"}, ComputeMsg{})
	if !errors.Is(s.Err, consensus.ErrNoKnownTypes) || s.Result != nil {
		t.Fatalf("err=%v result=%v", s.Err, s.Result)
	}
}

func TestRecomputeReplacesResult(t *testing.T) {
	r := newTestReducer(t)
	s := apply(r, State{}, AddMsg{"A (G1)"}, ComputeMsg{})
	first := s.Result
	s = apply(r, s, AddMsg{"Extra 00 (G3)"}, AddMsg{"Extra 01 (G3)"}, ComputeMsg{})
	if s.Result == first {
		t.Fatalf("expected a new result value")
	}
	if s.Result.Code != "ISTJ" || first.Code != "ENFP" {
		t.Fatalf("codes = %s / %s", first.Code, s.Result.Code)
	}
}

func TestResetClearsEverything(t *testing.T) {
	r := newTestReducer(t)
	s := fill(r, State{}, 10)
	s = apply(r, s, ComputeMsg{}, SearchMsg{"extra"}, ResetMsg{})
	if !s.Selection.Empty() || s.MaxReached || s.Result != nil || s.Query != "" || s.Warning != "" || s.Err != nil {
		t.Fatalf("reset left state behind: %+v", s)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	r := newTestReducer(t)
	before := apply(r, State{}, AddMsg{"A (G1)"})
	_ = apply(r, before, AddMsg{"B (G1)"}, RemoveMsg{"A (G1)"}, ComputeMsg{})
	if before.Selection.Len() != 1 || !before.Selection.Contains("A (G1)") || before.Result != nil {
		t.Fatalf("input snapshot was mutated: %+v", before)
	}
}
