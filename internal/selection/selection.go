// Package selection holds the user's ordered pick of idols.
//
// A Selection is an immutable value: Add, Remove and Reset return a new
// Selection and leave the receiver untouched, so older snapshots stay valid
// for whoever still holds them.
package selection

import (
	"errors"

	"github.com/kingrea/idolmbti/internal/catalog"
)

// MaxSize is the most idols a selection can hold.
const MaxSize = 10

var (
	// ErrCapacityExceeded means the selection already holds MaxSize idols.
	ErrCapacityExceeded = errors.New("selection: maximum of 10 idols reached")
	// ErrDuplicateSelection means the idol is already selected.
	ErrDuplicateSelection = errors.New("selection: idol already selected")
	// ErrNilIdol guards against adding a missing record.
	ErrNilIdol = errors.New("selection: idol is nil")
)

// Selection is an ordered list of catalog records with unique names.
type Selection struct {
	items []*catalog.IdolRecord
}

// New builds a selection from records, applying the same rules as Add.
// Records past capacity, duplicates and nils are dropped.
func New(records ...*catalog.IdolRecord) Selection {
	var s Selection
	for _, rec := range records {
		next, err := s.Add(rec)
		if err != nil {
			continue
		}
		s = next
	}
	return s
}

// Add appends idol at the end.
func (s Selection) Add(idol *catalog.IdolRecord) (Selection, error) {
	if idol == nil {
		return s, ErrNilIdol
	}
	if len(s.items) >= MaxSize {
		return s, ErrCapacityExceeded
	}
	if s.Contains(idol.NameGroup) {
		return s, ErrDuplicateSelection
	}
	items := make([]*catalog.IdolRecord, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return Selection{items: append(items, idol)}, nil
}

// Remove drops the idol with the given name. Unknown names are a no-op.
func (s Selection) Remove(nameGroup string) Selection {
	idx := s.indexOf(nameGroup)
	if idx < 0 {
		return s
	}
	items := make([]*catalog.IdolRecord, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	items = append(items, s.items[idx+1:]...)
	return Selection{items: items}
}

// Reset returns an empty selection.
func (s Selection) Reset() Selection {
	return Selection{}
}

// Len returns the number of selected idols.
func (s Selection) Len() int {
	return len(s.items)
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.items) == 0
}

// Full reports whether the selection is at capacity.
func (s Selection) Full() bool {
	return len(s.items) >= MaxSize
}

// Contains reports whether an idol with this name is selected.
func (s Selection) Contains(nameGroup string) bool {
	return s.indexOf(nameGroup) >= 0
}

// At returns the record at position i.
func (s Selection) At(i int) *catalog.IdolRecord {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Items returns the selected records in order.
func (s Selection) Items() []*catalog.IdolRecord {
	out := make([]*catalog.IdolRecord, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the selected names in order.
func (s Selection) Names() []string {
	out := make([]string, len(s.items))
	for i, rec := range s.items {
		out[i] = rec.NameGroup
	}
	return out
}

func (s Selection) indexOf(nameGroup string) int {
	for i, rec := range s.items {
		if rec.NameGroup == nameGroup {
			return i
		}
	}
	return -1
}
