// internal/catalog/catalog.go
//
// The catalog is the static roster of idols the picker works from.
// It is loaded once at startup (embedded dataset or a file on disk) and
// is never written to afterwards. Everything else in the program holds
// pointers into it.

package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// CodeLength is the number of axes in a personality code.
const CodeLength = 4

//go:embed data/idols.json
var defaultIdolsJSON []byte

// ErrEmptyCatalog is returned when a payload decodes to zero records.
var ErrEmptyCatalog = errors.New("catalog: no idol records")

// IdolRecord is one entry of the catalog.
type IdolRecord struct {
	// NameGroup is the display name combined with the group, e.g. "Jisoo (BLACKPINK)".
	NameGroup string `yaml:"Name (Group)"`
	// Personality is the four letter code, or empty/malformed when unknown.
	Personality string `yaml:"Personality"`
}

// Valid reports whether the record carries a usable personality code.
func (r *IdolRecord) Valid() bool {
	return r != nil && utf8.RuneCountInString(r.Personality) == CodeLength
}

// Letter returns the letter at the given axis, or 0 when the code is unusable.
func (r *IdolRecord) Letter(axis int) rune {
	if !r.Valid() || axis < 0 || axis >= CodeLength {
		return 0
	}
	return []rune(r.Personality)[axis]
}

func (r *IdolRecord) String() string {
	if r == nil {
		return ""
	}
	if r.Personality == "" {
		return r.NameGroup + " - ?"
	}
	return r.NameGroup + " - " + r.Personality
}

// Catalog is an ordered, read-only set of idol records.
type Catalog struct {
	records []*IdolRecord
	byName  map[string]*IdolRecord
	source  string
}

// Default decodes the dataset bundled into the binary.
func Default() (*Catalog, error) {
	cat, err := Parse(defaultIdolsJSON)
	if err != nil {
		return nil, fmt.Errorf("catalog: embedded dataset: %w", err)
	}
	cat.source = "embedded"
	return cat, nil
}

// Load reads a catalog file. JSON and YAML are both accepted.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	cat.source = filepath.Clean(path)
	return cat, nil
}

// Parse decodes a catalog payload. JSON is a subset of YAML, so a single
// yaml decoder serves both formats.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyCatalog
	}
	var raw []IdolRecord
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyCatalog
	}
	records := make([]*IdolRecord, 0, len(raw))
	for i := range raw {
		rec := raw[i]
		rec.NameGroup = strings.TrimSpace(rec.NameGroup)
		rec.Personality = strings.TrimSpace(rec.Personality)
		if rec.NameGroup == "" {
			return nil, fmt.Errorf("catalog: record %d: name is required", i)
		}
		records = append(records, &rec)
	}
	return New(records), nil
}

// New wraps already-built records. The slice is copied; the records are not.
func New(records []*IdolRecord) *Catalog {
	cat := &Catalog{
		records: make([]*IdolRecord, 0, len(records)),
		byName:  make(map[string]*IdolRecord, len(records)),
		source:  "memory",
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		cat.records = append(cat.records, rec)
		// first record wins when names collide
		if _, ok := cat.byName[rec.NameGroup]; !ok {
			cat.byName[rec.NameGroup] = rec
		}
	}
	return cat
}

// Source describes where the catalog came from ("embedded", "memory" or a path).
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// All returns the records in catalog order.
func (c *Catalog) All() []*IdolRecord {
	if c == nil {
		return nil
	}
	out := make([]*IdolRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Lookup finds a record by its exact NameGroup.
func (c *Catalog) Lookup(nameGroup string) (*IdolRecord, bool) {
	if c == nil {
		return nil, false
	}
	rec, ok := c.byName[nameGroup]
	return rec, ok
}

// WithCode returns every record whose personality equals code exactly.
func (c *Catalog) WithCode(code string) []*IdolRecord {
	if c == nil || code == "" {
		return nil
	}
	var out []*IdolRecord
	for _, rec := range c.records {
		if rec.Personality == code {
			out = append(out, rec)
		}
	}
	return out
}

// Search filters the catalog case-insensitively. A record matches when the
// query is a substring of its name, or when every word of the query is a
// whole word of the name ("jisoo blackpink" finds "Jisoo (BLACKPINK)").
// An empty query matches everything.
func (c *Catalog) Search(query string) []*IdolRecord {
	if c == nil {
		return nil
	}
	needle := normalize(query)
	if needle == "" {
		return c.All()
	}
	queryWords := words(needle)
	var out []*IdolRecord
	for _, rec := range c.records {
		name := normalize(rec.NameGroup)
		if strings.Contains(name, needle) || containsAllWords(words(name), queryWords) {
			out = append(out, rec)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAllWords(haystack, needles []string) bool {
	if len(needles) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(haystack))
	for _, w := range haystack {
		set[w] = struct{}{}
	}
	for _, w := range needles {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
