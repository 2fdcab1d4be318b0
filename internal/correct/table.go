package correct

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidTable is returned when a correction table cannot be used.
	ErrInvalidTable = errors.New("invalid correction table")

	// ErrDeleteNotSupported is returned when a normalized-match table holds a deletion entry.
	ErrDeleteNotSupported = errors.New("deletion entries require the exact policy")
)

// Policy selects how field values are matched against table keys.
type Policy string

const (
	// PolicyExact matches the literal value.
	PolicyExact Policy = "exact"
	// PolicyNormalized matches the lowercased, trimmed value.
	PolicyNormalized Policy = "normalized"
)

// ParsePolicy converts a name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyExact, PolicyNormalized:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown policy %q (expected %s or %s)", s, PolicyExact, PolicyNormalized)
	}
}

// Entry is the correction for one key: a replacement, or removal of the element.
type Entry struct {
	Replacement string
	Delete      bool
}

// Replace returns an entry replacing the matched value with s.
func Replace(s string) Entry {
	return Entry{Replacement: s}
}

// Remove returns an entry dropping the matched value.
func Remove() Entry {
	return Entry{Delete: true}
}

// Table maps matched values to corrections.
// On disk a table is a JSON object whose values are strings or null (delete).
type Table map[string]Entry

// MarshalJSON encodes deletions as null.
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.nullable())
}

// MarshalYAML encodes deletions as null.
func (t Table) MarshalYAML() (any, error) {
	return t.nullable(), nil
}

func (t Table) nullable() map[string]*string {
	m := make(map[string]*string, len(t))
	for k, e := range t {
		if e.Delete {
			m[k] = nil
			continue
		}
		r := e.Replacement
		m[k] = &r
	}
	return m
}

// UnmarshalJSON decodes null values as deletions.
func (t *Table) UnmarshalJSON(data []byte) error {
	var m map[string]*string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Table, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = Remove()
			continue
		}
		out[k] = Replace(*v)
	}
	*t = out
	return nil
}

// Keys returns the table keys in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, e := range t {
		out[k] = e
	}
	return out
}

// Validate checks the table can be used under policy.
//
// Normalized tables must have keys already in normalized form, must not
// delete, and must not chain: a replacement whose normalized form is another
// key has to map to itself, so a second pass changes nothing.
func (t Table) Validate(policy Policy, foldUnicode bool) error {
	for _, k := range t.Keys() {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidTable)
		}
		if policy != PolicyNormalized {
			continue
		}

		e := t[k]
		if e.Delete {
			return fmt.Errorf("%w: key %q", ErrDeleteNotSupported, k)
		}
		if nk := NormalizeKey(k, foldUnicode); nk != k {
			return fmt.Errorf("%w: key %q is not normalized (expected %q)", ErrInvalidTable, k, nk)
		}
		if next, ok := t[NormalizeKey(e.Replacement, foldUnicode)]; ok && next.Replacement != e.Replacement {
			return fmt.Errorf("%w: %q -> %q -> %q chains", ErrInvalidTable, k, e.Replacement, next.Replacement)
		}
	}
	return nil
}

// NormalizeKey lowercases and trims s for normalized matching.
// With foldUnicode the value is first NFKC-normalized, so composed and
// decomposed accents compare equal.
func NormalizeKey(s string, foldUnicode bool) string {
	if foldUnicode {
		s = norm.NFKC.String(s)
	}
	return strings.TrimFunc(cases.Lower(language.Und).String(s), isTrimmable)
}

// isTrimmable matches the characters JavaScript's String.prototype.trim
// removes. NEL is Unicode whitespace but not an ECMAScript one.
func isTrimmable(r rune) bool {
	return r != '\u0085' && unicode.IsSpace(r) || r == '\uFEFF'
}
