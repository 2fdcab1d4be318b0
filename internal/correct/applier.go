package correct

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/worknorm/internal/works"
)

// DefaultFields are the record fields corrected when none are configured.
var DefaultFields = []string{"categories", "emotions"}

// Options configures an Applier.
type Options struct {
	Policy      Policy
	Table       Table
	Fields      []string
	FoldUnicode bool // normalized policy only
}

// FieldStats counts the corrections made to one field across a dataset.
type FieldStats struct {
	Field    string `json:"field" yaml:"field"`
	Replaced int    `json:"replaced" yaml:"replaced"`
	Removed  int    `json:"removed" yaml:"removed"`
}

// Stats holds per-field counts in field order.
type Stats struct {
	Fields []FieldStats `json:"fields" yaml:"fields"`
}

// Get returns the counts for field.
func (s Stats) Get(field string) FieldStats {
	for _, f := range s.Fields {
		if f.Field == field {
			return f
		}
	}
	return FieldStats{Field: field}
}

// Total returns the number of replacements and removals across all fields.
func (s Stats) Total() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Replaced + f.Removed
	}
	return n
}

// Applier applies a correction table to the targeted fields of every record.
type Applier struct {
	opts Options
}

// NewApplier validates opts and returns an Applier.
func NewApplier(opts Options) (*Applier, error) {
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}
	if len(opts.Fields) == 0 {
		return nil, errors.New("no fields to correct")
	}
	if err := opts.Table.Validate(opts.Policy, opts.FoldUnicode); err != nil {
		return nil, err
	}
	return &Applier{opts: opts}, nil
}

// Policy returns the matching policy in use.
func (a *Applier) Policy() Policy {
	return a.opts.Policy
}

// Fields returns the targeted fields.
func (a *Applier) Fields() []string {
	return a.opts.Fields
}

// Apply returns a corrected copy of ds. Records are never added, dropped or
// reordered, and ds itself is not modified.
func (a *Applier) Apply(ds works.Dataset) (works.Dataset, Stats, error) {
	stats := Stats{Fields: make([]FieldStats, len(a.opts.Fields))}
	for i, f := range a.opts.Fields {
		stats.Fields[i].Field = f
	}

	out := make(works.Dataset, len(ds))
	for i, rec := range ds {
		for j, field := range a.opts.Fields {
			vals, ok := rec.Values(field)
			if !ok {
				continue
			}

			corrected, changed := a.correct(vals, &stats.Fields[j])
			if !changed {
				continue
			}

			updated, err := rec.WithValues(field, corrected)
			if err != nil {
				return nil, Stats{}, fmt.Errorf("record %d: %w", i, err)
			}
			rec = updated
		}
		out[i] = rec
	}
	return out, stats, nil
}

// correct maps vals through the table. Unmatched and non-string elements
// keep their original JSON text.
func (a *Applier) correct(vals []works.Value, fs *FieldStats) ([]works.Value, bool) {
	out := make([]works.Value, 0, len(vals))
	changed := false

	for _, v := range vals {
		if !v.IsString {
			out = append(out, v)
			continue
		}

		e, ok := a.lookup(v.Str)
		switch {
		case !ok:
			out = append(out, v)
		case e.Delete:
			fs.Removed++
			changed = true
		case e.Replacement == v.Str:
			out = append(out, v)
		default:
			fs.Replaced++
			changed = true
			out = append(out, works.StringValue(e.Replacement))
		}
	}
	return out, changed
}

func (a *Applier) lookup(s string) (Entry, bool) {
	if a.opts.Policy == PolicyNormalized {
		s = NormalizeKey(s, a.opts.FoldUnicode)
	}
	e, ok := a.opts.Table[s]
	return e, ok
}
