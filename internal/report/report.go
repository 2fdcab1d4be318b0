package report

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/jackzampolin/worknorm/internal/correct"
	"github.com/jackzampolin/worknorm/internal/works"
)

// DefaultTopN is the length of each frequency tally.
const DefaultTopN = 10

// Report summarizes one correction pass.
type Report struct {
	RunID   string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Policy  correct.Policy `json:"policy,omitempty" yaml:"policy,omitempty"`
	Dataset string         `json:"dataset" yaml:"dataset"`
	Records int            `json:"records" yaml:"records"`

	// Counts is set for correction passes.
	Counts *correct.Stats `json:"counts,omitempty" yaml:"counts,omitempty"`
	// Changes lists records whose targeted fields differ after the pass.
	Changes []Change `json:"changes,omitempty" yaml:"changes,omitempty"`
	// Top holds the post-pass frequency tally for each field.
	Top []FieldTally `json:"top" yaml:"top"`

	DryRun  bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Written bool `json:"written" yaml:"written"`
}

// Change is one record field that differs between two datasets.
type Change struct {
	ID     string `json:"id" yaml:"id"`
	Field  string `json:"field" yaml:"field"`
	Before any    `json:"before" yaml:"before"`
	After  any    `json:"after" yaml:"after"`
}

// Tally is the number of times a value occurs.
type Tally struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// FieldTally is the top-N tally of one field.
type FieldTally struct {
	Field  string  `json:"field" yaml:"field"`
	Values []Tally `json:"values" yaml:"values"`
}

// RecordID identifies a record in reports: the idField value, or "#<index>".
func RecordID(r works.Record, idField string, index int) string {
	if id := r.ID(idField); id != "" {
		return id
	}
	return "#" + strconv.Itoa(index)
}

// Changes compares before and after record by record and returns every
// targeted field whose decoded value differs. Both datasets must hold the
// same records in the same order.
func Changes(before, after works.Dataset, fields []string, idField string) []Change {
	var out []Change
	n := min(len(before), len(after))
	for i := 0; i < n; i++ {
		for _, field := range fields {
			b, bok := before[i].Decode(field)
			a, aok := after[i].Decode(field)
			if bok == aok && reflect.DeepEqual(b, a) {
				continue
			}
			out = append(out, Change{
				ID:     RecordID(after[i], idField, i),
				Field:  field,
				Before: b,
				After:  a,
			})
		}
	}
	return out
}

// Top counts the string values of field across ds and returns the n most
// frequent, highest first. Equal counts keep first-seen order.
func Top(ds works.Dataset, field string, n int) []Tally {
	index := make(map[string]int)
	tallies := make([]Tally, 0)
	for _, r := range ds {
		for _, v := range r.Strings(field) {
			i, ok := index[v]
			if !ok {
				i = len(tallies)
				index[v] = i
				tallies = append(tallies, Tally{Value: v})
			}
			tallies[i].Count++
		}
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Count > tallies[j].Count
	})
	if n > 0 && len(tallies) > n {
		tallies = tallies[:n]
	}
	return tallies
}

// TopAll returns the tally of every field, in field order.
func TopAll(ds works.Dataset, fields []string, n int) []FieldTally {
	out := make([]FieldTally, len(fields))
	for i, f := range fields {
		out[i] = FieldTally{Field: f, Values: Top(ds, f, n)}
	}
	return out
}
