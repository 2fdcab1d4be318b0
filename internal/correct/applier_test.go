package correct

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jackzampolin/worknorm/internal/works"
)

func mustParse(t *testing.T, doc string) works.Dataset {
	t.Helper()
	ds, err := works.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse dataset: %v", err)
	}
	return ds
}

func mustApplier(t *testing.T, opts Options) *Applier {
	t.Helper()
	if opts.Fields == nil {
		opts.Fields = DefaultFields
	}
	a, err := NewApplier(opts)
	if err != nil {
		t.Fatalf("failed to create applier: %v", err)
	}
	return a
}

func TestApplier_Exact(t *testing.T) {
	t.Run("replaces in place", func(t *testing.T) {
		a := mustApplier(t, Options{
			Policy: PolicyExact,
			Table:  Table{"facination": Replace("fascination")},
		})
		out, stats, err := a.Apply(mustParse(t, `[{"emotions":["facination","joy"]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := out[0].Strings("emotions"); !reflect.DeepEqual(got, []string{"fascination", "joy"}) {
			t.Errorf("unexpected emotions: %v", got)
		}
		if stats.Get("emotions").Replaced != 1 {
			t.Errorf("expected 1 replacement, got %+v", stats.Get("emotions"))
		}
	})

	t.Run("deletes matched elements", func(t *testing.T) {
		a := mustApplier(t, Options{
			Policy: PolicyExact,
			Table:  Table{"mémoire": Remove()},
		})
		out, stats, err := a.Apply(mustParse(t, `[{"emotions":["mémoire","joy","mémoire","fear"]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := out[0].Strings("emotions"); !reflect.DeepEqual(got, []string{"joy", "fear"}) {
			t.Errorf("unexpected emotions: %v", got)
		}
		if stats.Get("emotions").Removed != 2 {
			t.Errorf("expected 2 removals, got %+v", stats.Get("emotions"))
		}
	})

	t.Run("is case sensitive", func(t *testing.T) {
		a := mustApplier(t, Options{
			Policy: PolicyExact,
			Table:  Table{"facination": Replace("fascination")},
		})
		out, stats, err := a.Apply(mustParse(t, `[{"emotions":["Facination"]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := out[0].Strings("emotions"); !reflect.DeepEqual(got, []string{"Facination"}) {
			t.Errorf("unexpected emotions: %v", got)
		}
		if stats.Total() != 0 {
			t.Errorf("expected no changes, got %+v", stats)
		}
	})

	t.Run("corrects the last of repeated keys", func(t *testing.T) {
		a := mustApplier(t, Options{Policy: PolicyExact, Table: DefaultTable(PolicyExact)})
		out, stats, err := a.Apply(mustParse(t, `[{"emotions":["joy"],"emotions":["facination"]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		want := `{"emotions":["joy"],"emotions":["fascination"]}`
		if string(out[0].Raw()) != want {
			t.Errorf("expected %s, got %s", want, out[0].Raw())
		}
		if stats.Total() != 1 {
			t.Errorf("expected 1 change, got %+v", stats)
		}
	})

	t.Run("second pass over built-in table changes nothing", func(t *testing.T) {
		a := mustApplier(t, Options{Policy: PolicyExact, Table: DefaultTable(PolicyExact)})
		first, stats, err := a.Apply(mustParse(t, `[
			{"id":1,"emotions":["facination","mémoire","suprise","joie"],"categories":["portait","nature morte ","temps et vécu"]},
			{"id":2,"emotions":["souvenir","inquietude"],"categories":["abstaction","memoire collective"]}
		]`))
		if err != nil {
			t.Fatalf("first Apply failed: %v", err)
		}
		if stats.Total() == 0 {
			t.Fatal("first pass should change something")
		}

		second, stats, err := a.Apply(first)
		if err != nil {
			t.Fatalf("second Apply failed: %v", err)
		}
		if stats.Total() != 0 {
			t.Errorf("second pass changed values: %+v", stats)
		}
		for i := range first {
			if string(second[i].Raw()) != string(first[i].Raw()) {
				t.Errorf("record %d changed on second pass: %s -> %s", i, first[i].Raw(), second[i].Raw())
			}
		}
	})
}

func TestApplier_Normalized(t *testing.T) {
	a := mustApplier(t, Options{
		Policy: PolicyNormalized,
		Table:  Table{"temps et vécu": Replace("temps vécu")},
	})

	t.Run("matches case and whitespace variants", func(t *testing.T) {
		out, _, err := a.Apply(mustParse(t, `[{"categories":["Temps et Vécu "]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := out[0].Strings("categories"); !reflect.DeepEqual(got, []string{"temps vécu"}) {
			t.Errorf("unexpected categories: %v", got)
		}
	})

	t.Run("passes unmatched values through verbatim", func(t *testing.T) {
		in := mustParse(t, `[{"categories":["  Portrait DE Famille "]}]`)
		out, _, err := a.Apply(in)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if string(out[0].Raw()) != string(in[0].Raw()) {
			t.Errorf("expected record unchanged, got %s", out[0].Raw())
		}
	})

	t.Run("does not trim next line characters", func(t *testing.T) {
		in := mustParse(t, `[{"categories":["temps et vécu\u0085"]}]`)
		out, stats, err := a.Apply(in)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if string(out[0].Raw()) != string(in[0].Raw()) || stats.Total() != 0 {
			t.Errorf("expected record unchanged, got %s (%+v)", out[0].Raw(), stats)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		once, _, err := a.Apply(mustParse(t, `[{"categories":["TEMPS ET VÉCU","x"],"emotions":["temps et vécu"]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		twice, stats, err := a.Apply(once)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if string(once[0].Raw()) != string(twice[0].Raw()) {
			t.Errorf("second pass changed record: %s -> %s", once[0].Raw(), twice[0].Raw())
		}
		if stats.Total() != 0 {
			t.Errorf("expected no changes on second pass, got %+v", stats)
		}
	})

	t.Run("folds unicode when enabled", func(t *testing.T) {
		folded := mustApplier(t, Options{
			Policy:      PolicyNormalized,
			Table:       Table{"temps et vécu": Replace("temps vécu")},
			FoldUnicode: true,
		})
		// "vécu" with a combining acute accent.
		out, _, err := folded.Apply(mustParse(t, `[{"categories":["Temps et ve\u0301cu"]}]`))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := out[0].Strings("categories"); !reflect.DeepEqual(got, []string{"temps vécu"}) {
			t.Errorf("unexpected categories: %v", got)
		}
	})
}

func TestApplier_Invariants(t *testing.T) {
	a := mustApplier(t, Options{Policy: PolicyExact, Table: DefaultTable(PolicyExact)})
	in := mustParse(t, `[
		{"id":1,"title":"Sans titre","emotions":["joie",true,"suprise"]},
		{"id":2,"categories":"portait"},
		{"id":3},
		null,
		{"id":5,"categories":[],"emotions":["mémoire"]}
	]`)
	before := make([]string, len(in))
	for i, r := range in {
		before[i] = string(r.Raw())
	}

	out, stats, err := a.Apply(in)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("record count changed: %d -> %d", len(in), len(out))
	}
	for i, r := range in {
		if string(r.Raw()) != before[i] {
			t.Errorf("input record %d was modified", i)
		}
	}
	for _, i := range []int{1, 2, 3} {
		if string(out[i].Raw()) != before[i] {
			t.Errorf("record %d should be untouched, got %s", i, out[i].Raw())
		}
	}

	vals, _ := out[0].Values("emotions")
	if len(vals) != 3 || vals[1].Raw != "true" || vals[2].Str != "surprise" {
		t.Errorf("unexpected emotions: %+v", vals)
	}
	if got, ok := out[4].Values("emotions"); !ok || len(got) != 0 {
		t.Errorf("expected empty emotions array, got %v (present=%v)", got, ok)
	}
	if got := stats.Get("emotions"); got.Replaced != 1 || got.Removed != 1 {
		t.Errorf("unexpected emotion stats: %+v", got)
	}
	if got := stats.Get("categories"); got.Replaced != 0 {
		t.Errorf("non-array categories should not be counted: %+v", got)
	}
}

func TestApplier_EndToEnd(t *testing.T) {
	in := mustParse(t, `[{"id":1,"emotions":["facination","suprise"],"categories":["temps et vécu"]}]`)
	a := mustApplier(t, Options{Policy: PolicyExact, Table: DefaultTable(PolicyExact)})

	out, stats, err := a.Apply(in)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := `{"id":1,"emotions":["fascination","surprise"],"categories":["temps vécu"]}`
	if string(out[0].Raw()) != want {
		t.Errorf("expected %s, got %s", want, out[0].Raw())
	}
	if got := stats.Get("emotions"); got.Replaced != 2 || got.Removed != 0 {
		t.Errorf("unexpected emotion stats: %+v", got)
	}
	if got := stats.Get("categories"); got.Replaced != 1 {
		t.Errorf("unexpected category stats: %+v", got)
	}
}

func TestNewApplier_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{
			name: "deletion under normalized policy",
			opts: Options{Policy: PolicyNormalized, Fields: DefaultFields, Table: Table{"mémoire": Remove()}},
			want: ErrDeleteNotSupported,
		},
		{
			name: "non-normalized key",
			opts: Options{Policy: PolicyNormalized, Fields: DefaultFields, Table: Table{"Temps": Replace("temps")}},
			want: ErrInvalidTable,
		},
		{
			name: "chained replacements",
			opts: Options{Policy: PolicyNormalized, Fields: DefaultFields, Table: Table{
				"a": Replace("b"),
				"b": Replace("c"),
			}},
			want: ErrInvalidTable,
		},
		{
			name: "empty key",
			opts: Options{Policy: PolicyExact, Fields: DefaultFields, Table: Table{"": Replace("x")}},
			want: ErrInvalidTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewApplier(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("unknown policy", func(t *testing.T) {
		if _, err := NewApplier(Options{Policy: "fuzzy", Fields: DefaultFields}); err == nil {
			t.Error("expected error for unknown policy")
		}
	})

	t.Run("no fields", func(t *testing.T) {
		if _, err := NewApplier(Options{Policy: PolicyExact}); err == nil {
			t.Error("expected error for missing fields")
		}
	})
}
