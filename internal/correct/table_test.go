package correct

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		fold bool
		want string
	}{
		{"Temps et Vécu ", false, "temps et vécu"},
		{"\t JOIE\n", false, "joie"},
		{"\uFEFFportrait", false, "portrait"},
		{"\u00a0portrait\u2003", false, "portrait"},
		{"portraits\u0085", false, "portraits\u0085"},
		{"déjà", false, "déjà"},
		{"\ufb01gure", false, "\ufb01gure"},
		{"\ufb01gure", true, "figure"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in, tt.fold); got != tt.want {
			t.Errorf("NormalizeKey(%q, %v) = %q, want %q", tt.in, tt.fold, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for _, name := range []string{"exact", "normalized"} {
		p, err := ParsePolicy(name)
		if err != nil || string(p) != name {
			t.Errorf("ParsePolicy(%q) = %q, %v", name, p, err)
		}
	}
	if _, err := ParsePolicy("Exact"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestDefaultTable(t *testing.T) {
	for _, p := range []Policy{PolicyExact, PolicyNormalized} {
		tbl := DefaultTable(p)
		if len(tbl) == 0 {
			t.Errorf("%s: expected built-in entries", p)
		}
		if err := tbl.Validate(p, false); err != nil {
			t.Errorf("%s: built-in table is invalid: %v", p, err)
		}
	}

	t.Run("returns a copy", func(t *testing.T) {
		tbl := DefaultTable(PolicyExact)
		tbl["facination"] = Replace("changed")
		if DefaultTable(PolicyExact)["facination"].Replacement != "fascination" {
			t.Error("mutating a returned table changed the defaults")
		}
	})

	t.Run("exact replacements are never keys", func(t *testing.T) {
		tbl := DefaultTable(PolicyExact)
		for key, e := range tbl {
			if e.Delete {
				continue
			}
			if _, ok := tbl[e.Replacement]; ok {
				t.Errorf("replacement %q of %q is itself a key", e.Replacement, key)
			}
		}
	})

	t.Run("exact table covers documented typos", func(t *testing.T) {
		tbl := DefaultTable(PolicyExact)
		if tbl["facination"] != Replace("fascination") {
			t.Errorf("unexpected facination entry: %+v", tbl["facination"])
		}
		if tbl["mémoire"] != Remove() {
			t.Errorf("unexpected mémoire entry: %+v", tbl["mémoire"])
		}
	})
}

func TestParseTable(t *testing.T) {
	t.Run("null means delete", func(t *testing.T) {
		tbl, err := ParseTable([]byte(`{"mémoire": null, "suprise": "surprise"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tbl["mémoire"].Delete {
			t.Error("expected deletion entry")
		}
		if tbl["suprise"].Replacement != "surprise" {
			t.Errorf("unexpected replacement: %+v", tbl["suprise"])
		}
	})

	invalid := map[string]string{
		"not an object":  `["a","b"]`,
		"numeric value":  `{"a": 1}`,
		"empty key":      `{"": "x"}`,
		"malformed JSON": `{"a": `,
		"nested object":  `{"a": {"b": "c"}}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseTable([]byte(doc)); !errors.Is(err, ErrInvalidTable) {
				t.Errorf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestTableFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix.json")
	want := DefaultTable(PolicyExact)

	if err := WriteTableFile(path, want); err != nil {
		t.Fatalf("WriteTableFile failed: %v", err)
	}
	got, err := LoadTableFile(path, PolicyExact, false)
	if err != nil {
		t.Fatalf("LoadTableFile failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for k, e := range want {
		if got[k] != e {
			t.Errorf("%q: expected %+v, got %+v", k, e, got[k])
		}
	}
}

func TestLoadTableFile_PolicyChecks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normalize.json")
	if err := os.WriteFile(path, []byte(`{"mémoire": null}`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadTableFile(path, PolicyExact, false); err != nil {
		t.Errorf("exact policy should accept deletions: %v", err)
	}
	if _, err := LoadTableFile(path, PolicyNormalized, false); !errors.Is(err, ErrDeleteNotSupported) {
		t.Errorf("expected ErrDeleteNotSupported, got %v", err)
	}
	if _, err := LoadTableFile(filepath.Join(t.TempDir(), "missing.json"), PolicyExact, false); err == nil {
		t.Error("expected error for missing file")
	}
}
