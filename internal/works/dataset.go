package works

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/moby/sys/atomicwriter"
)

var (
	// ErrLoad is returned when the dataset file cannot be read or parsed.
	ErrLoad = errors.New("failed to load dataset")

	// ErrWrite is returned when the dataset file cannot be written.
	ErrWrite = errors.New("failed to write dataset")
)

// Dataset is the ordered list of works loaded from a single JSON document.
type Dataset []Record

// Load reads the JSON array at path.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a JSON array of records.
func Parse(data []byte) (Dataset, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if raws == nil {
		return nil, fmt.Errorf("%w: document is not a JSON array", ErrLoad)
	}

	ds := make(Dataset, len(raws))
	for i, raw := range raws {
		ds[i] = Record{raw: raw}
	}
	return ds, nil
}

// Marshal renders the dataset as JSON with two-space indentation.
func (ds Dataset) Marshal() ([]byte, error) {
	raws := make([]json.RawMessage, len(ds))
	for i, r := range ds {
		raws[i] = r.raw
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raws); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteOptions controls how Save replaces the dataset file.
type WriteOptions struct {
	// Atomic writes to a temporary file and renames it over path.
	// Without it the file is truncated and rewritten in place, and a crash
	// mid-write leaves it corrupt.
	Atomic bool
}

// Save writes the dataset to path, keeping the existing file mode.
func Save(path string, ds Dataset, opts WriteOptions) error {
	data, err := ds.Marshal()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if opts.Atomic {
		err = atomicwriter.WriteFile(path, data, perm)
	} else {
		err = os.WriteFile(path, data, perm)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
