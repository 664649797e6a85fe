// Package devices resolves 9-pin device type codes to make and model.
package devices

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed devices.toml
var tableData []byte

// Entry describes one device type code
type Entry struct {
	Code   uint16   `toml:"code" yaml:"code"`
	Make   string   `toml:"make" yaml:"make"`
	Models []string `toml:"models" yaml:"models"`
}

// Model returns all model names joined by commas
func (e Entry) Model() string {
	return strings.Join(e.Models, ", ")
}

// Table maps device type codes to make and model
type Table struct {
	entries map[uint16]Entry
}

type tableFile struct {
	Device []Entry `toml:"device"`
}

// Load parses the embedded device table
func Load() (*Table, error) {
	var file tableFile
	if _, err := toml.Decode(string(tableData), &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded device table: %w", err)
	}
	t := &Table{entries: make(map[uint16]Entry)}
	t.Merge(file.Device)
	return t, nil
}

// Merge adds entries, replacing those with the same code
func (t *Table) Merge(entries []Entry) {
	for _, e := range entries {
		t.entries[e.Code] = e
	}
}

// Lookup returns the entry for code
func (t *Table) Lookup(code uint16) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[code]
	return e, ok
}

// Entries returns all entries sorted by code
func (t *Table) Entries() []Entry {
	list := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}
