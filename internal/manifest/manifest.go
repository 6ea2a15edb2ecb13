// Package manifest persists the installed-themes record: a JSON mapping
// of theme name to {version, source_url, installed_path, source}.
package manifest

import (
	"encoding/json"
	"os"

	"github.com/pawlette/pawlette/internal/paths"
)

// Source is the provenance of an installed theme.
type Source string

const (
	SourceOfficial  Source = "official"
	SourceCommunity Source = "community"
	SourceLocal     Source = "local"
)

// Record is a single installed-theme entry.
type Record struct {
	Version       string  `json:"version"`
	SourceURL     string  `json:"source_url"`
	InstalledPath string  `json:"installed_path"`
	Source        *Source `json:"source"`
}

// Manifest is the in-memory installed-themes mapping; mutations are not
// persisted until Save is called.
type Manifest struct {
	path    string
	records map[string]Record
}

// Load reads the manifest file, returning an empty manifest if it is absent.
// A record with an unrecognized source string degrades its Source field to
// nil rather than failing the whole load.
func Load(path string) (*Manifest, error) {
	m := &Manifest{path: path, records: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}

	var raw map[string]rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for name, r := range raw {
		m.records[name] = r.toRecord()
	}
	return m, nil
}

// rawRecord decodes Source as a string so an unrecognized value can
// degrade to nil instead of failing unmarshal.
type rawRecord struct {
	Version       string `json:"version"`
	SourceURL     string `json:"source_url"`
	InstalledPath string `json:"installed_path"`
	Source        string `json:"source"`
}

func (r rawRecord) toRecord() Record {
	rec := Record{Version: r.Version, SourceURL: r.SourceURL, InstalledPath: r.InstalledPath}
	switch Source(r.Source) {
	case SourceOfficial, SourceCommunity, SourceLocal:
		s := Source(r.Source)
		rec.Source = &s
	default:
		rec.Source = nil
	}
	return rec
}

// Get returns the record for name and whether it exists. Absence of a
// record means the theme is not installed.
func (m *Manifest) Get(name string) (Record, bool) {
	r, ok := m.records[name]
	return r, ok
}

// Put inserts or replaces the record for name.
func (m *Manifest) Put(name string, r Record) {
	m.records[name] = r
}

// Remove deletes the record for name, if any.
func (m *Manifest) Remove(name string) {
	delete(m.records, name)
}

// All returns a copy of the full name->record mapping.
func (m *Manifest) All() map[string]Record {
	out := make(map[string]Record, len(m.records))
	for k, v := range m.records {
		out[k] = v
	}
	return out
}

// Save atomically persists the manifest as pretty-printed JSON.
func (m *Manifest) Save() error {
	out := make(map[string]any, len(m.records))
	for name, r := range m.records {
		entry := map[string]any{
			"version":        r.Version,
			"source_url":     r.SourceURL,
			"installed_path": r.InstalledPath,
		}
		if r.Source != nil {
			entry["source"] = string(*r.Source)
		} else {
			entry["source"] = nil
		}
		out[name] = entry
	}
	return paths.AtomicWriteJSON(m.Path(), out)
}

// Path returns the manifest's backing file path.
func (m *Manifest) Path() string {
	if m.path != "" {
		return m.path
	}
	return paths.ManifestFile
}
