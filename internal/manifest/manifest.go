// Package manifest records content hashes of converted inputs so that batch
// conversion can skip files whose content and settings have not changed.
//
// Hashes are BLAKE3 digests, hex encoded. The manifest is stored as YAML in
// the output directory and written atomically.
package manifest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/alnah/go-syllabify/internal/fileutil"
	"github.com/alnah/go-syllabify/internal/yamlutil"
)

// FileName is the manifest file written into the output directory.
const FileName = ".syllabify-manifest.yaml"

// Version is the current manifest format version.
const Version = 1

var (
	ErrManifestParse   = errors.New("failed to parse manifest")
	ErrManifestVersion = errors.New("unsupported manifest version")
)

// Entry describes one converted input.
type Entry struct {
	Hash   string `yaml:"hash"`
	Output string `yaml:"output"`
}

type document struct {
	Version  int              `yaml:"version"`
	Settings string           `yaml:"settings,omitempty"`
	Entries  map[string]Entry `yaml:"entries"`
}

// Manifest is safe for concurrent use by batch workers.
type Manifest struct {
	path string

	mu       sync.Mutex
	settings string
	entries  map[string]Entry
	dirty    bool
}

// Hash returns the hex BLAKE3 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashSettings digests the parts of a configuration that affect output.
// A manifest recorded under different settings is treated as empty.
func HashSettings(parts ...string) string {
	h := blake3.New()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load reads the manifest in dir. A missing file yields an empty manifest.
// Entries recorded under other settings are discarded.
func Load(dir, settings string) (*Manifest, error) {
	m := &Manifest{
		path:     filepath.Join(dir, FileName),
		settings: settings,
		entries:  make(map[string]Entry),
	}

	data, err := yamlutil.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var doc document
	if err := yamlutil.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrManifestVersion, doc.Version)
	}
	if doc.Settings != settings {
		m.dirty = len(doc.Entries) > 0
		return m, nil
	}
	for k, v := range doc.Entries {
		m.entries[k] = v
	}
	return m, nil
}

// Path returns the manifest file location.
func (m *Manifest) Path() string {
	return m.path
}

// Len returns the number of recorded inputs.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Unchanged reports whether input was recorded with hash and its output
// still exists.
func (m *Manifest) Unchanged(input, hash string) bool {
	m.mu.Lock()
	e, ok := m.entries[key(input)]
	m.mu.Unlock()
	if !ok || e.Hash != hash {
		return false
	}
	return fileutil.FileExists(e.Output)
}

// Record stores the hash and output path for input.
func (m *Manifest) Record(input, hash, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(input)
	if e, ok := m.entries[k]; ok && e.Hash == hash && e.Output == output {
		return
	}
	m.entries[k] = Entry{Hash: hash, Output: output}
	m.dirty = true
}

// Forget drops input from the manifest.
func (m *Manifest) Forget(input string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(input)
	if _, ok := m.entries[k]; ok {
		delete(m.entries, k)
		m.dirty = true
	}
}

// Inputs returns the recorded inputs, sorted.
func (m *Manifest) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Save writes the manifest if it changed since Load.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil
	}

	data, err := yamlutil.Marshal(document{
		Version:  Version,
		Settings: m.settings,
		Entries:  m.entries,
	})
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(m.path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	m.dirty = false
	return nil
}

func key(input string) string {
	return filepath.ToSlash(filepath.Clean(input))
}
