// Package dict loads pattern dictionaries for the command line tool.
//
// Two formats are understood. YAML files (.yaml, .yml) hold a list of
// entries:
//
//	- pattern: foo
//	  value: 7
//	- pattern: bar
//
// An entry without a value gets its position in the list. Any other file is
// plain text with one pattern per line; empty lines are skipped and the value
// is the pattern's ordinal.
package dict

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/petar-dambovaliev/daac"
	"gopkg.in/yaml.v3"
)

const maxLineSize = 1 << 20

// yamlEntry is the YAML-serialized form of a dictionary entry.
type yamlEntry struct {
	Pattern string  `yaml:"pattern"`
	Value   *uint32 `yaml:"value,omitempty"`
}

// IsYAML reports whether path is read as a YAML dictionary.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the dictionary at path.
func Load(path string) ([]daac.Pair[uint32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	pairs, err := Parse(f, IsYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pairs, nil
}

// Parse reads a dictionary from r.
func Parse(r io.Reader, isYAML bool) ([]daac.Pair[uint32], error) {
	if isYAML {
		return parseYAML(r)
	}
	return parseText(r)
}

func parseYAML(r io.Reader) ([]daac.Pair[uint32], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var entries []yamlEntry
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}
	pairs := make([]daac.Pair[uint32], 0, len(entries))
	for i, e := range entries {
		if e.Pattern == "" {
			return nil, fmt.Errorf("entry %d: empty pattern", i)
		}
		v := uint32(i)
		if e.Value != nil {
			v = *e.Value
		}
		pairs = append(pairs, daac.Pair[uint32]{Pattern: e.Pattern, Value: v})
	}
	return pairs, nil
}

func parseText(r io.Reader) ([]daac.Pair[uint32], error) {
	var pairs []daac.Pair[uint32]
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		pairs = append(pairs, daac.Pair[uint32]{Pattern: line, Value: uint32(len(pairs))})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return pairs, nil
}
