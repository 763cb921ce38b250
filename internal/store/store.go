// Package store keeps serialized automata in a bbolt database, keyed by name.
// Each value is a small header describing the automaton followed by the blob
// produced by Serialize. Writes are transactional.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/petar-dambovaliev/daac"
	bolt "go.etcd.io/bbolt"
)

var bucketAutomata = []byte("automata")

// ErrNotFound is returned by Get and Delete for unknown names.
var ErrNotFound = errors.New("automaton not found")

const (
	headerVersion = 1
	headerSize    = 4 + 1 + 1 + 1 + 4

	flagCharwise = 1 << 0
)

var headerMagic = [4]byte{'D', 'A', 'A', 'C'}

// Entry is a stored automaton.
type Entry struct {
	Charwise bool
	Kind     daac.MatchKind
	Patterns int
	Blob     []byte
}

// Info describes a stored automaton without its blob.
type Info struct {
	Name     string
	Charwise bool
	Kind     daac.MatchKind
	Patterns int
	Size     int
}

// Store is a bbolt-backed automaton store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAutomata)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores e under name, replacing any previous entry.
func (s *Store) Put(name string, e Entry) error {
	if name == "" {
		return fmt.Errorf("empty automaton name")
	}
	if e.Patterns < 0 || uint64(e.Patterns) > 1<<32-1 {
		return fmt.Errorf("pattern count %d out of range", e.Patterns)
	}
	val := make([]byte, headerSize, headerSize+len(e.Blob))
	encodeHeader(val, e)
	val = append(val, e.Blob...)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAutomata).Put([]byte(name), val)
	})
}

// Get returns the entry stored under name.
func (s *Store) Get(name string) (Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketAutomata).Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		h, err := decodeHeader(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		e = h
		// bbolt slices are only valid within the transaction
		e.Blob = make([]byte, len(v)-headerSize)
		copy(e.Blob, v[headerSize:])
		return nil
	})
	return e, err
}

// List returns every stored automaton sorted by name.
func (s *Store) List() ([]Info, error) {
	var infos []Info
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAutomata).ForEach(func(k, v []byte) error {
			h, err := decodeHeader(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			infos = append(infos, Info{
				Name:     string(k),
				Charwise: h.Charwise,
				Kind:     h.Kind,
				Patterns: h.Patterns,
				Size:     len(v) - headerSize,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes the entry stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAutomata)
		if b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(name))
	})
}

func encodeHeader(dst []byte, e Entry) {
	copy(dst, headerMagic[:])
	dst[4] = headerVersion
	var flags byte
	if e.Charwise {
		flags |= flagCharwise
	}
	dst[5] = flags
	dst[6] = byte(e.Kind)
	binary.LittleEndian.PutUint32(dst[7:], uint32(e.Patterns))
}

func decodeHeader(v []byte) (Entry, error) {
	if len(v) < headerSize {
		return Entry{}, fmt.Errorf("header truncated: %d bytes", len(v))
	}
	if [4]byte(v[:4]) != headerMagic {
		return Entry{}, fmt.Errorf("bad magic %q", v[:4])
	}
	if v[4] != headerVersion {
		return Entry{}, fmt.Errorf("unsupported version %d", v[4])
	}
	if v[5]&^flagCharwise != 0 {
		return Entry{}, fmt.Errorf("unknown flags %#x", v[5])
	}
	kind := daac.MatchKind(v[6])
	if kind > daac.LeftMostFirstMatch {
		return Entry{}, fmt.Errorf("unknown match kind %d", v[6])
	}
	return Entry{
		Charwise: v[5]&flagCharwise != 0,
		Kind:     kind,
		Patterns: int(binary.LittleEndian.Uint32(v[7:])),
	}, nil
}
