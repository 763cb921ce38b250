package store

import (
	"path/filepath"
	"testing"

	"github.com/petar-dambovaliev/daac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestPutGet(t *testing.T) {
	s, _ := newTestStore(t)

	a, err := daac.NewBuilder[uint32](daac.Opts{MatchKind: daac.LeftMostLongestMatch}).Build([]string{"he", "hers"})
	require.NoError(t, err)
	require.NoError(t, s.Put("greek", Entry{Kind: daac.LeftMostLongestMatch, Patterns: 2, Blob: a.Serialize()}))

	e, err := s.Get("greek")
	require.NoError(t, err)
	assert.False(t, e.Charwise)
	assert.Equal(t, daac.LeftMostLongestMatch, e.Kind)
	assert.Equal(t, 2, e.Patterns)

	b, rest, err := daac.Deserialize[uint32](e.Blob)
	require.NoError(t, err)
	assert.Empty(t, rest)
	m := b.FindAll([]byte("ushers"))
	require.Len(t, m, 1)
	assert.Equal(t, 2, m[0].Start())
	assert.Equal(t, 6, m[0].End())
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("nope"), ErrNotFound)
}

func TestPutReplaces(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Put("x", Entry{Patterns: 1, Blob: []byte{1}}))
	require.NoError(t, s.Put("x", Entry{Charwise: true, Kind: daac.LeftMostFirstMatch, Patterns: 3, Blob: []byte{2, 3}}))

	e, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, Entry{Charwise: true, Kind: daac.LeftMostFirstMatch, Patterns: 3, Blob: []byte{2, 3}}, e)
}

func TestPutRejects(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Error(t, s.Put("", Entry{}))
	assert.Error(t, s.Put("x", Entry{Patterns: -1}))
}

func TestListAndDelete(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Put("b", Entry{Charwise: true, Patterns: 5, Blob: make([]byte, 10)}))
	require.NoError(t, s.Put("a", Entry{Kind: daac.LeftMostFirstMatch, Patterns: 1, Blob: make([]byte, 3)}))

	infos, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []Info{
		{Name: "a", Kind: daac.LeftMostFirstMatch, Patterns: 1, Size: 3},
		{Name: "b", Charwise: true, Patterns: 5, Size: 10},
	}, infos)

	require.NoError(t, s.Delete("a"))
	infos, err = s.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "b", infos[0].Name)
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Put("k", Entry{Patterns: 7, Blob: []byte("blob")}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	e, err := s2.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), e.Blob)
	assert.Equal(t, 7, e.Patterns)
}

func TestCorruptHeader(t *testing.T) {
	tests := []struct {
		name string
		val  []byte
	}{
		{"short", []byte("DAA")},
		{"magic", []byte("XAAC\x01\x00\x00\x00\x00\x00\x00")},
		{"version", []byte("DAAC\x02\x00\x00\x00\x00\x00\x00")},
		{"flags", []byte("DAAC\x01\x02\x00\x00\x00\x00\x00")},
		{"kind", []byte("DAAC\x01\x00\x03\x00\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			err := s.db.Update(func(tx *bolt.Tx) error {
				return tx.Bucket(bucketAutomata).Put([]byte("bad"), tt.val)
			})
			require.NoError(t, err)
			_, err = s.Get("bad")
			assert.Error(t, err)
			_, err = s.List()
			assert.Error(t, err)
		})
	}
}
