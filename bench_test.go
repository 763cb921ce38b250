package daac

import (
	"math/rand"
	"strings"
	"testing"

	coregx "github.com/coregx/ahocorasick"
)

func benchCorpus() ([]string, []byte) {
	rng := rand.New(rand.NewSource(1))
	patterns := randomPatterns(rng, "abcdefghijklmnopqrstuvwxyz", 1000, 12)
	var sb strings.Builder
	for sb.Len() < 1<<20 {
		sb.WriteString(randomText(rng, "abcdefghijklmnopqrstuvwxyz ", 64))
	}
	return patterns, []byte(sb.String())
}

func BenchmarkBuild(b *testing.B) {
	patterns, _ := benchCorpus()
	b.Run("bytewise", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := New[uint32](patterns); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("charwise", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := NewCharwise[uint32](patterns); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkFind(b *testing.B) {
	patterns, haystack := benchCorpus()
	for _, kind := range []MatchKind{StandardMatch, LeftMostLongestMatch} {
		a, err := NewBuilder[uint32](Opts{MatchKind: kind}).Build(patterns)
		if err != nil {
			b.Fatal(err)
		}
		c, err := NewCharwiseBuilder[uint32](Opts{MatchKind: kind}).Build(patterns)
		if err != nil {
			b.Fatal(err)
		}
		b.Run("bytewise/"+kind.String(), func(b *testing.B) {
			b.SetBytes(int64(len(haystack)))
			for i := 0; i < b.N; i++ {
				a.FindAll(haystack)
			}
		})
		b.Run("charwise/"+kind.String(), func(b *testing.B) {
			b.SetBytes(int64(len(haystack)))
			for i := 0; i < b.N; i++ {
				c.FindAll(haystack)
			}
		})
	}
}

func BenchmarkFindOverlapping(b *testing.B) {
	patterns, haystack := benchCorpus()
	a, err := New[uint32](patterns)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(haystack)))
	for i := 0; i < b.N; i++ {
		it := a.IterOverlapping(haystack)
		for _, ok := it.Next(); ok; _, ok = it.Next() {
		}
	}
}

func BenchmarkPrefilter(b *testing.B) {
	a, err := New[uint32]([]string{"needle", "nail"})
	if err != nil {
		b.Fatal(err)
	}
	haystack := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 1<<14) + "needle")
	b.SetBytes(int64(len(haystack)))
	for i := 0; i < b.N; i++ {
		a.FindAll(haystack)
	}
}

func BenchmarkIsMatchCoregx(b *testing.B) {
	patterns, haystack := benchCorpus()
	builder := coregx.NewBuilder()
	for _, p := range patterns {
		builder.AddPattern([]byte(p))
	}
	oracle, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}
	a, err := New[uint32](patterns)
	if err != nil {
		b.Fatal(err)
	}
	half := haystack[:len(haystack)/2]
	b.Run("daac", func(b *testing.B) {
		b.SetBytes(int64(len(half)))
		for i := 0; i < b.N; i++ {
			a.IsMatch(half)
		}
	})
	b.Run("coregx", func(b *testing.B) {
		b.SetBytes(int64(len(half)))
		for i := 0; i < b.N; i++ {
			oracle.IsMatch(half)
		}
	})
}

func BenchmarkDeserialize(b *testing.B) {
	patterns, _ := benchCorpus()
	a, err := New[uint32](patterns)
	if err != nil {
		b.Fatal(err)
	}
	blob := a.Serialize()
	b.Run("unchecked", func(b *testing.B) {
		b.SetBytes(int64(len(blob)))
		for i := 0; i < b.N; i++ {
			DeserializeUnchecked[uint32](blob)
		}
	})
	b.Run("validated", func(b *testing.B) {
		b.SetBytes(int64(len(blob)))
		for i := 0; i < b.N; i++ {
			if _, _, err := Deserialize[uint32](blob); err != nil {
				b.Fatal(err)
			}
		}
	})
}
