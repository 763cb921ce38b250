package daac

import (
	"bytes"
	"fmt"
	"sync"
)

var pool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Replacer rewrites the matches a Finder reports.
type Replacer[V Value] struct {
	finder Finder[V]
}

// NewReplacer returns a Replacer over finder. Leftmost automata give
// non-overlapping, greedy replacements.
func NewReplacer[V Value](finder Finder[V]) Replacer[V] {
	return Replacer[V]{finder: finder}
}

// ReplaceAllFunc replaces the matches found in the haystack according to the user provided function
// it gives fine grained control over what is replaced.
// A user can chose to stop the replacing process early by returning false in the lambda
// In that case, everything from that point will be kept as the original haystack
func (r Replacer[V]) ReplaceAllFunc(haystack string, f func(match Match[V]) (string, bool)) string {
	matches := r.finder.FindAll(unsafeBytes(haystack))
	if len(matches) == 0 {
		return haystack
	}

	buf := pool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		pool.Put(buf)
	}()

	start := 0
	for _, match := range matches {
		if match.Start() < start {
			continue
		}
		rw, ok := f(match)
		if !ok {
			break
		}
		buf.WriteString(haystack[start:match.Start()])
		buf.WriteString(rw)
		start = match.End()
	}
	buf.WriteString(haystack[start:])
	return buf.String()
}

// ReplaceAll replaces every match with replaceWith[value], where value is the
// value of the matched pattern.
// It panics if a value is not an index of replaceWith.
func (r Replacer[V]) ReplaceAll(haystack string, replaceWith []string) string {
	return r.ReplaceAllFunc(haystack, func(match Match[V]) (string, bool) {
		v := match.Value()
		if v < 0 || uint64(v) >= uint64(len(replaceWith)) {
			panic(fmt.Sprintf("daac: no replacement for pattern value %d", v))
		}
		return replaceWith[uint64(v)], true
	})
}
