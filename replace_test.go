package daac

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceAll(t *testing.T) {
	a := mustBuild(t, LeftMostLongestMatch, []string{"cat", "dog", "category"})
	r := NewReplacer[uint32](a)

	assert.Equal(t, "feline and canine", r.ReplaceAll("cat and dog", []string{"feline", "canine", "class"}))
	assert.Equal(t, "class of feline", r.ReplaceAll("category of cat", []string{"feline", "canine", "class"}))
	assert.Equal(t, "no match here", r.ReplaceAll("no match here", nil))
}

func TestReplaceAllCharwise(t *testing.T) {
	c := mustBuildCharwise(t, LeftMostFirstMatch, []string{"東京", "京都"})
	r := NewReplacer[uint32](c)
	assert.Equal(t, "Tokyo都 Kyoto", r.ReplaceAll("東京都 京都", []string{"Tokyo", "Kyoto"}))
}

func TestReplaceAllFuncStopsEarly(t *testing.T) {
	a := mustBuild(t, StandardMatch, []string{"a"})
	r := NewReplacer[uint32](a)
	n := 0
	got := r.ReplaceAllFunc("aaaa", func(m Match[uint32]) (string, bool) {
		n++
		return "b", n <= 2
	})
	assert.Equal(t, "bbaa", got)
	assert.Equal(t, 3, n)
}

func TestReplaceAllSkipsOverlaps(t *testing.T) {
	a := mustBuild(t, StandardMatch, []string{"abc", "b"})
	r := NewReplacer[uint32](a)
	// standard search reports "b" first and resumes after it
	assert.Equal(t, "aXc", r.ReplaceAll("abc", []string{"Y", "X"}))
}

func TestReplaceAllMissingValuePanics(t *testing.T) {
	a := mustBuild(t, StandardMatch, []string{"x", "y"})
	r := NewReplacer[uint32](a)
	assert.PanicsWithValue(t, "daac: no replacement for pattern value 1", func() {
		r.ReplaceAll("xy", []string{"z"})
	})
}

func TestReplacerReusesBuffers(t *testing.T) {
	a := mustBuild(t, LeftMostFirstMatch, []string{"foo"})
	r := NewReplacer[uint32](a)
	for i := 0; i < 10; i++ {
		in := strings.Repeat("foo bar ", i)
		assert.Equal(t, strings.Repeat("baz bar ", i), r.ReplaceAll(in, []string{"baz"}))
	}
}
