package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatch(t *testing.T, path string) (*Watcher, <-chan string) {
	t.Helper()
	w, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(path, func(p string) { changed <- p }))
	// give the watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\n"), 0644))
	_, changed := startWatch(t, dict)

	require.NoError(t, os.WriteFile(dict, []byte("cat\ndog\n"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for write")
	assert.Equal(t, dict, path)
}

func TestDetectsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\n"), 0644))
	_, changed := startWatch(t, dict)

	tmp := filepath.Join(dir, ".words.txt.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("dog\n"), 0644))
	require.NoError(t, os.Rename(tmp, dict))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for rename")
	assert.Equal(t, dict, path)
}

func TestIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\n"), 0644))
	_, changed := startWatch(t, dict)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "sibling file should not trigger a callback")
}

func TestDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\n"), 0644))
	_, changed := startWatch(t, dict)

	for i := 0; i < 5; i++ {
		f, err := os.OpenFile(dict, os.O_APPEND|os.O_WRONLY, 0644)
		require.NoError(t, err)
		_, err = f.WriteString("dog\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	_, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok)
	_, ok = waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "burst should collapse into one callback")
}

func TestStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\n"), 0644))
	w, changed := startWatch(t, dict)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())

	require.NoError(t, os.WriteFile(dict, []byte("dog\n"), 0644))
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "no callbacks after Stop")
}

func TestWatchOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\n"), 0644))
	w, changed := startWatch(t, dict)

	assert.ErrorIs(t, w.Watch(other, func(string) { t.Error("second callback fired") }), ErrWatching)

	require.NoError(t, os.WriteFile(other, []byte("dog\n"), 0644))
	require.NoError(t, os.WriteFile(dict, []byte("dog\n"), 0644))
	got, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, dict, got)
	_, ok = waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok)
}

func TestWatchAfterStop(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.ErrorIs(t, w.Watch(filepath.Join(t.TempDir(), "words.txt"), func(string) {}), ErrStopped)
}

func TestWatchMissingDirectory(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "nope", "words.txt"), func(string) {}))
}
