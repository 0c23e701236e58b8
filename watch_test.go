package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRelevant(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.dx")
	wt, err := newWatcher(script, "")
	require.NoError(t, err)
	defer wt.Close()

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: script, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: script, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: script, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: script, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "other.dx"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wt.relevant(tt.ev))
		})
	}
}

func TestWatcherLoop(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.dx")
	require.NoError(t, os.WriteFile(script, []byte("x := 1\n"), 0644))

	wt, err := newWatcher(script)
	require.NoError(t, err)

	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- wt.loop(20*time.Millisecond, func(name string) { changed <- name }, func(time.Time) {})
	}()

	require.NoError(t, os.WriteFile(script, []byte("x := 2\n"), 0644))

	select {
	case name := <-changed:
		assert.Equal(t, script, filepath.Clean(name))
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	require.NoError(t, wt.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, errWatchClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}
