package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemClipboard(t *testing.T) {
	c := newMemClipboard()

	assert.Error(t, c.Set([]byte("x")), "set needs an open clipboard")

	require.NoError(t, c.Open())
	assert.ErrorIs(t, c.Open(), errClipboardBusy)
	require.NoError(t, c.Set([]byte("first")))

	data, _ := c.Read()
	assert.Empty(t, data, "nothing is visible before commit")

	require.NoError(t, c.Commit())
	c.Close()

	data, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

// failingClipboard accepts nothing.
type failingClipboard struct {
	memClipboard
}

func (c *failingClipboard) Commit() error {
	return errors.New("device gone")
}

func TestClipboardWriteFailure(t *testing.T) {
	ti := newTestInterp(t)
	ti.SetClipboard(&failingClipboard{})

	r, err := ti.Exec(`Clipboard := "lost"`)
	require.NoError(t, err)
	assert.Equal(t, FAIL, r)
	require.Len(t, ti.sink.msgs, 1)
	assert.Contains(t, ti.sink.msgs[0], "Can't commit clipboard.")

	got, err := ti.EvalString("Clipboard")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
