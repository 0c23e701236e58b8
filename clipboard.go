package main

import (
	"errors"
	"sync"
)

// ClipboardStore is the backing store of the Clipboard variable. Writes go
// through an Open, Set, Commit sequence so that a failed write leaves the
// old contents in place.
type ClipboardStore interface {
	Open() error
	Set(data []byte) error
	Commit() error
	Close()
	Read() ([]byte, error)
}

var errClipboardBusy = errors.New("clipboard is already open")

// memClipboard keeps the clipboard in process memory.
type memClipboard struct {
	mu      sync.Mutex
	data    []byte
	pending []byte
	open    bool
}

func newMemClipboard() *memClipboard {
	return &memClipboard{}
}

func (c *memClipboard) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return errClipboardBusy
	}
	c.open = true
	c.pending = nil
	return nil
}

func (c *memClipboard) Set(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return errors.New("clipboard not open")
	}
	c.pending = append(c.pending[:0], data...)
	return nil
}

func (c *memClipboard) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return errors.New("clipboard not open")
	}
	c.data = c.pending
	c.pending = nil
	return nil
}

func (c *memClipboard) Close() {
	c.mu.Lock()
	c.open = false
	c.pending = nil
	c.mu.Unlock()
}

func (c *memClipboard) Read() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data, nil
}

// clipboardText returns the clipboard contents, empty when unreadable.
func (in *Interp) clipboardText() []byte {
	data, err := in.clipboard.Read()
	if err != nil {
		in.warn(in.curLine, sf("clipboard read failed: %v", err))
		return nil
	}
	return data
}

func (in *Interp) setClipboard(b []byte) ResultType {
	cb := in.clipboard
	if err := cb.Open(); err != nil {
		return in.reportError("Can't open clipboard for writing.", err.Error())
	}
	defer cb.Close()
	if err := cb.Set(b); err != nil {
		return in.reportError("Can't write to clipboard.", err.Error())
	}
	if err := cb.Commit(); err != nil {
		return in.reportError("Can't commit clipboard.", err.Error())
	}
	return OK
}
