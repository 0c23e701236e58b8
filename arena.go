package main

import (
	"errors"
	"unsafe"
)

// SimpleHeap is an append-only block allocator for things that live as
// long as the process: line text, argument text, variable names and small
// variable contents. Nothing is ever freed individually.
type SimpleHeap struct {
	first     *heapBlock
	last      *heapBlock
	blocks    int
	allocated int
}

type heapBlock struct {
	next      *heapBlock
	buf       []byte
	free      int // cursor: offset of the first unused byte
	remaining int
}

var errArenaRequestTooLarge = errors.New("arena request exceeds block size")

// the only heap the interpreter uses
var simpleHeap = newSimpleHeap()

// shared terminator for zero-length strings handed out by Strdup
var emptyString = ""

func newSimpleHeap() *SimpleHeap {
	return &SimpleHeap{}
}

func newHeapBlock() *heapBlock {
	return &heapBlock{
		buf:       make([]byte, arenaBlockSize),
		remaining: arenaBlockSize,
	}
}

// Alloc returns size bytes from the current block, starting a new block
// when the current one cannot hold the request. The returned slice has its
// capacity clipped so that appending to it can never touch a neighbour.
func (h *SimpleHeap) Alloc(size int) ([]byte, error) {
	if size > arenaBlockSize {
		return nil, errArenaRequestTooLarge
	}
	if size < 0 {
		size = 0
	}
	if h.last == nil || size > h.last.remaining {
		b := newHeapBlock()
		if h.last == nil {
			h.first = b
		} else {
			h.last.next = b
		}
		h.last = b
		h.blocks++
	}
	b := h.last
	mem := b.buf[b.free : b.free+size : b.free+size]
	b.free += size
	b.remaining -= size
	h.allocated += size
	return mem, nil
}

// Strdup copies s into the heap and returns a string backed by that copy.
// A terminator byte is reserved after the text.
func (h *SimpleHeap) Strdup(s string) (string, error) {
	if s == "" {
		return emptyString, nil
	}
	mem, err := h.Alloc(len(s) + 1)
	if err != nil {
		return "", err
	}
	copy(mem, s)
	mem[len(s)] = 0
	return unsafe.String(&mem[0], len(s)), nil
}

// Blocks reports how many blocks are in the chain.
func (h *SimpleHeap) Blocks() int {
	return h.blocks
}

// Allocated reports the total bytes handed out.
func (h *SimpleHeap) Allocated() int {
	return h.allocated
}

// Teardown drops the whole chain. Only used at exit and between tests.
func (h *SimpleHeap) Teardown() {
	h.first = nil
	h.last = nil
	h.blocks = 0
	h.allocated = 0
}
