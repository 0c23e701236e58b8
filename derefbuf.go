package main

import "time"

// DerefBuffer holds the expanded arguments of the statement being executed.
// A user function call detaches the caller's buffer so the callee starts
// with its own, and hands it back when the call returns.
type DerefBuffer struct {
	data []byte
}

type derefState struct {
	current      *DerefBuffer
	largeBufs    int
	lastLargeUse time.Time
}

func roundDerefSize(n int) int {
	if n <= 0 {
		return derefBufExpandIncrement
	}
	return (n + derefBufExpandIncrement - 1) / derefBufExpandIncrement * derefBufExpandIncrement
}

func isLargeDerefBuf(n int) bool {
	return n > largeDerefBufSize
}

// acquireDerefBuf returns the current buffer, replaced by a larger one when
// it cannot hold space bytes. Old contents are not kept.
func (in *Interp) acquireDerefBuf(space int) (*DerefBuffer, ResultType) {
	if space > in.cfg.MaxDerefBuffer {
		return nil, in.reportError(errDerefLimit.Error(), sf("%d bytes needed", space))
	}
	cur := in.deref.current
	if cur == nil || len(cur.data) < space {
		size := roundDerefSize(space)
		if size > in.cfg.MaxDerefBuffer {
			size = in.cfg.MaxDerefBuffer
		}
		if cur != nil {
			in.dropDerefBuf(cur)
		}
		cur = &DerefBuffer{data: make([]byte, size)}
		if isLargeDerefBuf(size) {
			in.deref.largeBufs++
		}
		in.deref.current = cur
	}
	if isLargeDerefBuf(len(cur.data)) {
		in.deref.lastLargeUse = time.Now()
	}
	return cur, OK
}

// growDerefBuf enlarges b to at least need bytes, keeping its contents.
func (in *Interp) growDerefBuf(b *DerefBuffer, need int) ResultType {
	if need <= len(b.data) {
		return OK
	}
	if need > in.cfg.MaxDerefBuffer {
		return in.reportError(errDerefLimit.Error(), sf("%d bytes needed", need))
	}
	size := roundDerefSize(need)
	if size > in.cfg.MaxDerefBuffer {
		size = in.cfg.MaxDerefBuffer
	}
	wasLarge := isLargeDerefBuf(len(b.data))
	data := make([]byte, size)
	copy(data, b.data)
	b.data = data
	if isLargeDerefBuf(size) {
		if !wasLarge {
			in.deref.largeBufs++
		}
		in.deref.lastLargeUse = time.Now()
	}
	return OK
}

func (in *Interp) dropDerefBuf(b *DerefBuffer) {
	if b == nil || b.data == nil {
		return
	}
	if isLargeDerefBuf(len(b.data)) {
		in.deref.largeBufs--
	}
	b.data = nil
}

// detachDerefBuf hands the caller's buffer back to it; the callee gets a
// fresh one on its first statement.
func (in *Interp) detachDerefBuf() *DerefBuffer {
	saved := in.deref.current
	in.deref.current = nil
	return saved
}

// restoreDerefBuf discards the callee's buffer and reinstates the caller's.
func (in *Interp) restoreDerefBuf(saved *DerefBuffer) {
	if callee := in.deref.current; callee != nil && callee != saved {
		in.dropDerefBuf(callee)
	}
	in.deref.current = saved
}

// ReclaimIdleDerefBuf frees the deref buffer when it is large and has not
// been used for the configured idle period. It must only be called between
// statements.
func (in *Interp) ReclaimIdleDerefBuf(now time.Time) bool {
	cur := in.deref.current
	if in.running || cur == nil || !isLargeDerefBuf(len(cur.data)) {
		return false
	}
	if in.cfg.IdleReclaim <= 0 || now.Sub(in.deref.lastLargeUse) < in.cfg.IdleReclaim {
		return false
	}
	in.dropDerefBuf(cur)
	in.deref.current = nil
	plog(LOG_DEBUG, "reclaimed idle deref buffer", nil)
	return true
}

// DerefBufSize reports the current buffer's capacity, zero when none.
func (in *Interp) DerefBufSize() int {
	if in.deref.current == nil {
		return 0
	}
	return len(in.deref.current.data)
}
