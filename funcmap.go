package main

import (
	"sort"

	. "github.com/puzpuzpuz/xsync/v3"
)

// Fmap is the built-in function table. It is filled once and read by
// every interpreter, so reads take the reader-biased lock.
type Fmap struct {
	mu   *RBMutex
	fmap map[string]*Func
}

func fmcreate(sz int) *Fmap {
	return &Fmap{mu: NewRBMutex(), fmap: make(map[string]*Func, sz)}
}

func (u *Fmap) fmexists(k string) bool {
	tk := u.mu.RLock()
	_, ok := u.fmap[k]
	u.mu.RUnlock(tk)
	return ok
}

func (u *Fmap) fmset(k string, f *Func) {
	u.mu.Lock()
	u.fmap[k] = f
	u.mu.Unlock()
}

func (u *Fmap) fmget(k string) (f *Func, ok bool) {
	tk := u.mu.RLock()
	f, ok = u.fmap[k]
	u.mu.RUnlock(tk)
	return f, ok
}

// fmnames lists the display names in order.
func (u *Fmap) fmnames() []string {
	tk := u.mu.RLock()
	names := make([]string, 0, len(u.fmap))
	for _, f := range u.fmap {
		names = append(names, f.name)
	}
	u.mu.RUnlock(tk)
	sort.Strings(names)
	return names
}
