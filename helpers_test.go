package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureSink records reports instead of printing them.
type captureSink struct {
	msgs []string
}

func (s *captureSink) ReportError(msg, extra string, line *Line) ResultType {
	if extra != "" {
		msg += ": " + extra
	}
	s.msgs = append(s.msgs, msg)
	return FAIL
}

type testInterp struct {
	*Interp
	sink *captureSink
	out  *bytes.Buffer
}

func newTestInterp(t *testing.T) *testInterp {
	t.Helper()
	cfg := defaultConfig()
	cfg.NoEnv = true
	return newTestInterpWith(t, cfg)
}

func newTestInterpWith(t *testing.T, cfg *Config) *testInterp {
	t.Helper()
	out := &bytes.Buffer{}
	sink := &captureSink{}
	in := NewInterp(cfg, out)
	in.SetErrorSink(sink)
	return &testInterp{Interp: in, sink: sink, out: out}
}

// exec loads and runs src, failing the test on any load error.
func (ti *testInterp) exec(t *testing.T, src string) ResultType {
	t.Helper()
	r, err := ti.Exec(src)
	require.NoError(t, err)
	return r
}

func (ti *testInterp) value(t *testing.T, name string) string {
	t.Helper()
	v, ok := ti.Var(name)
	require.True(t, ok, "variable %s does not exist", name)
	return v
}
