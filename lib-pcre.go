//go:build pcre

package main

import (
	"fmt"

	"github.com/GRbit/go-pcre"
)

type pcreEngine struct {
	re pcre.Regexp
}

// compileRegex builds a JIT compiled PCRE pattern. The library panics on
// a bad pattern, which is turned back into an error here.
func compileRegex(pattern string) (e regexEngine, err error) {
	defer func() {
		if r := recover(); r != nil {
			e = nil
			err = fmt.Errorf("%w: %v", errBadRegex, r)
		}
	}()
	return &pcreEngine{re: pcre.MustCompileParseJIT(pattern, pcre.STUDY_JIT_COMPILE)}, nil
}

func (p *pcreEngine) find(s string) []int {
	m := p.re.NewMatcherString(s, 0)
	if !m.Matches {
		return nil
	}
	return m.Index()
}

func (p *pcreEngine) replaceAll(s, repl string) string {
	return p.re.ReplaceAllString(s, repl, 0)
}
