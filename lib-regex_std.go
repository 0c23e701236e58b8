//go:build !pcre

package main

import (
	"fmt"
	"regexp"
)

type stdEngine struct {
	re *regexp.Regexp
}

func compileRegex(pattern string) (regexEngine, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRegex, err)
	}
	return &stdEngine{re: re}, nil
}

func (p *stdEngine) find(s string) []int {
	return p.re.FindStringIndex(s)
}

func (p *stdEngine) replaceAll(s, repl string) string {
	return p.re.ReplaceAllLiteralString(s, repl)
}
