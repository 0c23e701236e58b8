//go:build windows

package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w == 0 {
		return 80, 24
	}
	return w, h
}

var stdinReader *bufio.Reader

func openConsole() error {
	stdinReader = bufio.NewReader(os.Stdin)
	return nil
}

func closeConsole() {}

// lineEditor falls back to cooked console input here; history and the
// idle callback are not available.
type lineEditor struct {
	out  io.Writer
	hist []string
	idle func()
}

func (e *lineEditor) readLine(prompt string) (s string, eof bool, broken bool) {
	io.WriteString(e.out, prompt)
	s, err := stdinReader.ReadString('\n')
	if err != nil && s == "" {
		return "", true, false
	}
	s = strings.TrimRight(s, "\r\n")
	if s != "" {
		e.hist = append(e.hist, s)
	}
	return s, false, false
}
