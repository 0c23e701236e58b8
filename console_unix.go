//go:build !windows

package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	term "github.com/pkg/term"
	"golang.org/x/sys/unix"
)

// the controlling terminal while the line editor is active
var tt *term.Term

// terminalSize reports the columns and rows of the terminal on stdout,
// 80x24 when stdout is not a terminal.
func terminalSize() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

func openConsole() error {
	t, err := term.Open("/dev/tty")
	if err != nil {
		return err
	}
	tt = t
	return nil
}

func closeConsole() {
	if tt != nil {
		tt.Restore()
		tt.Close()
		tt = nil
	}
}

var keybuf = make([]byte, 4096)

// getch waits up to timeo for a key press. A read of more than one
// escape sequence worth of bytes is treated as pasted text.
func getch(timeo time.Duration) (c []byte, timeout bool, pasted bool) {
	term.RawMode(tt)
	tt.SetOption(term.ReadTimeout(timeo))
	n, err := tt.Read(keybuf)
	tt.Restore()

	if n == 0 || (err != nil && err != io.EOF) {
		return nil, true, false
	}
	if n > 6 {
		return keybuf[:n], false, true
	}
	return keybuf[:n], false, false
}

// lineEditor reads single lines with history from the terminal.
type lineEditor struct {
	out  io.Writer
	hist []string
	idle func()
}

func (e *lineEditor) redraw(prompt, s string, cpos int) {
	io.WriteString(e.out, "\r"+prompt+s+"\033[0K")
	if back := len(s) - cpos; back > 0 {
		io.WriteString(e.out, sf("\033[%dD", back))
	}
}

// readLine returns the next input line. eof is set on ctrl-d with an
// empty line, broken on ctrl-c.
func (e *lineEditor) readLine(prompt string) (s string, eof bool, broken bool) {
	cpos := 0
	histPos := len(e.hist)
	e.redraw(prompt, s, cpos)

	for {
		c, timeout, pasted := getch(500 * time.Millisecond)
		if timeout {
			if e.idle != nil {
				e.idle()
			}
			continue
		}

		if pasted {
			p := string(c)
			if i := strings.IndexAny(p, "\r\n"); i >= 0 {
				p = p[:i]
			}
			s = s[:cpos] + p + s[cpos:]
			cpos += len(p)
			e.redraw(prompt, s, cpos)
			continue
		}

		switch {
		case bytes.Equal(c, []byte{3}): // ctrl-c
			io.WriteString(e.out, "\r\n")
			return "", false, true
		case bytes.Equal(c, []byte{4}): // ctrl-d
			if s == "" {
				io.WriteString(e.out, "\r\n")
				return "", true, false
			}
		case bytes.Equal(c, []byte{13}), bytes.Equal(c, []byte{10}): // enter
			io.WriteString(e.out, "\r\n")
			if s != "" && (len(e.hist) == 0 || e.hist[len(e.hist)-1] != s) {
				e.hist = append(e.hist, s)
			}
			return s, false, false
		case bytes.Equal(c, []byte{1}), bytes.Equal(c, []byte{27, 91, 72}), bytes.Equal(c, []byte{27, 91, 49, 126}): // ctrl-a, home
			cpos = 0
		case bytes.Equal(c, []byte{5}), bytes.Equal(c, []byte{27, 91, 70}), bytes.Equal(c, []byte{27, 91, 52, 126}): // ctrl-e, end
			cpos = len(s)
		case bytes.Equal(c, []byte{21}): // ctrl-u
			s = s[cpos:]
			cpos = 0
		case bytes.Equal(c, []byte{127}), bytes.Equal(c, []byte{8}): // backspace
			if cpos > 0 {
				s = s[:cpos-1] + s[cpos:]
				cpos--
			}
		case bytes.Equal(c, []byte{27, 91, 51, 126}): // DEL
			if cpos < len(s) {
				s = s[:cpos] + s[cpos+1:]
			}
		case bytes.Equal(c, []byte{27, 91, 68}): // LEFT
			if cpos > 0 {
				cpos--
			}
		case bytes.Equal(c, []byte{27, 91, 67}): // RIGHT
			if cpos < len(s) {
				cpos++
			}
		case bytes.Equal(c, []byte{27, 91, 65}): // UP
			if histPos > 0 {
				histPos--
				s = e.hist[histPos]
				cpos = len(s)
			}
		case bytes.Equal(c, []byte{27, 91, 66}): // DOWN
			if histPos < len(e.hist)-1 {
				histPos++
				s = e.hist[histPos]
			} else {
				histPos = len(e.hist)
				s = ""
			}
			cpos = len(s)
		default:
			if len(c) == 1 && c[0] > 31 && c[0] < 127 {
				s = s[:cpos] + string(c) + s[cpos:]
				cpos++
			}
		}
		e.redraw(prompt, s, cpos)
	}
}
