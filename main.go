package main

//
// IMPORTS
//

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
)

//
// ALIASES
//

var sf = fmt.Sprintf
var appendf = fmt.Appendf
var fpf = fmt.Fprintln

//
// CONSTS AND GLOBALS
//

// build-time

var BuildComment string
var BuildVersion string = "dev"
var BuildDate string

const promptString = "dexpr> "

//
// MAIN
//

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {

	fs := flag.NewFlagSet("dexpr", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var a_help = fs.Bool("h", false, "help page")
	var a_version = fs.Bool("v", false, "display the version")
	var a_filename = fs.String("f", "", "script filename")
	var a_expr = fs.String("e", "", "evaluate a single expression and print the result")
	var a_config = fs.String("c", "", "YAML configuration file")
	var a_watch = fs.Bool("w", false, "re-run the script when it or the configuration changes")
	var a_interactive = fs.Bool("i", false, "run interactively")
	var a_functions = fs.Bool("l", false, "list the built-in functions")

	if err := fs.Parse(args); err != nil {
		return ERR_FATAL
	}

	if *a_help {
		fs.Usage()
		return 0
	}
	if *a_version {
		fpf(stdout, sf("dexpr %s %s %s", BuildVersion, BuildDate, BuildComment))
		return 0
	}

	cfg, err := loadConfig(*a_config)
	if err != nil {
		fpf(stderr, err)
		return ERR_CONFIG
	}
	if err := configureLogging(cfg); err != nil {
		fpf(stderr, err)
	}
	startLogWorker()
	defer stopLogWorker()

	in := NewInterp(cfg, stdout)
	in.SetErrorSink(&reportSink{out: stderr})

	if *a_functions {
		for _, name := range stdlib.fmnames() {
			fpf(stdout, funcHelp(name))
		}
		return 0
	}

	if *a_expr != "" {
		s, err := in.EvalString(*a_expr)
		if err != nil {
			fpf(stderr, err)
			return ERR_EVAL
		}
		fpf(stdout, s)
		return 0
	}

	if *a_filename != "" {
		code := runFile(in, *a_filename, stderr)
		if !*a_watch {
			if *a_interactive {
				return repl(in, stdout)
			}
			return code
		}
		return watchFile(cfg, *a_config, *a_filename, stdout, stderr)
	}

	if *a_watch {
		fpf(stderr, "-w needs a script given with -f")
		return ERR_FATAL
	}

	if *a_interactive || isTerminal(stdin) {
		return repl(in, stdout)
	}

	// script on standard input
	src, err := io.ReadAll(stdin)
	if err != nil {
		fpf(stderr, err)
		return ERR_FATAL
	}
	return runSource(in, "<stdin>", string(src), stderr)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runFile(in *Interp, name string, stderr io.Writer) int {
	src, err := os.ReadFile(name)
	if err != nil {
		plog(LOG_ERR, "cannot read script", map[string]any{"file": name, "error": err.Error()})
		fpf(stderr, err)
		return ERR_FILE
	}
	return runSource(in, name, string(src), stderr)
}

func runSource(in *Interp, name, src string, stderr io.Writer) int {
	if _, err := in.Load(name, src); err != nil {
		fpf(stderr, err)
		return ERR_SYNTAX
	}
	switch in.Run() {
	case OK:
		if in.errorCount > 0 {
			return ERR_EVAL
		}
		return 0
	}
	return ERR_EVAL
}

// watchFile runs the script in a fresh interpreter whenever the script or
// the configuration file changes. Between runs the idle deref buffer of
// the last interpreter is reclaimed on the same goroutine.
func watchFile(cfg *Config, cfgPath, name string, stdout, stderr io.Writer) int {
	wt, err := newWatcher(name, cfgPath)
	if err != nil {
		fpf(stderr, err)
		return ERR_FATAL
	}
	defer wt.Close()

	start := func(cfg *Config) *Interp {
		in := NewInterp(cfg, stdout)
		in.SetErrorSink(&reportSink{out: stderr})
		runFile(in, name, stderr)
		return in
	}
	in := start(cfg)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		wt.Close()
	}()

	err = wt.loop(cfg.IdleReclaim/2,
		func(changed string) {
			plog(LOG_INFO, "change detected, re-running", map[string]any{"file": changed})
			if cfgPath != "" {
				c, err := loadConfig(cfgPath)
				if err != nil {
					fpf(stderr, err)
					return
				}
				if err := configureLogging(c); err != nil {
					fpf(stderr, err)
				}
				cfg = c
			}
			in = start(cfg)
		},
		func(now time.Time) {
			in.ReclaimIdleDerefBuf(now)
		})
	if err != errWatchClosed {
		fpf(stderr, err)
		return ERR_EVAL
	}
	return 0
}

// repl reads statements from the terminal. A line starting with ? is
// evaluated as an expression and its result printed.
func repl(in *Interp, out io.Writer) int {
	if err := openConsole(); err != nil {
		fpf(os.Stderr, err)
		return ERR_FATAL
	}
	defer closeConsole()

	ed := &lineEditor{out: out, idle: func() { in.ReclaimIdleDerefBuf(time.Now()) }}
	for {
		s, eof, broken := ed.readLine(promptString)
		if eof {
			return 0
		}
		if broken {
			continue
		}
		s = strings.TrimSpace(s)
		switch {
		case s == "":
		case strings.EqualFold(s, "quit"), strings.EqualFold(s, "exit"):
			return 0
		case s[0] == '?':
			r, err := in.EvalString(s[1:])
			if err != nil {
				fpf(out, err)
				continue
			}
			fpf(out, r)
		case strings.HasPrefix(strings.ToLower(s), "help "):
			if h := funcHelp(strings.TrimSpace(s[5:])); h != "" {
				fpf(out, h)
			}
		default:
			if _, err := in.Exec(s); err != nil {
				fpf(out, err)
			}
		}
	}
}
