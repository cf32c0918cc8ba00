package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/parser"
	oolong "github.com/funvibe/oolong/pkg/embed"
)

const (
	promptMain = ">>> "
	promptCont = "... "
)

const banner = "oolong interactive shell\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."

var stderrTTY = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func red(s string) string {
	if !stderrTTY {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func reportError(err error) {
	fmt.Fprintln(os.Stderr, red(err.Error()))
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: oolong [flags] [script [args...]]

Runs a script file, evaluates an expression, or starts the interactive
shell when stdin is a terminal. Script arguments are visible to scripts
as the argv vector.

Flags:
  -e code       evaluate code and print its value
  -config file  read settings from file (default %s when present)
  -ast          print the parsed form of the input instead of running it
`, config.ConfigFileName)
}

func main() {
	exprFlag := flag.String("e", "", "evaluate `code` and print its value")
	configFlag := flag.String("config", "", "settings `file`")
	astFlag := flag.Bool("ast", false, "print the parsed form of the input")
	flag.Usage = usage
	flag.Parse()

	os.Exit(run(*exprFlag, *configFlag, *astFlag, flag.Args()))
}

func run(expr, cfgPath string, dumpAST bool, args []string) int {
	if dumpAST {
		return printAST(expr, args)
	}

	opts, err := settingsOptions(cfgPath)
	if err != nil {
		reportError(err)
		return 1
	}

	eng, err := oolong.New(opts...)
	if err != nil {
		reportError(err)
		return 1
	}

	switch {
	case expr != "":
		if err := eng.RegisterSharedObject("argv", argvValue(args)); err != nil {
			reportError(err)
			return 1
		}
		v, err := eng.Eval(expr)
		if err != nil {
			reportError(err)
			return 1
		}
		echo(eng, v)
		return 0

	case len(args) > 0:
		if err := eng.RegisterSharedObject("argv", argvValue(args)); err != nil {
			reportError(err)
			return 1
		}
		if _, err := eng.EvalFile(args[0]); err != nil {
			reportError(err)
			return 1
		}
		return 0

	case !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()):
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			reportError(err)
			return 1
		}
		if err := eng.RegisterSharedObject("argv", argvValue(nil)); err != nil {
			reportError(err)
			return 1
		}
		if _, err := eng.Eval(string(src)); err != nil {
			reportError(err)
			return 1
		}
		return 0
	}

	return repl(eng)
}

// settingsOptions loads an explicit settings file, or the default one when
// it exists in the working directory.
func settingsOptions(cfgPath string) ([]oolong.Option, error) {
	if cfgPath != "" {
		return oolong.LoadSettings(cfgPath)
	}
	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return oolong.LoadSettings(config.ConfigFileName)
	}
	return nil, nil
}

func argvValue(args []string) oolong.Value {
	elems := make([]oolong.Value, len(args))
	for i, a := range args {
		elems[i] = oolong.Box(a)
	}
	return oolong.Box(elems)
}

// echo prints a result value unless it is void, the way the shell reports
// each entered expression.
func echo(eng *oolong.Engine, v oolong.Value) {
	if v.IsVoid() {
		return
	}
	toString, err := oolong.Functor[func(oolong.Value) string](eng, "to_string")
	if err != nil {
		reportError(err)
		return
	}
	fmt.Println(toString(v))
}

func printAST(expr string, args []string) int {
	src := expr
	unit := config.EvalUnitName
	switch {
	case src != "":
	case len(args) > 0:
		buf, err := os.ReadFile(args[0])
		if err != nil {
			reportError(err)
			return 1
		}
		src, unit = string(buf), args[0]
	default:
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			reportError(err)
			return 1
		}
		src = string(buf)
	}

	prog, err := parser.Parse(src, unit)
	if err != nil {
		reportError(err)
		return 1
	}
	fmt.Println(prog.String())
	return 0
}

func repl(eng *oolong.Engine) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, config.HistoryFileName)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	session := eng.NewSession()
	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return 0
			case ":dump":
				eng.DumpSystem(os.Stdout)
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			ln.AppendHistory(trimmed)
			continue
		}

		v, err := session.Eval(code)
		if err != nil {
			reportError(err)
		} else {
			echo(eng, v)
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readStatement collects lines until they parse as a complete program, so
// an open brace or bracket continues onto the next prompt.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") {
			return src, true
		}
		if _, err := parser.Parse(src, config.EvalUnitName); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
