package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	dali "github.com/chris-al-brown/dali-sub000"
	"github.com/chris-al-brown/dali-sub000/internal/config"
)

const appName = "dali"

var usage = `dali

Usage:
  dali run <script>
  dali fmt [--check] <script>
  dali repl
  dali -h | --help
  dali -v | --version

Arguments:
  <script>  Path to a dali source file.

Options:
  --check        Report whether the file is canonically formatted; change nothing.
  -h, --help     Display this help.
  -v, --version  Print the dali version.

With no command, dali starts the REPL when stdin is a TTY and otherwise
evaluates a program read from stdin.
`

// colors holds the ANSI wrappers, which collapse to the identity when the
// stream is not a terminal or color is disabled in dali.toml.
type colors struct {
	err func(string) string
	val func(string) string
}

func plainColors() colors {
	id := func(s string) string { return s }
	return colors{err: id, val: id}
}

func newColors(enabled bool) colors {
	if !enabled || !isatty.IsTerminal(os.Stdout.Fd()) {
		return plainColors()
	}
	return colors{
		err: func(s string) string { return "\x1b[31m" + s + "\x1b[0m" },
		val: func(s string) string { return "\x1b[94m" + s + "\x1b[0m" },
	}
}

func main() {
	if len(os.Args) < 2 {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			os.Exit(cmdRepl())
		}
		os.Exit(cmdRunStdin())
	}

	opts, err := docopt.ParseArgs(usage, os.Args[1:], dali.Version)
	if err != nil {
		os.Exit(2)
	}

	script, _ := opts.String("<script>")

	switch {
	case mustBool(opts, "run"):
		os.Exit(cmdRun(script))
	case mustBool(opts, "fmt"):
		os.Exit(cmdFmt(script, mustBool(opts, "--check")))
	case mustBool(opts, "repl"):
		os.Exit(cmdRepl())
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func mustBool(opts docopt.Opts, key string) bool {
	b, _ := opts.Bool(key)
	return b
}

func loadConfig() *config.Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg, path, err := config.FindAndLoad(wd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: bad settings file %s: %v\n", appName, path, err)
		return config.DefaultConfig()
	}
	return cfg
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(file string) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}
	return runSource(string(src), filepath.Base(file))
}

func cmdRunStdin() int {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read stdin: %v\n", appName, err)
		return 1
	}
	return runSource(string(src), "<stdin>")
}

func runSource(src, name string) int {
	col := newColors(loadConfig().REPL.Color)

	ip := dali.NewInterp()
	if _, err := ip.EvalPersistentSource(src); err != nil {
		fmt.Fprintln(os.Stderr, col.err(dali.WrapErrorWithName(err, name, src).Error()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// fmt
// -----------------------------------------------------------------------------

func cmdFmt(file string, check bool) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	stmts, perr := dali.Parse(string(src))
	if perr != nil {
		fmt.Fprintln(os.Stderr, dali.WrapErrorWithName(perr, filepath.Base(file), string(src)).Error())
		return 1
	}

	out := dali.FormatProgram(stmts)
	if check {
		if out != string(src) {
			fmt.Println(file)
			return 1
		}
		return 0
	}

	if out == string(src) {
		return 0
	}
	if err := os.WriteFile(file, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot write %s: %v\n", appName, file, err)
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	cfg := loadConfig()
	col := newColors(cfg.REPL.Color)

	fmt.Printf("dali %s\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", dali.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, cfg.REPL.HistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := dali.NewInterp()

	for {
		code, ok := readByParseProbe(ln, cfg.REPL.Prompt, cfg.REPL.ContPrompt)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		vals, err := ip.EvalPersistentSource(code)
		for _, v := range vals {
			fmt.Println(col.val(dali.FormatValue(v)))
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, col.err(dali.WrapErrorWithSource(err, code).Error()))
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe accumulates lines until the buffer parses, or fails with
// an error other than "ran out of input". Either way the buffer is handed to
// the evaluator, which reports the real diagnostic.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := dali.Parse(src)
		if perr == nil || !dali.IsIncomplete(perr) {
			return src, true
		}
	}
}
