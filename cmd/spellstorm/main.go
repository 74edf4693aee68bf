// Package main is the spellstorm command line interface: it checks
// files (or stdin) against a dictionary and prints misspellings with
// ranked corrections, or rewrites a word everywhere with -fix.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/spellstorm/internal/app"
	"github.com/dshills/spellstorm/internal/config"
	"github.com/dshills/spellstorm/internal/document"
	"github.com/dshills/spellstorm/internal/spell"
)

// scanWait bounds how long one file may take to scan, dictionary load
// included.
const scanWait = 2 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath  = flag.String("config", "", "path to configuration file")
		lang     = flag.String("lang", "", "dictionary language override")
		dictDir  = flag.String("dict", "", "dictionary directory override")
		fix      = flag.String("fix", "", "replace word everywhere, as word=correction, and print the result")
		logLevel = flag.String("log-level", "", "log level override (debug, info, warn, error)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spellstorm: %v\n", err)
		return 2
	}
	cfg.Enabled = true
	if *lang != "" {
		cfg.Language = *lang
	}
	if *dictDir != "" {
		cfg.Provider.Dir = *dictDir
		cfg.Provider.BaseURL = ""
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "spellstorm: %v\n", err)
		return 2
	}

	var replaceFrom, replaceTo string
	if *fix != "" {
		from, to, ok := strings.Cut(*fix, "=")
		if !ok || from == "" {
			fmt.Fprintln(os.Stderr, "spellstorm: -fix expects word=correction")
			return 2
		}
		replaceFrom, replaceTo = from, to
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	code := 0
	for _, name := range inputs {
		text, display, err := readInput(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spellstorm: %v\n", err)
			return 2
		}
		found, err := processFile(cfg, display, text, replaceFrom, replaceTo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spellstorm: %s: %v\n", display, err)
			return 2
		}
		if found {
			code = 1
		}
	}
	return code
}

func readInput(name string) (text, display string, err error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", "", err
	}
	return string(data), name, nil
}

// processFile scans one document and either prints its misspellings or
// applies the requested replacement and prints the rewritten text. It
// reports whether any misspelling was found.
func processFile(cfg *config.Config, display, text, replaceFrom, replaceTo string) (bool, error) {
	commits := make(chan *spell.ScanState, 1)
	a, err := app.New(cfg, text, app.WithCommitHook(func(st *spell.ScanState) {
		select {
		case commits <- st:
		default:
		}
	}))
	if err != nil {
		return false, err
	}
	defer a.Stop()

	if replaceFrom != "" {
		n, err := a.ReplaceAll(replaceFrom, replaceTo)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stderr, "%s: replaced %d instance(s)\n", display, n)
		fmt.Print(a.Document().Text())
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanWait)
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return false, err
	}

	var state *spell.ScanState
	select {
	case state = <-commits:
	case <-ctx.Done():
		return false, fmt.Errorf("scan did not complete: %w", ctx.Err())
	}

	for _, d := range state.Decorations {
		line, col := lineCol(text, d.Start)
		fmt.Printf("%s:%d:%d: %s (%s)\n", display, line, col, d.Word, strings.Join(d.Suggestions, ", "))
	}
	return len(state.Decorations) > 0, nil
}

// lineCol converts a byte offset into 1-based line and column numbers.
func lineCol(text string, off document.Offset) (line, col int) {
	line = 1
	lineStart := 0
	for i := 0; i < int(off) && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	end := int(off)
	if end > len(text) {
		end = len(text)
	}
	col = len([]rune(text[lineStart:end])) + 1
	return line, col
}
