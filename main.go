/*
 * acme65 - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/acme65/internal/assembler"
	"github.com/rcornwell/acme65/internal/encoder"
	"github.com/rcornwell/acme65/internal/output"
	logger "github.com/rcornwell/acme65/util/logger"
)

var Logger *slog.Logger

func main() {
	optOut := getopt.StringLong("output", 'o', "a.out", "Output file")
	optFormat := getopt.StringLong("format", 'f', "plain", "Output format: plain, cbm, apple, hex")
	optLabels := getopt.StringLong("labels", 0, "", "VICE-format label file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optInclude := getopt.StringLong("include", 'I', "", "Source search path, colon-separated")
	optVerbose := getopt.StringLong("verbose", 'v', "0", "Verbosity level (0-3)")
	optCPU := getopt.StringLong("cpu", 0, "6502", "CPU variant: 6502, nmos6502, 65c02, w65c02")
	optSetPC := getopt.StringLong("setpc", 0, "", "Initial program counter (e.g. $0800)")
	optMaxIter := getopt.StringLong("max-iterations", 0, "", "Loop iteration safety limit")
	optMaxMacro := getopt.StringLong("max-macro-depth", 0, "", "Macro recursion safety limit")
	optMaxInclude := getopt.StringLong("max-include-depth", 0, "", "Include-stack safety limit")
	optSymbols := getopt.BoolLong("symbols", 's', "Print the symbol table after assembly")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "acme65: exactly one source file is required")
		getopt.Usage()
		os.Exit(2)
	}
	srcPath := args[0]

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	verbosity, err := strconv.Atoi(*optVerbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "acme65: -v: %v\n", err)
		os.Exit(2)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, verbosity))
	slog.SetDefault(Logger)

	variant, err := encoder.ParseVariant(*optCPU)
	if err != nil {
		fmt.Fprintf(os.Stderr, "acme65: %v\n", err)
		os.Exit(2)
	}
	format, err := output.ParseFormat(*optFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "acme65: %v\n", err)
		os.Exit(2)
	}

	opts := assembler.Options{
		SearchPath: splitSearchPath(*optInclude),
		Variant:    variant,
		OutFormat:  format,
		OutPath:    *optOut,
		Limits: assembler.Limits{
			MaxIterations: parseInt64Default(*optMaxIter, 0),
			MaxMacroDepth: parseIntDefault(*optMaxMacro, 0),
			MaxIncludes:   parseIntDefault(*optMaxInclude, 0),
		},
	}
	if *optSetPC != "" {
		pc, err := parseAddr(*optSetPC)
		if err != nil {
			fmt.Fprintf(os.Stderr, "acme65: --setpc: %v\n", err)
			os.Exit(2)
		}
		opts.InitialPC = pc
		opts.HavePC = true
	}

	asm := assembler.New(opts)
	Logger.Info("assembling", "file", srcPath, "cpu", *optCPU)

	runErr := asm.Run(srcPath)
	renderDiagnostics(asm)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "acme65: %v\n", runErr)
		os.Exit(3)
	}
	if asm.Sink().Fatal() {
		os.Exit(3)
	}

	if err := writeOutput(asm, *optLabels); err != nil {
		fmt.Fprintf(os.Stderr, "acme65: %v\n", err)
		os.Exit(3)
	}

	if *optSymbols {
		printSymbols(asm)
	}

	os.Exit(asm.Sink().ExitCode())
}

func renderDiagnostics(asm *assembler.Assembler) {
	for _, d := range asm.Sink().All() {
		fmt.Fprintln(os.Stderr, d.Format())
	}
}

func writeOutput(asm *assembler.Assembler, labelsPath string) error {
	lo, _, ok := asm.Image().Bounds()
	if !ok {
		return nil
	}
	data, err := output.Encode(asm.OutFormat(), uint16(lo), asm.Image().Bytes())
	if err != nil {
		return err
	}
	if err := os.WriteFile(asm.OutPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", asm.OutPath(), err)
	}
	if labelsPath != "" {
		if err := writeLabels(asm, labelsPath); err != nil {
			return err
		}
	}
	return nil
}

func writeLabels(asm *assembler.Assembler, path string) error {
	var labels []output.Label
	for _, s := range asm.Symtab().AllSymbols() {
		labels = append(labels, output.Label{Name: s.Name, Addr: uint16(s.Value.AsInt())})
	}
	return os.WriteFile(path, []byte(output.VICELabels(labels)), 0o644)
}

func printSymbols(asm *assembler.Assembler) {
	for _, s := range asm.Symtab().AllSymbols() {
		fmt.Printf("%-24s = $%04X\n", s.Name, s.Value.AsInt())
	}
}

// splitSearchPath accepts "-I" as a colon-separated list of
// directories, which the source stack consults in order when resolving
// "!source"/"!src" paths.
func splitSearchPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseInt64Default(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// parseAddr accepts a decimal or "$hex" program-counter argument.
func parseAddr(s string) (int64, error) {
	if len(s) > 0 && s[0] == '$' {
		return strconv.ParseInt(s[1:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
