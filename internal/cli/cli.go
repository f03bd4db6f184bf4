// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the jsonfmt command line tool: a formatter for JSON
// documents, plus commands for looking at each stage of the pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/layoutkit/json"
	"github.com/bufbuild/layoutkit/report"
	"github.com/bufbuild/layoutkit/source"
	"github.com/bufbuild/layoutkit/trace"
)

// ErrFailed is returned by a command that rendered at least one error
// diagnostic. The diagnostics themselves have already been written.
var ErrFailed = errors.New("jsonfmt: errors were reported")

// stdinPath is the path argument that names standard input.
const stdinPath = "-"

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	logger         *zap.Logger

	configPath string
	verbose    bool
	color      bool
	compact    bool
	indent     int
	lineGap    int

	config Config
}

// NewRootCommand returns the jsonfmt command, reading and writing the given
// streams.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:               "jsonfmt",
		Short:             "Format JSON documents, keeping the line structure their authors chose",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (default "+DefaultConfigFile+" if present)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")
	flags.BoolVar(&a.color, "color", false, "colorize diagnostics")
	flags.BoolVar(&a.compact, "compact", false, "print one line per diagnostic")
	flags.IntVar(&a.indent, "indent", 0, "spaces per indentation level (default 2)")
	flags.IntVar(&a.lineGap, "line-gap", 0, "largest allowed distance between consecutive lines (default 2)")

	root.AddCommand(
		a.fmtCommand(),
		a.tokensCommand(),
		a.treeCommand(),
		a.traceCommand(),
		a.inspectCommand(),
		a.collapseCommand(),
	)
	return root
}

// Main runs the jsonfmt command with the process's arguments and streams,
// and returns the exit code.
func Main(ctx context.Context) int {
	cmd := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrFailed) {
			fmt.Fprintln(os.Stderr, "jsonfmt:", err)
		}
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose {
		a.logger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(a.stderr),
			zap.DebugLevel,
		))
	}

	config, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("indent") {
		config.Layout.Indent = a.indent
	}
	if flags.Changed("line-gap") {
		config.Layout.LineGap = a.lineGap
	}
	if flags.Changed("color") {
		config.Color = a.color
	}
	if flags.Changed("compact") {
		config.Compact = a.compact
	}
	if config.Layout.Indent < 0 || config.Layout.LineGap < 0 {
		return errors.New("indent and line gap must not be negative")
	}

	a.config = config
	a.logger.Debug("loaded configuration",
		zap.String("path", a.configPath),
		zap.Int("indent", config.Layout.Indent),
		zap.Int("line_gap", config.Layout.LineGap),
	)
	return nil
}

// open reads the file at path, or standard input if path is "-".
func (a *app) open(path string) (*source.File, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		data, err = io.ReadAll(a.stdin)
		path = "<stdin>"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return source.NewFile(path, string(data)), nil
}

// finish renders r, and returns [ErrFailed] if it contains errors.
func (a *app) finish(r *report.Report) error {
	r.Sort()
	renderer := report.Renderer{
		Compact:  a.config.Compact,
		Colorize: a.config.Color,
	}
	errs, _, err := renderer.Render(r, a.stderr)
	if err != nil {
		return err
	}
	if errs > 0 {
		return ErrFailed
	}
	return nil
}

// result is the outcome of formatting a single file.
type result struct {
	path     string
	file     *source.File
	text     string
	readErr  error
	parseErr error
}

func (a *app) fmtCommand() *cobra.Command {
	var write, check bool
	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Format files, printing the result to stdout",
		Long: `Format files, printing the result to stdout.

With no files, or with "-", reads standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{stdinPath}
			}
			return a.format(cmd.Context(), args, write, check)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to each file")
	cmd.Flags().BoolVar(&check, "check", false, "report files that are not formatted, and change nothing")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	return cmd
}

func (a *app) format(ctx context.Context, paths []string, write, check bool) error {
	results := make([]result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res := &results[i]
			res.path = path
			res.file, res.readErr = a.open(path)
			if res.readErr != nil {
				return nil
			}

			res.text, res.parseErr = json.Format(res.file, a.config.Layout)
			if res.text != "" {
				res.text += "\n"
			}
			a.logger.Debug("formatted file",
				zap.String("path", res.file.Path()),
				zap.Bool("changed", res.text != res.file.Text()),
				zap.Error(res.parseErr),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r := new(report.Report)
	for _, res := range results {
		switch {
		case res.readErr != nil:
			r.Errorf("%v", res.readErr).With(report.InFile(res.path))
		case res.parseErr != nil:
			r.Append(res.parseErr)
		case check:
			if res.text != res.file.Text() {
				r.Errorf("file is not formatted").With(report.InFile(res.file.Path()))
			}
		case write && res.path != stdinPath:
			if res.text == res.file.Text() {
				continue
			}
			if err := writeFile(res.path, res.text); err != nil {
				r.Errorf("%v", err).With(report.InFile(res.path))
				continue
			}
			a.logger.Info("rewrote file", zap.String("path", res.path))
		default:
			if _, err := io.WriteString(a.stdout, res.text); err != nil {
				return err
			}
		}
	}
	return a.finish(r)
}

// writeFile replaces the contents of an existing file, keeping its mode.
func writeFile(path, text string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), info.Mode().Perm())
}

// single is a helper for commands that take a single file argument.
func (a *app) single(use, short string, run func(file *source.File, r *report.Report) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			file, err := a.open(args[0])
			if err != nil {
				return err
			}
			r := new(report.Report)
			if err := run(file, r); err != nil {
				return err
			}
			return a.finish(r)
		},
	}
}

func (a *app) tokensCommand() *cobra.Command {
	return a.single("tokens", "Print the tokens of a file, one per line", func(file *source.File, r *report.Report) error {
		tokens, err := json.Tokenize(file)
		if err != nil {
			r.Append(err)
			return nil
		}
		for _, tok := range tokens {
			if _, err := fmt.Fprintln(a.stdout, tok); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *app) treeCommand() *cobra.Command {
	return a.single("tree", "Print the syntax tree of a file", func(file *source.File, r *report.Report) error {
		t, err := json.Parse(file, nil)
		if err != nil {
			r.Append(err)
			return nil
		}
		_, err = io.WriteString(a.stdout, t.String())
		return err
	})
}

func (a *app) traceCommand() *cobra.Command {
	var withTree bool
	cmd := a.single("trace", "Print every step the parser takes on a file", func(file *source.File, r *report.Report) error {
		tr := new(trace.Trace)
		t, err := json.Parse(file, tr)
		if err != nil {
			r.Append(err)
		} else if withTree {
			tr.Reset()
			t.Report(tr)
		}
		a.logger.Debug("traced parse", zap.Int("events", tr.Len()))
		_, err = io.WriteString(a.stdout, tr.String())
		return err
	})
	cmd.Flags().BoolVar(&withTree, "tree", false, "print the resulting tree instead, if parsing succeeds")
	return cmd
}

func (a *app) inspectCommand() *cobra.Command {
	return a.single("inspect", "Print the layout decisions made for each token of a file", func(file *source.File, r *report.Report) error {
		t, err := json.Parse(file, nil)
		if err != nil {
			r.Append(err)
			return nil
		}
		_, err = io.WriteString(a.stdout, json.Policy(a.config.Layout).Debug(t))
		return err
	})
}

func (a *app) collapseCommand() *cobra.Command {
	var line, column int
	cmd := a.single("collapse", "Print a file with the value at a position collapsed onto one line", func(file *source.File, r *report.Report) error {
		if line < 1 || column < 1 {
			return errors.New("--line and --column are required, and count from 1")
		}

		text, ok, err := json.CollapseAt(file, line-1, column-1, a.config.Layout)
		switch {
		case err != nil:
			r.Append(err)
			return nil
		case !ok:
			r.Errorf("no value starts at %d:%d", line, column).With(report.InFile(file.Path()))
			return nil
		}
		_, err = io.WriteString(a.stdout, text+"\n")
		return err
	})
	cmd.Flags().IntVar(&line, "line", 0, "line of the value, counting from 1")
	cmd.Flags().IntVar(&column, "column", 0, "column of the value, counting from 1")
	return cmd
}
