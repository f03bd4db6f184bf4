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

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Renderer configures a diagnostic rendering operation.
type Renderer struct {
	// If set, uses a compact one-line format for each diagnostic.
	Compact bool

	// If set, rendering results are enriched with ANSI color escapes.
	Colorize bool

	// Upgrades all warnings to errors.
	WarningsAreErrors bool

	// If set, remark diagnostics will be printed.
	ShowRemarks bool

	// If set, rendering a diagnostic will show the debug footer.
	ShowDebug bool
}

// Render renders a diagnostic report.
//
// In addition to returning the rendering result, returns the number of errors
// and warnings rendered. The error return is an error writing to out.
func (r Renderer) Render(report *Report, out io.Writer) (errorCount, warningCount int, err error) {
	for i := range report.Diagnostics {
		d := &report.Diagnostics[i]
		if !r.ShowRemarks && d.level == Remark {
			continue
		}

		if _, err = fmt.Fprintln(out, r.Diagnostic(d)); err != nil {
			return errorCount, warningCount, err
		}
		if !r.Compact {
			if _, err = fmt.Fprintln(out); err != nil {
				return errorCount, warningCount, err
			}
		}

		switch {
		case d.level == Error, d.level == Warning && r.WarningsAreErrors:
			errorCount++
		case d.level == Warning:
			warningCount++
		}
	}
	if r.Compact {
		return errorCount, warningCount, nil
	}

	c := newPalette(r)
	pluralize := func(count int, what string) string {
		if count == 1 {
			return "1 " + what
		}
		return fmt.Sprint(count, " ", what, "s")
	}

	switch {
	case errorCount > 0 && warningCount > 0:
		_, err = fmt.Fprintln(out, c.bold[Error]+"encountered "+pluralize(errorCount, "error")+" and "+pluralize(warningCount, "warning")+c.reset)
	case errorCount > 0:
		_, err = fmt.Fprintln(out, c.bold[Error]+"encountered "+pluralize(errorCount, "error")+c.reset)
	case warningCount > 0:
		_, err = fmt.Fprintln(out, c.bold[Warning]+"encountered "+pluralize(warningCount, "warning")+c.reset)
	}
	return errorCount, warningCount, err
}

// RenderString is a helper for calling [Renderer.Render] with a [strings.Builder].
func (r Renderer) RenderString(report *Report) (text string, errorCount, warningCount int) {
	var buf strings.Builder
	e, w, _ := r.Render(report, &buf)
	return buf.String(), e, w
}

// Diagnostic renders a single diagnostic to a string.
func (r Renderer) Diagnostic(d *Diagnostic) string {
	c := newPalette(r)
	level := d.level.String()
	if d.level == Warning && r.WarningsAreErrors {
		level = Error.String()
	}

	// For the compact style, we imitate the Go compiler.
	if r.Compact {
		primary := d.Primary()
		switch {
		case !primary.Nil():
			start := primary.StartLoc()
			return fmt.Sprintf("%s%s: %s:%d:%d: %s%s",
				c.normal[d.level], level, primary.File.Path(), start.Line, start.Column, d.message, c.reset)
		case d.inFile != "":
			return fmt.Sprintf("%s%s: %s: %s%s", c.normal[d.level], level, d.inFile, d.message, c.reset)
		default:
			return fmt.Sprintf("%s%s: %s%s", c.normal[d.level], level, d.message, c.reset)
		}
	}

	// Otherwise, we imitate the Rust compiler.
	var out strings.Builder
	fmt.Fprint(&out, c.bold[d.level], level, ": ", d.message, c.reset)

	// The line bar is as wide as the greatest line number shown.
	var greatestLine int
	for _, a := range d.annotations {
		greatestLine = max(greatestLine, a.StartLoc().Line)
	}
	lineBarWidth := max(2, len(strconv.Itoa(greatestLine)))

	for i, a := range d.annotations {
		start := a.StartLoc()
		arrow := "-->"
		if i > 0 {
			arrow = ":::"
		}

		out.WriteByte('\n')
		out.WriteString(c.accent)
		padBy(&out, lineBarWidth)
		fmt.Fprintf(&out, "%s %s:%d:%d\n", arrow, a.File.Path(), start.Line, start.Column)
		padBy(&out, lineBarWidth)
		out.WriteString(" |\n")

		// The source line, with tabs expanded so that the underline lines up.
		lineStart, _ := a.File.LineOffsets(start.Line)
		text := strings.TrimRight(a.File.Line(start.Line), "\r\n")
		fmt.Fprintf(&out, "%*d | %s", lineBarWidth, start.Line, c.reset)
		stringWidth(0, text, &out)
		out.WriteByte('\n')

		// The underline runs to the end of the span or the end of the line,
		// whichever comes first, and is at least one column wide.
		from := start.Column - 1
		to := min(max(a.End-lineStart, from), len(text))
		from = min(from, to)
		prefix := stringWidth(0, text[:from], nil)
		width := max(1, stringWidth(prefix, text[from:to], nil)-prefix)

		underline, color := "-", c.accent
		if a.primary {
			underline, color = "^", c.normal[d.level]
		}

		out.WriteString(c.accent)
		padBy(&out, lineBarWidth)
		out.WriteString(" | ")
		padBy(&out, prefix)
		out.WriteString(color)
		out.WriteString(strings.Repeat(underline, width))
		if a.message != "" {
			out.WriteByte(' ')
			out.WriteString(a.message)
		}
		out.WriteString(c.reset)
	}

	// Render a remedial file name for spanless errors.
	if len(d.annotations) == 0 && d.inFile != "" {
		out.WriteByte('\n')
		out.WriteString(c.accent)
		padBy(&out, lineBarWidth)
		fmt.Fprintf(&out, "--> %s%s", d.inFile, c.reset)
	}

	type footer struct{ color, label, text string }
	var footers []footer
	for _, note := range d.notes {
		footers = append(footers, footer{c.bold[Remark], "note", note})
	}
	for _, help := range d.help {
		footers = append(footers, footer{c.bold[Remark], "help", help})
	}
	if r.ShowDebug {
		for _, debug := range d.debug {
			footers = append(footers, footer{c.bold[Error], "debug", debug})
		}
	}
	for _, f := range footers {
		out.WriteByte('\n')
		out.WriteString(c.accent)
		padBy(&out, lineBarWidth)
		fmt.Fprint(&out, " = ", f.color, f.label, ": ", c.reset)
		for i, line := range strings.Split(f.text, "\n") {
			if i > 0 {
				out.WriteByte('\n')
				padBy(&out, lineBarWidth+3+len(f.label)+2)
			}
			out.WriteString(line)
		}
	}

	return out.String()
}

// palette holds the escape sequences used to colorize diagnostics. The zero
// palette prints no colors.
type palette struct {
	reset string

	// Line numbers, gutters and secondary underlines.
	accent string

	// Indexed by level.
	normal, bold [Remark + 1]string
}

func newPalette(r Renderer) palette {
	var c palette
	if !r.Colorize {
		return c
	}

	c.reset = "\033[0m"
	c.accent = "\033[0;34m"
	colors := map[Level]string{
		Error:   "31", // Red.
		Warning: "33", // Yellow.
		Remark:  "36", // Cyan.
	}
	if r.WarningsAreErrors {
		colors[Warning] = colors[Error]
	}
	for level, color := range colors {
		c.normal[level] = "\033[0;" + color + "m"
		c.bold[level] = "\033[1;" + color + "m"
	}
	return c
}

func padBy(out *strings.Builder, spaces int) {
	for range spaces {
		out.WriteByte(' ')
	}
}
