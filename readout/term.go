// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package readout

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Opts controls the terminal output.
type Opts struct {
	// Color enables the ANSI swatch.
	Color   bool
	Palette *ansi256.Palette

	_ struct{}
}

// Stdout returns a writer for stdout that translates ANSI codes on Windows
// consoles, and whether stdout is a terminal.
func Stdout() (io.Writer, bool) {
	fd := os.Stdout.Fd()
	return colorable.NewColorableStdout(), isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Fprint writes one line describing r to w.
func Fprint(w io.Writer, r aht30.Reading, opts *Opts) error {
	if opts == nil {
		opts = &Opts{}
	}
	var buf bytes.Buffer
	if opts.Color {
		p := opts.Palette
		if p == nil {
			p = ansi256.Default
		}
		_, _ = buf.WriteString("\033[0m")
		_, _ = buf.WriteString(p.Block(TemperatureColor(r.TemperatureC)))
		_, _ = buf.WriteString("\033[0m ")
	}
	fmt.Fprintf(&buf, "%.2f°C  %.2f°F  %.2f%%rH", r.TemperatureC, r.TemperatureF, r.Humidity)
	if r.Busy {
		_, _ = buf.WriteString("  (busy)")
	}
	_ = buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// Temperature range mapped from blue to red.
const (
	coldC = -10.0
	hotC  = 40.0
)

// TemperatureColor maps a temperature to a color from blue (-10°C and below)
// through green to red (40°C and above).
func TemperatureColor(c float64) color.NRGBA {
	x := (c - coldC) / (hotC - coldC)
	switch {
	case math.IsNaN(x) || x < 0:
		x = 0
	case x > 1:
		x = 1
	}
	if x < 0.5 {
		return color.NRGBA{G: byte(510 * x), B: byte(255 - 510*x), A: 255}
	}
	return color.NRGBA{R: byte(510 * (x - 0.5)), G: byte(255 - 510*(x-0.5)), A: 255}
}
