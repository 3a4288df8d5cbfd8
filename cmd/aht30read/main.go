// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// aht30read reads an AHT30 once and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/GermanBionicSystems/aht30/readout"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func mainImpl(ctx context.Context, s *aht30.Sensor, args []string, out io.Writer, isTerm bool) error {
	fl := flag.NewFlagSet("aht30read", flag.ContinueOnError)
	bus := fl.String("bus", "/dev/i2c-1", "I²C bus: a device path like /dev/i2c-1, or a periph bus name or number")
	addr := fl.String("addr", "0x38", "I²C address of the sensor")
	color := fl.String("color", "auto", "Color swatch: auto, always or never")
	verbose := fl.Bool("v", false, "Verbose logs")
	if err := fl.Parse(args); err != nil {
		return err
	}
	if fl.NArg() != 0 {
		return errors.Errorf("unexpected arguments: %v", fl.Args())
	}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	a, err := aht30.ParseAddress(*addr)
	if err != nil {
		return err
	}
	opts := readout.Opts{}
	switch *color {
	case "auto":
		opts.Color = isTerm
	case "always":
		opts.Color = true
	case "never":
	default:
		return errors.Errorf("invalid -color %q", *color)
	}

	start := time.Now()
	r, err := s.Acquire(ctx, *bus, a)
	log.Debug().Str("Bus", *bus).Dur("Duration", time.Since(start)).Msg("Read sensor")
	if err != nil {
		return errors.Wrapf(err, "AHT30 read failed (%s)", aht30.ErrorKind(err))
	}
	return readout.Fprint(out, r, &opts)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	out, isTerm := readout.Stdout()
	if err := mainImpl(context.Background(), aht30.New(nil), os.Args[1:], out, isTerm); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "aht30read: %s.\n", err)
		os.Exit(1)
	}
}
