// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type config struct {
	Debug, Trace bool
	BindAddress  string
	Bus          string
	Address      uint16
	Timeout      time.Duration
}

const (
	defaultBind    = "0.0.0.0:7070"
	defaultBus     = "/dev/i2c-1"
	defaultTimeout = 2 * time.Second
)

type addressFlag struct {
	addr *uint16
}

func (a addressFlag) String() string {
	if a.addr == nil {
		return ""
	}
	return fmt.Sprintf("%#02x", *a.addr)
}

func (a addressFlag) Set(v string) error {
	addr, err := aht30.ParseAddress(v)
	if err != nil {
		return err
	}
	*a.addr = addr
	return nil
}

// loadEnvFile loads variables from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

// parseArgs builds the configuration from the environment, then the command
// line. Flags win over AHT30_* variables.
func parseArgs(name string, args []string, getenv func(string) string, output io.Writer) (config, error) {
	cfg := config{
		BindAddress: defaultBind,
		Bus:         defaultBus,
		Address:     aht30.DefaultAddress,
		Timeout:     defaultTimeout,
	}
	if v := getenv("AHT30_BIND"); v != "" {
		cfg.BindAddress = v
	}
	if v := getenv("AHT30_BUS"); v != "" {
		cfg.Bus = v
	}
	if v := getenv("AHT30_ADDR"); v != "" {
		addr, err := aht30.ParseAddress(v)
		if err != nil {
			return cfg, errors.Wrap(err, "AHT30_ADDR")
		}
		cfg.Address = addr
	}
	if v := getenv("AHT30_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, errors.Wrap(err, "AHT30_TIMEOUT")
		}
		cfg.Timeout = d
	}

	fl := flag.NewFlagSet(name, flag.ContinueOnError)
	fl.SetOutput(output)
	fl.StringVar(&cfg.BindAddress, "bind", cfg.BindAddress, "Where the HTTP server will bind to")
	fl.StringVar(&cfg.Bus, "bus", cfg.Bus, "I²C bus: a device path like /dev/i2c-1, or a periph bus name or number")
	fl.Var(addressFlag{&cfg.Address}, "addr", "I²C address of the sensor")
	fl.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "How long a request waits for the bus before failing")
	fl.BoolVar(&cfg.Debug, "debug", false, "Enable debug logs")
	fl.BoolVar(&cfg.Trace, "trace", false, "Enable trace logs")
	if err := fl.Parse(args); err != nil {
		return cfg, err
	}
	if fl.NArg() != 0 {
		return cfg, errors.Errorf("unexpected arguments: %v", fl.Args())
	}
	if cfg.Timeout <= 0 {
		return cfg, errors.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}
