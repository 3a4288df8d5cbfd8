// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht30

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/aht30/i2cdev"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// SystemOpener opens absolute device paths such as "/dev/i2c-1" directly and
// resolves any other identifier (bus name, alias or number) through the periph
// I²C registry.
var SystemOpener Opener = OpenerFunc(func(bus string) (Handle, error) {
	if strings.HasPrefix(bus, "/") {
		return DevfsOpener.Open(bus)
	}
	return (&PeriphOpener{}).Open(bus)
})

// DevfsOpener opens Linux i2c-dev character devices.
var DevfsOpener Opener = OpenerFunc(func(bus string) (Handle, error) {
	d, err := i2cdev.Open(bus)
	if err != nil {
		return nil, err
	}
	return d, nil
})

// PeriphOpener opens buses through periph.
type PeriphOpener struct {
	// OpenBus returns the bus for a name. Default initializes the periph host
	// drivers once and calls i2creg.Open.
	OpenBus func(name string) (i2c.BusCloser, error)
}

// Open implements Opener.
func (p *PeriphOpener) Open(name string) (Handle, error) {
	open := p.OpenBus
	if open == nil {
		open = openRegistry
	}
	b, err := open(name)
	if err != nil {
		return nil, err
	}
	return &periphHandle{b: b}, nil
}

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

func openRegistry(name string) (i2c.BusCloser, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return i2creg.Open(name)
}

type periphHandle struct {
	b i2c.BusCloser
	d *i2c.Dev
}

func (h *periphHandle) SetAddress(addr uint16) error {
	if addr > 0x7F {
		return fmt.Errorf("%#x is not a 7 bit I²C address", addr)
	}
	h.d = &i2c.Dev{Bus: h.b, Addr: addr}
	return nil
}

var errNoAddress = errors.New("no device address selected")

// Write sends b in a single write-only transaction. I²C transfers are all or
// nothing, so a successful Tx means len(b) bytes were written.
func (h *periphHandle) Write(b []byte) (int, error) {
	if h.d == nil {
		return 0, errNoAddress
	}
	if err := h.d.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (h *periphHandle) Read(b []byte) (int, error) {
	if h.d == nil {
		return 0, errNoAddress
	}
	if err := h.d.Tx(nil, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (h *periphHandle) Close() error {
	return h.b.Close()
}

func (h *periphHandle) String() string {
	if h.d == nil {
		return h.b.String()
	}
	return h.d.String()
}

// ParseAddress parses a 7 bit I²C address written in decimal, or in hex with
// a 0x prefix. The empty string yields DefaultAddress.
func ParseAddress(s string) (uint16, error) {
	if s == "" {
		return DefaultAddress, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("aht30: invalid I²C address %q: %w", s, err)
	}
	if v > 0x7F {
		return 0, fmt.Errorf("aht30: I²C address %#x is out of the 7 bit range", v)
	}
	return uint16(v), nil
}
