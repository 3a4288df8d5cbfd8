// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht30

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddress is the fixed I²C address of the AHT30.
const DefaultAddress uint16 = 0x38

// DefaultConversionDelay is the wait between trigger and read given by the
// datasheet. The sensor has no cheap ready signal, so this is a fixed sleep.
const DefaultConversionDelay = 80 * time.Millisecond

// cmdMeasure triggers a measurement: 0xAC followed by the two parameter bytes.
var cmdMeasure = []byte{0xAC, 0x33, 0x00}

// Handle is an open I²C bus. It is owned by a single transaction and closed
// at its end.
type Handle interface {
	// SetAddress selects the device the following Write and Read talk to.
	SetAddress(addr uint16) error
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// Opener opens a bus by its identifier, e.g. "/dev/i2c-1".
type Opener interface {
	Open(bus string) (Handle, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(bus string) (Handle, error)

// Open implements Opener.
func (f OpenerFunc) Open(bus string) (Handle, error) {
	return f(bus)
}

// Opts holds the configuration options for a Sensor.
type Opts struct {
	// Opener opens the bus for each transaction. Default is SystemOpener.
	Opener Opener
	// ConversionDelay is the wait between the trigger and the frame read.
	// Default is 80ms. Leave 0 to use default.
	ConversionDelay time.Duration
	// Sleep performs the conversion wait. Default is time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts holds the default configuration options for a Sensor.
var DefaultOpts = Opts{
	Opener:          SystemOpener,
	ConversionDelay: DefaultConversionDelay,
	Sleep:           time.Sleep,
}

// Sensor performs measurement transactions. Transactions issued through the
// same Sensor never overlap on the bus.
type Sensor struct {
	opts Opts
	sem  *semaphore.Weighted
}

// New returns a Sensor. The Opts can be nil.
func New(opts *Opts) *Sensor {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Opener == nil {
		o.Opener = SystemOpener
	}
	if o.ConversionDelay <= 0 {
		o.ConversionDelay = DefaultConversionDelay
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	return &Sensor{opts: o, sem: semaphore.NewWeighted(1)}
}

var defaultSensor = New(nil)

// Acquire reads one measurement with the package default Sensor.
func Acquire(ctx context.Context, bus string, addr uint16) (Reading, error) {
	return defaultSensor.Acquire(ctx, bus, addr)
}

// Acquire performs one measurement transaction on bus with the device at
// addr, or DefaultAddress when addr is 0.
//
// ctx only bounds the wait for the bus. Once the transaction has started it
// runs to completion, including the conversion delay, and the bus handle is
// always closed before returning. There is no retry; each call pays the full
// conversion delay.
func (s *Sensor) Acquire(ctx context.Context, bus string, addr uint16) (Reading, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Reading{}, fmt.Errorf("aht30: waiting for bus %q: %w", bus, err)
	}
	defer s.sem.Release(1)

	f, err := s.readFrame(bus, addr)
	if err != nil {
		return Reading{}, err
	}
	return Decode(f)
}

func (s *Sensor) readFrame(bus string, addr uint16) (f Frame, err error) {
	if addr == 0 {
		addr = DefaultAddress
	}
	h, err := s.opts.Opener.Open(bus)
	if err != nil {
		return f, &BusUnavailableError{Bus: bus, Err: err}
	}
	// The handle is released on every path; a close error is not reported
	// once the frame was read.
	defer h.Close()

	if err := h.SetAddress(addr); err != nil {
		return f, &DeviceNotFoundError{Addr: addr, Err: err}
	}
	if n, err := h.Write(cmdMeasure); err != nil || n != len(cmdMeasure) {
		return f, &CommandFailedError{N: n, Err: err}
	}
	s.opts.Sleep(s.opts.ConversionDelay)

	n, err := h.Read(f[:])
	if err != nil || n != FrameSize {
		return f, &ReadFailedError{N: n, Err: err}
	}
	return f, nil
}

// Dev is an AHT30 at a fixed bus and address. It implements physic.SenseEnv.
type Dev struct {
	s    *Sensor
	bus  string
	addr uint16
}

// NewDev returns a Dev reading through s. A nil s uses the package default
// Sensor.
func NewDev(s *Sensor, bus string, addr uint16) *Dev {
	if s == nil {
		s = defaultSensor
	}
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Dev{s: s, bus: bus, addr: addr}
}

func (d *Dev) String() string {
	return fmt.Sprintf("aht30{%s, %#02x}", d.bus, d.addr)
}

// Read returns the full reading, including the status byte.
func (d *Dev) Read(ctx context.Context) (Reading, error) {
	return d.s.Acquire(ctx, d.bus, d.addr)
}

// Sense implements physic.SenseEnv. The pressure is always 0 since the AHT30
// does not measure it. The call takes at least the conversion delay.
func (d *Dev) Sense(e *physic.Env) error {
	r, err := d.Read(context.Background())
	if err != nil {
		return err
	}
	env := r.Env()
	e.Temperature = env.Temperature
	e.Humidity = env.Humidity
	return nil
}

// SenseContinuous implements physic.SenseEnv. It is not supported: the device
// is only read on demand.
func (d *Dev) SenseContinuous(time.Duration) (<-chan physic.Env, error) {
	return nil, errors.New("aht30: continuous sensing is not supported")
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Humidity = 24 * physic.MilliRH
}

// Halt implements conn.Resource. There is nothing to stop.
func (d *Dev) Halt() error {
	return nil
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
