// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht30

import (
	"errors"
	"fmt"
)

// BusUnavailableError is returned when the I²C bus could not be opened.
type BusUnavailableError struct {
	Bus string
	Err error
}

func (e *BusUnavailableError) Error() string {
	return fmt.Sprintf("aht30: failed to open I²C bus %q: %v", e.Bus, e.Err)
}

func (e *BusUnavailableError) Unwrap() error { return e.Err }

// DeviceNotFoundError is returned when the bus was opened but the device
// address could not be selected.
type DeviceNotFoundError struct {
	Addr uint16
	Err  error
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("aht30: failed to select I²C device %#02x: %v", e.Addr, e.Err)
}

func (e *DeviceNotFoundError) Unwrap() error { return e.Err }

// CommandFailedError is returned when the measurement trigger was not fully
// written. N is the number of bytes accepted by the bus.
type CommandFailedError struct {
	N   int
	Err error
}

func (e *CommandFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("aht30: short write of measurement command: %d of %d bytes", e.N, len(cmdMeasure))
	}
	return fmt.Sprintf("aht30: failed to write measurement command: %v", e.Err)
}

func (e *CommandFailedError) Unwrap() error { return e.Err }

// ReadFailedError is returned when the response frame could not be read in
// full. N is the number of bytes received.
type ReadFailedError struct {
	N   int
	Err error
}

func (e *ReadFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("aht30: short read of measurement frame: %d of %d bytes", e.N, FrameSize)
	}
	return fmt.Sprintf("aht30: failed to read measurement frame: %v", e.Err)
}

func (e *ReadFailedError) Unwrap() error { return e.Err }

// ChecksumMismatchError is returned when a complete frame was read but its
// CRC byte does not match the CRC computed over the first six bytes.
type ChecksumMismatchError struct {
	Computed byte
	Received byte
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("aht30: CRC mismatch: calculated %#02x but received %#02x", e.Computed, e.Received)
}

// ErrorKind returns a stable label for err, suitable for metric labels and
// response payloads.
func ErrorKind(err error) string {
	var (
		bus *BusUnavailableError
		dev *DeviceNotFoundError
		cmd *CommandFailedError
		rd  *ReadFailedError
		crc *ChecksumMismatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &bus):
		return "bus_unavailable"
	case errors.As(err, &dev):
		return "device_not_found"
	case errors.As(err, &cmd):
		return "command_failed"
	case errors.As(err, &rd):
		return "read_failed"
	case errors.As(err, &crc):
		return "checksum_mismatch"
	default:
		return "unknown"
	}
}
