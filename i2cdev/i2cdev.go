// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cdev talks to a device through a Linux i2c-dev character device
// as described at https://www.kernel.org/doc/Documentation/i2c/dev-interface.
//
// Unlike periph's sysfs bus, which issues combined I2C_RDWR transactions,
// this selects the slave once with I2C_SLAVE and then uses plain read(2) and
// write(2), so short transfers are visible to the caller.
package i2cdev

import "fmt"

// ioctlSlave is I2C_SLAVE from linux/i2c-dev.h.
const ioctlSlave = 0x0703

// Dev is an open i2c-dev file. It is not safe for concurrent use.
type Dev struct {
	path string
	fd   int
	addr uint16
}

// Open opens path, e.g. "/dev/i2c-1", for reading and writing.
func Open(path string) (*Dev, error) {
	if !isLinux {
		return nil, fmt.Errorf("i2cdev: opening %s: not supported on this platform", path)
	}
	fd, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("i2cdev: %w", err)
	}
	return &Dev{path: path, fd: fd}, nil
}

func (d *Dev) String() string {
	if d.addr == 0 {
		return d.path
	}
	return fmt.Sprintf("%s@%#02x", d.path, d.addr)
}

// SetAddress selects the slave address used by Read and Write.
func (d *Dev) SetAddress(addr uint16) error {
	if addr > 0x7F {
		return fmt.Errorf("i2cdev: %#x is not a 7 bit address", addr)
	}
	if err := ioctlInt(d.fd, ioctlSlave, int(addr)); err != nil {
		return fmt.Errorf("i2cdev: I2C_SLAVE %#02x: %w", addr, err)
	}
	d.addr = addr
	return nil
}

// Write writes b to the selected device. It returns the number of bytes the
// kernel accepted, which may be less than len(b).
func (d *Dev) Write(b []byte) (int, error) {
	n, err := write(d.fd, b)
	if err != nil {
		return max(n, 0), fmt.Errorf("i2cdev: write: %w", err)
	}
	return n, nil
}

// Read reads up to len(b) bytes from the selected device.
func (d *Dev) Read(b []byte) (int, error) {
	n, err := read(d.fd, b)
	if err != nil {
		return max(n, 0), fmt.Errorf("i2cdev: read: %w", err)
	}
	return n, nil
}

// Close closes the file. The Dev must not be used afterward.
func (d *Dev) Close() error {
	if err := closeFd(d.fd); err != nil {
		return fmt.Errorf("i2cdev: %w", err)
	}
	d.fd = -1
	return nil
}
