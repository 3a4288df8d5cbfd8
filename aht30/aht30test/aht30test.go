// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package aht30test provides an in-memory bus for testing code that reads an
// AHT30 without hardware.
package aht30test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/aht30/aht30"
)

// Op is one operation seen by the bus.
type Op struct {
	Handle int
	Kind   string // "open", "addr", "write", "read" or "close"
	Addr   uint16
	W      []byte
	R      []byte
}

// Bus is a scripted aht30.Opener. Each Open returns a new handle that answers
// reads with Frame, or with the next entry of Frames when set.
//
// The error fields inject a failure at the matching step. Bus also checks
// that handles do not overlap: an Open while another handle is still open is
// counted in Overlaps.
//
// Bus is safe for concurrent use.
type Bus struct {
	Frame  []byte
	Frames [][]byte

	OpenErr  error
	AddrErr  error
	WriteErr error
	ReadErr  error
	CloseErr error
	// ShortWrite, when > 0, limits the number of bytes accepted by Write.
	ShortWrite int
	// Hold keeps each write-to-read window busy for this long so that
	// overlapping transactions become observable.
	Hold time.Duration

	mu       sync.Mutex
	ops      []Op
	handles  int
	open     int
	closes   int
	overlaps int
}

// Open implements aht30.Opener.
func (b *Bus) Open(name string) (aht30.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	if b.open != 0 {
		b.overlaps++
	}
	b.open++
	b.handles++
	h := &handle{bus: b, id: b.handles}
	b.ops = append(b.ops, Op{Handle: h.id, Kind: "open"})
	return h, nil
}

// Ops returns a copy of the operations performed so far.
func (b *Bus) Ops() []Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Op(nil), b.ops...)
}

// Opened returns the number of handles opened so far.
func (b *Bus) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handles
}

// Closed returns the number of handles closed so far.
func (b *Bus) Closed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// Overlaps returns the number of times a handle was opened while another one
// was still open.
func (b *Bus) Overlaps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlaps
}

func (b *Bus) record(op Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
}

func (b *Bus) nextFrame() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Frames) != 0 {
		f := b.Frames[0]
		b.Frames = b.Frames[1:]
		return f
	}
	return b.Frame
}

type handle struct {
	bus    *Bus
	id     int
	addr   uint16
	closed bool
}

var errClosed = errors.New("aht30test: handle is closed")

func (h *handle) SetAddress(addr uint16) error {
	if h.closed {
		return errClosed
	}
	h.bus.record(Op{Handle: h.id, Kind: "addr", Addr: addr})
	if h.bus.AddrErr != nil {
		return h.bus.AddrErr
	}
	h.addr = addr
	return nil
}

func (h *handle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, errClosed
	}
	n := len(p)
	if h.bus.ShortWrite > 0 && h.bus.ShortWrite < n {
		n = h.bus.ShortWrite
	}
	h.bus.record(Op{Handle: h.id, Kind: "write", Addr: h.addr, W: append([]byte(nil), p[:n]...)})
	if h.bus.WriteErr != nil {
		return 0, h.bus.WriteErr
	}
	if h.bus.Hold > 0 {
		time.Sleep(h.bus.Hold)
	}
	return n, nil
}

func (h *handle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, errClosed
	}
	if h.bus.ReadErr != nil {
		h.bus.record(Op{Handle: h.id, Kind: "read", Addr: h.addr})
		return 0, h.bus.ReadErr
	}
	n := copy(p, h.bus.nextFrame())
	h.bus.record(Op{Handle: h.id, Kind: "read", Addr: h.addr, R: append([]byte(nil), p[:n]...)})
	return n, nil
}

func (h *handle) Close() error {
	if h.closed {
		return errClosed
	}
	h.closed = true
	b := h.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open--
	b.closes++
	b.ops = append(b.ops, Op{Handle: h.id, Kind: "close"})
	return b.CloseErr
}

func (h *handle) String() string {
	return fmt.Sprintf("aht30test#%d", h.id)
}

var _ aht30.Opener = &Bus{}
