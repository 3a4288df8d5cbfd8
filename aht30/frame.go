// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht30

import (
	"fmt"

	"github.com/GermanBionicSystems/aht30/common"
	"periph.io/x/conn/v3/physic"
)

// FrameSize is the length of the response to a measurement command.
const FrameSize = 7

const bitBusy byte = 1 << 7

// Both raw fields are 20 bits wide; the scale factor is 2^20.
const (
	rawMask  = 1<<20 - 1
	rawScale = 1048576.0
)

// Frame is the raw response of the sensor.
//
//	byte 0     status
//	byte 1..3  humidity, 20 bits, MSB first (upper nibble of byte 3)
//	byte 3..5  temperature, 20 bits, MSB first (lower nibble of byte 3)
//	byte 6     CRC-8 over bytes 0..5
type Frame [FrameSize]byte

// NewFrame packs a status byte and two raw 20 bit fields into a Frame with a
// valid checksum. Bits above 20 are ignored.
func NewFrame(status byte, rhRaw, tRaw uint32) Frame {
	rhRaw &= rawMask
	tRaw &= rawMask
	f := Frame{
		status,
		byte(rhRaw >> 12),
		byte(rhRaw >> 4),
		byte(rhRaw<<4) | byte(tRaw>>16)&0x0F,
		byte(tRaw >> 8),
		byte(tRaw),
	}
	f[6] = f.Checksum()
	return f
}

// Checksum returns the CRC-8 computed over the first six bytes.
func (f Frame) Checksum() byte {
	return common.CRC8(f[:6])
}

// Busy reports whether the busy bit of the status byte is set.
func (f Frame) Busy() bool {
	return f[0]&bitBusy != 0
}

// RawHumidity returns the unscaled 20 bit humidity field.
func (f Frame) RawHumidity() uint32 {
	return uint32(f[1])<<12 | uint32(f[2])<<4 | uint32(f[3])>>4
}

// RawTemperature returns the unscaled 20 bit temperature field.
func (f Frame) RawTemperature() uint32 {
	return (uint32(f[3])&0x0F)<<16 | uint32(f[4])<<8 | uint32(f[5])
}

// Decode validates the frame checksum and converts the raw fields. The only
// possible error is a *ChecksumMismatchError, which is returned regardless of
// the busy bit.
func Decode(f Frame) (Reading, error) {
	if computed, ok := common.CheckCRC8(f[:6], f[6]); !ok {
		return Reading{}, &ChecksumMismatchError{Computed: computed, Received: f[6]}
	}
	c := temperatureC(f.RawTemperature())
	return Reading{
		TemperatureC: c,
		TemperatureF: fahrenheit(c),
		Humidity:     humidityRH(f.RawHumidity()),
		Status:       f[0],
		Busy:         f.Busy(),
	}, nil
}

func humidityRH(raw uint32) float64 {
	return float64(raw) / rawScale * 100.0
}

func temperatureC(raw uint32) float64 {
	return float64(raw)/rawScale*200.0 - 50.0
}

func fahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// Reading is one decoded measurement. Values are not clamped; a frame that
// passes the CRC check may still decode outside the nominal range.
type Reading struct {
	TemperatureC float64
	TemperatureF float64
	// Humidity is the relative humidity in percent.
	Humidity float64
	// Status is the raw status byte, kept for diagnostics.
	Status uint8
	// Busy is set when the sensor had not finished the conversion; the values
	// may come from the previous one.
	Busy bool
}

// Env converts the reading to periph units. Pressure is left at 0.
func (r Reading) Env() physic.Env {
	return physic.Env{
		Temperature: physic.Temperature(r.TemperatureC*float64(physic.Kelvin)) + physic.ZeroCelsius,
		Humidity:    physic.RelativeHumidity(r.Humidity * float64(physic.PercentRH)),
	}
}

func (r Reading) String() string {
	s := fmt.Sprintf("%.2f°C (%.2f°F), %.2f%%rH, status %#02x", r.TemperatureC, r.TemperatureF, r.Humidity, r.Status)
	if r.Busy {
		s += " (busy)"
	}
	return s
}
