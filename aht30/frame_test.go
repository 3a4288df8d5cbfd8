// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht30

import (
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestDecode(t *testing.T) {
	data := []struct {
		name   string
		f      Frame
		tempC  float64
		rh     float64
		busy   bool
		status byte
	}{
		{
			name:  "captured",
			f:     Frame{0x18, 0x75, 0x52, 0x05, 0x8E, 0x40, 0x7F},
			tempC: 19.44580078125,
			rh:    45.8282470703125,
		},
		{
			name:  "scenario A",
			f:     Frame{0x00, 0x33, 0x33, 0x33, 0x33, 0x33, 0x60},
			tempC: float64(0x33333)/1048576.0*200.0 - 50.0,
			rh:    float64(0x33333) / 1048576.0 * 100.0,
		},
		{
			name:   "scenario B busy",
			f:      Frame{0x80, 0x33, 0x33, 0x33, 0x33, 0x33, 0x8C},
			tempC:  float64(0x33333)/1048576.0*200.0 - 50.0,
			rh:     float64(0x33333) / 1048576.0 * 100.0,
			busy:   true,
			status: 0x80,
		},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			r, err := Decode(line.f)
			if err != nil {
				t.Fatal(err)
			}
			if r.Busy != line.busy {
				t.Fatalf("busy %t != %t", r.Busy, line.busy)
			}
			if r.Status != line.f[0] {
				t.Fatalf("status %#02x != %#02x", r.Status, line.f[0])
			}
			if !near(r.TemperatureC, line.tempC) {
				t.Fatalf("temperature %v != %v", r.TemperatureC, line.tempC)
			}
			if !near(r.TemperatureF, line.tempC*9/5+32) {
				t.Fatalf("fahrenheit %v != %v", r.TemperatureF, line.tempC*9/5+32)
			}
			if !near(r.Humidity, line.rh) {
				t.Fatalf("humidity %v != %v", r.Humidity, line.rh)
			}
		})
	}
}

func TestDecode_busyDoesNotChangeValues(t *testing.T) {
	idle, err := Decode(NewFrame(0x18, 0x33333, 0x33333))
	if err != nil {
		t.Fatal(err)
	}
	busy, err := Decode(NewFrame(0x18|bitBusy, 0x33333, 0x33333))
	if err != nil {
		t.Fatal(err)
	}
	if idle.Busy || !busy.Busy {
		t.Fatalf("busy flags %t, %t", idle.Busy, busy.Busy)
	}
	if idle.TemperatureC != busy.TemperatureC || idle.Humidity != busy.Humidity {
		t.Fatalf("%s != %s", idle, busy)
	}
}

func TestDecode_checksumMismatch(t *testing.T) {
	f := Frame{0x00, 0x33, 0x33, 0x33, 0x33, 0x33, 0x60 ^ 0xFF}
	_, err := Decode(f)
	var crc *ChecksumMismatchError
	if !errors.As(err, &crc) {
		t.Fatalf("expected ChecksumMismatchError, got %v", err)
	}
	if crc.Computed != 0x60 || crc.Received != 0x9F {
		t.Fatalf("computed %#02x received %#02x", crc.Computed, crc.Received)
	}
	if ErrorKind(err) != "checksum_mismatch" {
		t.Fatalf("kind %q", ErrorKind(err))
	}
}

func TestDecode_checksumMismatchWhileBusy(t *testing.T) {
	f := NewFrame(bitBusy, 1234, 5678)
	f[6]++
	if _, err := Decode(f); err == nil {
		t.Fatal("expected a CRC error for a busy frame")
	}
}

func TestDecode_singleBitFlips(t *testing.T) {
	frames := []Frame{
		NewFrame(0x18, 0x75520, 0x58E40),
		NewFrame(0x00, 0, 0),
		NewFrame(0x9C, rawMask, rawMask),
	}
	for _, f := range frames {
		if _, err := Decode(f); err != nil {
			t.Fatalf("%#v: %v", f, err)
		}
		for i := 0; i < 6; i++ {
			for bit := 0; bit < 8; bit++ {
				g := f
				g[i] ^= 1 << bit
				var crc *ChecksumMismatchError
				if _, err := Decode(g); !errors.As(err, &crc) {
					t.Fatalf("byte %d bit %d flipped in %#v: got %v", i, bit, f, err)
				}
			}
		}
	}
}

func TestNewFrame_roundTrip(t *testing.T) {
	data := []struct {
		status byte
		rh, t  uint32
	}{
		{0x18, 0, 0},
		{0x18, rawMask, rawMask},
		{0x98, 0x75520, 0x58E40},
		{0x1C, 0x80000, 0x66666},
		{0x00, 0x12345, 0xABCDE},
	}
	for _, line := range data {
		f := NewFrame(line.status, line.rh, line.t)
		if f.RawHumidity() != line.rh || f.RawTemperature() != line.t {
			t.Fatalf("raw %#x/%#x != %#x/%#x", f.RawHumidity(), f.RawTemperature(), line.rh, line.t)
		}
		r, err := Decode(f)
		if err != nil {
			t.Fatal(err)
		}
		if r.Status != line.status || r.Busy != (line.status&0x80 != 0) {
			t.Fatalf("status %#02x busy %t", r.Status, r.Busy)
		}
		if want := float64(line.rh) / 1048576 * 100; !near(r.Humidity, want) {
			t.Fatalf("humidity %v != %v", r.Humidity, want)
		}
		if want := float64(line.t)/1048576*200 - 50; !near(r.TemperatureC, want) {
			t.Fatalf("temperature %v != %v", r.TemperatureC, want)
		}
	}
}

func TestConversionBoundaries(t *testing.T) {
	if v := humidityRH(0); v != 0 {
		t.Fatalf("humidity(0) = %v", v)
	}
	if v := humidityRH(1 << 20); v != 100 {
		t.Fatalf("humidity(2^20) = %v", v)
	}
	if v := temperatureC(0); v != -50 {
		t.Fatalf("temperature(0) = %v", v)
	}
	if v := temperatureC(1 << 20); v != 150 {
		t.Fatalf("temperature(2^20) = %v", v)
	}
	if v := fahrenheit(-40); v != -40 {
		t.Fatalf("fahrenheit(-40) = %v", v)
	}
	if v := fahrenheit(100); v != 212 {
		t.Fatalf("fahrenheit(100) = %v", v)
	}
}

func TestReading_Env(t *testing.T) {
	r, err := Decode(Frame{0x18, 0x75, 0x52, 0x05, 0x8E, 0x40, 0x7F})
	if err != nil {
		t.Fatal(err)
	}
	e := r.Env()
	if expected := 19445800781*physic.NanoKelvin + physic.ZeroCelsius; e.Temperature != expected {
		t.Fatalf("temperature %s(%d) != %s(%d)", expected, expected, e.Temperature, e.Temperature)
	}
	if expected := 4582824 * physic.TenthMicroRH; e.Humidity != expected {
		t.Fatalf("humidity %s(%d) != %s(%d)", expected, expected, e.Humidity, e.Humidity)
	}
	if e.Pressure != 0 {
		t.Fatalf("pressure %s", e.Pressure)
	}
}

func TestReading_String(t *testing.T) {
	r := Reading{TemperatureC: 21.5, TemperatureF: 70.7, Humidity: 40.25, Status: 0x98, Busy: true}
	if s, want := r.String(), "21.50°C (70.70°F), 40.25%rH, status 0x98 (busy)"; s != want {
		t.Fatalf("%q != %q", s, want)
	}
}
