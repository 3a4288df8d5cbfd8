// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package readout

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/aht30/aht30"
)

var reading = aht30.Reading{TemperatureC: 19.44580078125, TemperatureF: 67.00244140625, Humidity: 45.8282470703125, Status: 0x18}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, reading, nil); err != nil {
		t.Fatal(err)
	}
	if s, want := buf.String(), "19.45°C  67.00°F  45.83%rH\n"; s != want {
		t.Fatalf("%q != %q", s, want)
	}

	buf.Reset()
	busy := reading
	busy.Busy = true
	if err := Fprint(&buf, busy, &Opts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "  (busy)\n") {
		t.Fatalf("missing busy marker: %q", buf.String())
	}
}

func TestFprint_color(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, reading, &Opts{Color: true}); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	const text = "\033[0m 19.45°C  67.00°F  45.83%rH\n"
	if !strings.HasPrefix(s, "\033[0m") || !strings.HasSuffix(s, text) {
		t.Fatalf("unexpected output: %q", s)
	}
	if swatch := s[len("\033[0m") : len(s)-len(text)]; swatch == "" {
		t.Fatalf("missing ANSI swatch: %q", s)
	}
}

func TestTemperatureColor(t *testing.T) {
	data := []struct {
		c    float64
		want color.NRGBA
	}{
		{-40, color.NRGBA{B: 255, A: 255}},
		{-10, color.NRGBA{B: 255, A: 255}},
		{15, color.NRGBA{G: 255, A: 255}},
		{40, color.NRGBA{R: 255, A: 255}},
		{150, color.NRGBA{R: 255, A: 255}},
		{math.NaN(), color.NRGBA{B: 255, A: 255}},
	}
	for _, line := range data {
		if got := TemperatureColor(line.c); got != line.want {
			t.Errorf("TemperatureColor(%v) = %v, want %v", line.c, got, line.want)
		}
	}
}

func TestImage(t *testing.T) {
	img, err := Image(reading, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != DefaultImageOpts.W || b.Dy() != DefaultImageOpts.H {
		t.Fatalf("bounds %v", b)
	}
	r1, g1, b1, _ := img.At(2, b.Dy()/2).RGBA()
	r2, g2, b2, _ := TemperatureColor(reading.TemperatureC).RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Fatalf("bar color %v != %v", img.At(2, b.Dy()/2), TemperatureColor(reading.TemperatureC))
	}
	// Some text must have been drawn right of the bar.
	bg := color.RGBAModel.Convert(background)
	drawn := false
	for y := 0; y < b.Dy() && !drawn; y++ {
		for x := barWidth + 1; x < b.Dx(); x++ {
			if color.RGBAModel.Convert(img.At(x, y)) != bg {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Fatal("no text drawn")
	}
}

func TestImage_invalidSize(t *testing.T) {
	if _, err := Image(reading, &ImageOpts{W: barWidth, H: 10}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	opts := ImageOpts{W: 160, H: 64}
	if err := EncodePNG(&buf, reading, &opts); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 64 {
		t.Fatalf("bounds %v", b)
	}
}
