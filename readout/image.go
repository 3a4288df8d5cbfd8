// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package readout

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// ImageOpts holds the panel size.
type ImageOpts struct {
	W, H int
}

// DefaultImageOpts is a 240x96 panel.
var DefaultImageOpts = ImageOpts{W: 240, H: 96}

var (
	background = color.NRGBA{R: 0x18, G: 0x18, B: 0x1c, A: 0xff}
	foreground = color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	dimmed     = color.NRGBA{R: 0x90, G: 0x90, B: 0x98, A: 0xff}
)

const barWidth = 12

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// Image draws r on a panel: a bar colored by temperature on the left, the
// temperature and the humidity as text on the right.
func Image(r aht30.Reading, opts *ImageOpts) (image.Image, error) {
	dc, err := render(r, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG renders r with Image and writes it to w as PNG.
func EncodePNG(w io.Writer, r aht30.Reading, opts *ImageOpts) error {
	dc, err := render(r, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func render(r aht30.Reading, opts *ImageOpts) (*gg.Context, error) {
	if opts == nil {
		opts = &DefaultImageOpts
	}
	if opts.W <= barWidth || opts.H <= 0 {
		return nil, fmt.Errorf("readout: invalid panel size %dx%d", opts.W, opts.H)
	}
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("readout: parsing font: %w", err)
	}
	h := float64(opts.H)
	dc := gg.NewContext(opts.W, opts.H)
	dc.SetColor(background)
	dc.Clear()

	dc.SetColor(TemperatureColor(r.TemperatureC))
	dc.DrawRectangle(0, 0, barWidth, h)
	dc.Fill()

	x := float64(barWidth) + h/8
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: h / 3}))
	dc.SetColor(foreground)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f°C", r.TemperatureC), x, h*0.35, 0, 0.5)

	small := fmt.Sprintf("%.2f%%rH  %.2f°F", r.Humidity, r.TemperatureF)
	if r.Busy {
		small += "  busy"
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: h / 6}))
	dc.SetColor(dimmed)
	dc.DrawStringAnchored(small, x, h*0.75, 0, 0.5)
	return dc, nil
}
