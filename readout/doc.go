// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package readout renders an aht30.Reading for people: a one line summary for
// the terminal, with an ANSI color swatch, and a small PNG panel.
//
// Values are rounded to two decimals here. The aht30 package never rounds.
package readout
