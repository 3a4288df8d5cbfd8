// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package aht30 reads an AHT30 temperature and humidity sensor over I²C.
//
// A reading is a single transaction: open the bus, select the device,
// send the measurement trigger, wait for the conversion, read the 7 byte
// frame and release the bus. The frame is then validated with CRC-8 and its
// two 20 bit fields are scaled to °C and %RH.
//
// No state survives a call. The bus handle is opened and closed within
// Acquire, and a Sensor only serializes callers so that two transactions
// never interleave on the wire.
//
// The busy bit of the status byte is reported in Reading.Busy. It is not an
// error: the frame may hold the previous conversion and the caller decides
// whether that is acceptable.
package aht30
