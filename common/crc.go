// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions shared by the sensor packages, such as
// the CRC-8 used by Aosong (AHT2x/AHT30) and Sensirion humidity sensors.
package common

// CRC8Polynomial is p(x) = x^8 + x^5 + x^4 + 1. x^8 is implied.
const CRC8Polynomial byte = 0x31

// CRC8 calculates the 8-bit CRC of bytes, MSB first, seeded with 0xFF and
// without a final XOR.
func CRC8(bytes []byte) byte {
	var crc byte = 0xff
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ CRC8Polynomial
			}
		}
	}
	return crc
}

// CheckCRC8 reports whether want is the CRC8 of data, along with the computed
// value so callers can report both on mismatch.
func CheckCRC8(data []byte, want byte) (byte, bool) {
	got := CRC8(data)
	return got, got == want
}
