// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package i2cdev

import "errors"

const isLinux = false

var errUnsupported = errors.New("not supported on this platform")

func open(string) (int, error)       { return -1, errUnsupported }
func ioctlInt(int, uint, int) error  { return errUnsupported }
func write(int, []byte) (int, error) { return 0, errUnsupported }
func read(int, []byte) (int, error)  { return 0, errUnsupported }
func closeFd(int) error              { return errUnsupported }
