package logparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedBlock is returned when a statistic block is announced with
	// fewer than five lines left in the input.
	ErrTruncatedBlock = errors.New("statistic block truncated by end of input")
	// ErrNoMode is returned when a metric line is found in an open section
	// before any frequency setting has been announced.
	ErrNoMode = errors.New("metric line before any frequency setting announcement")
)

// A SyntaxError reports a problem on a particular line of a benchmark log.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
	Err      error
}

func (e *SyntaxError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %v", e.FileName, e.Line, e.Msg, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
