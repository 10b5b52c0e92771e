package logparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"fmt"
	"io"
)

// sample arrays are printed on a single line
const maxLineLen = 4 * 1024 * 1024

// cursor walks the input one line at a time and lets a handler consume
// lines ahead of the main scan.
type cursor struct {
	s    *bufio.Scanner
	line int // 1-based number of the current line
	text string
}

func newCursor(r io.Reader) *cursor {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	return &cursor{s: s}
}

// Next advances to the next line and reports whether there was one.
func (c *cursor) Next() bool {
	if !c.s.Scan() {
		return false
	}
	c.line++
	c.text = c.s.Text()
	return true
}

// Take consumes the next n lines. It fails with ErrTruncatedBlock if the
// input ends first.
func (c *cursor) Take(n int) ([]string, error) {
	lines := make([]string, 0, n)
	for range n {
		if !c.Next() {
			if err := c.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: wanted %d lines, found %d", ErrTruncatedBlock, n, len(lines))
		}
		lines = append(lines, c.text)
	}
	return lines, nil
}

// Err returns the first non-EOF read error.
func (c *cursor) Err() error {
	return c.s.Err()
}
