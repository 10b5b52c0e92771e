package logparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// blockLen is the number of statistic lines that follow a series announcement.
const blockLen = 5

// rule pairs a line matcher with its handler. Rules are evaluated in order and
// the first match wins.
type rule struct {
	name string
	re   *regexp.Regexp
	// metric rules are skipped while no section is open
	metric bool
	handle func(p *parser, match []string) error
}

type parser struct {
	rules    []rule
	cur      *cursor
	res      *Result
	fileName string
	section  *Record // nil until the first section-start line
	mode     string  // empty until the first mode announcement
}

func newRules(v *Variant) []rule {
	rules := []rule{
		{
			name:   "section",
			re:     regexp.MustCompile(v.Section),
			handle: (*parser).startSection,
		},
		{
			name:   "mode",
			re:     modePattern,
			handle: (*parser).setMode,
		},
	}
	for _, m := range v.Scalars {
		field := m.FieldName()
		rules = append(rules, rule{
			name:   m.Label,
			re:     scalarPattern(m),
			metric: true,
			handle: func(p *parser, match []string) error {
				return p.setScalar(field, match[1])
			},
		})
	}
	for _, m := range v.Series {
		series := m.FieldName()
		rules = append(rules, rule{
			name:   m.Label,
			re:     seriesPattern(m),
			metric: true,
			handle: func(p *parser, match []string) error {
				return p.readBlock(series, match[1])
			},
		})
	}
	return rules
}

// ParseFile parses the benchmark log at path.
func ParseFile(path string, v *Variant) (*Result, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open benchmark log: %w", err)
	}
	defer f.Close()
	return Parse(f, path, v)
}

// Parse reads a benchmark log from r. fileName is only used in error messages.
func Parse(r io.Reader, fileName string, v *Variant) (*Result, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	p := &parser{
		rules:    newRules(v),
		cur:      newCursor(r),
		res:      newResult(v),
		fileName: fileName,
	}
	for p.cur.Next() {
		if err := p.dispatch(p.cur.text); err != nil {
			return nil, err
		}
	}
	if err := p.cur.Err(); err != nil {
		return nil, fmt.Errorf("%s:%d: %w", fileName, p.cur.line, err)
	}
	p.res.Lines = p.cur.line
	slog.Debug("parsed benchmark log", slog.String("file", fileName), slog.String("variant", v.Name), slog.Int("lines", p.res.Lines), slog.Int("sections", len(p.res.Records)), slog.Int("blocks", len(p.res.Blocks)))
	return p.res, nil
}

func (p *parser) dispatch(line string) error {
	for _, r := range p.rules {
		match := r.re.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if r.metric {
			if p.section == nil {
				return nil
			}
			if p.mode == "" {
				return p.syntaxError(p.cur.line, r.name, ErrNoMode)
			}
		}
		return r.handle(p, match)
	}
	return nil
}

func (p *parser) syntaxError(line int, msg string, err error) *SyntaxError {
	return &SyntaxError{FileName: p.fileName, Line: line, Msg: msg, Err: err}
}

func (p *parser) startSection(match []string) error {
	key, err := strconv.Atoi(match[1])
	if err != nil {
		return p.syntaxError(p.cur.line, "parsing section key", err)
	}
	p.section = p.res.section(key)
	return nil
}

func (p *parser) setMode(match []string) error {
	p.mode = strings.ToLower(match[1])
	return nil
}

func (p *parser) setScalar(field, text string) error {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return p.syntaxError(p.cur.line, "parsing "+field, err)
	}
	p.section.Set(p.mode+"_"+field, value)
	return nil
}

// readBlock consumes the statistic lines that follow a series announcement.
// All five lines are consumed even when some of them are not statistics.
func (p *parser) readBlock(series, samples string) error {
	start := p.cur.line
	lines, err := p.cur.Take(blockLen)
	if err != nil {
		return p.syntaxError(start, "reading "+series+" statistics", err)
	}
	block := Block{
		Line:    start,
		Section: p.section.Key,
		Mode:    p.mode,
		Series:  series,
		Samples: samples,
		Stats:   make(map[string]float64, blockLen),
	}
	for i, line := range lines {
		for _, st := range statistics {
			match := st.re.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			value, err := strconv.ParseFloat(match[3], 64)
			if err != nil {
				return p.syntaxError(start+i+1, "parsing "+series+" "+st.name, err)
			}
			p.section.Set(p.mode+"_"+series+"_"+st.name, value)
			block.Stats[st.name] = value
		}
	}
	p.res.Blocks = append(p.res.Blocks, block)
	return nil
}
