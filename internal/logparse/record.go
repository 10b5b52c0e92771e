package logparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Record holds the fields accumulated for one section key.
type Record struct {
	Key    int
	names  []string // insertion order
	values map[string]float64
}

func newRecord(keyColumn string, key int) *Record {
	r := &Record{Key: key, values: make(map[string]float64)}
	r.Set(keyColumn, float64(key))
	return r
}

// Set stores value under name. An existing field keeps its position.
func (r *Record) Set(name string, value float64) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value stored under name, if any.
func (r *Record) Get(name string) (float64, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Fields returns the field names in the order they were first set.
func (r *Record) Fields() []string {
	return r.names
}

// Values returns a copy of the record's fields.
func (r *Record) Values() map[string]float64 {
	out := make(map[string]float64, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Block is a statistic block as it appeared in the log.
type Block struct {
	Line    int // line number of the announcement
	Section int
	Mode    string
	Series  string
	Samples string             // raw text between the brackets
	Stats   map[string]float64 // keyed by statistic name, e.g., "Median"
}

// Result is the outcome of parsing one log.
type Result struct {
	Variant *Variant
	Records []*Record // in order of first appearance
	Blocks  []Block
	Lines   int
	index   map[int]*Record
}

func newResult(v *Variant) *Result {
	return &Result{Variant: v, index: make(map[int]*Record)}
}

// section returns the record for key, creating it on first use.
func (res *Result) section(key int) *Record {
	if rec, ok := res.index[key]; ok {
		return rec
	}
	rec := newRecord(res.Variant.KeyColumn, key)
	res.index[key] = rec
	res.Records = append(res.Records, rec)
	return rec
}

// Record returns the record for the section key, or nil.
func (res *Result) Record(key int) *Record {
	return res.index[key]
}

// Columns returns the union of all field names, in order of first appearance.
func (res *Result) Columns() []string {
	var columns []string
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, rec := range res.Records {
		for _, name := range rec.names {
			if seen.Add(name) {
				columns = append(columns, name)
			}
		}
	}
	return columns
}
