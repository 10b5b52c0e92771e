// Package derive adds computed columns, e.g., average device power, to parsed
// benchmark records.
package derive

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"embed"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"freqlog/internal/logparse"

	"github.com/casbin/govaluate"
	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v2"
)

//go:embed resources
var resources embed.FS

const modePlaceholder = "{mode}"

// Definition is one derived column as written in the definition file.
type Definition struct {
	Name       string                         `yaml:"name"`
	Expression string                         `yaml:"expression"`
	Variables  mapset.Set[string]             `yaml:"-"` // parsed from Expression
	Evaluable  *govaluate.EvaluableExpression `yaml:"-"` // parse expression once, store here for use in evaluation
}

// LoadDefinitions reads derived column definitions from the override path or,
// when the path is empty, from the embedded defaults. Definitions that use the
// mode placeholder are expanded once per mode and all expressions are compiled.
func LoadDefinitions(overridePath string) (defs []Definition, err error) {
	var bytes []byte
	if overridePath != "" {
		if bytes, err = os.ReadFile(overridePath); err != nil { // #nosec G304
			err = fmt.Errorf("failed to read derived column definitions: %w", err)
			return
		}
	} else {
		if bytes, err = resources.ReadFile("resources/derived.yaml"); err != nil {
			return
		}
	}
	var defsInFile []Definition
	if err = yaml.UnmarshalStrict(bytes, &defsInFile); err != nil {
		err = fmt.Errorf("failed to parse derived column definitions: %w", err)
		return
	}
	names := mapset.NewThreadUnsafeSet[string]()
	for _, def := range expandModes(defsInFile) {
		if def.Name == "" || def.Expression == "" {
			err = fmt.Errorf("derived column definition needs a name and an expression: %+v", def)
			return
		}
		if !names.Add(def.Name) {
			err = fmt.Errorf("derived column defined more than once: %s", def.Name)
			return
		}
		if def.Evaluable, err = govaluate.NewEvaluableExpressionWithFunctions(def.Expression, getEvaluatorFunctions()); err != nil {
			err = fmt.Errorf("failed to compile expression for %s: %w", def.Name, err)
			return
		}
		def.Variables = mapset.NewThreadUnsafeSet(def.Evaluable.Vars()...)
		defs = append(defs, def)
	}
	slog.Debug("loaded derived column definitions", slog.Int("count", len(defs)), slog.String("path", overridePath))
	return
}

// expandModes replaces the mode placeholder in names and expressions, producing
// one definition per mode. Definitions without the placeholder are kept as is.
func expandModes(defs []Definition) (expanded []Definition) {
	for _, def := range defs {
		if !strings.Contains(def.Name, modePlaceholder) && !strings.Contains(def.Expression, modePlaceholder) {
			expanded = append(expanded, def)
			continue
		}
		for _, mode := range logparse.Modes {
			expanded = append(expanded, Definition{
				Name:       strings.ReplaceAll(def.Name, modePlaceholder, mode),
				Expression: strings.ReplaceAll(def.Expression, modePlaceholder, mode),
			})
		}
	}
	return
}

// Apply evaluates the definitions against every record of the result and stores
// the values as new fields. A definition is skipped for a record that lacks one
// of its variables or when the value is not a finite number. Apply returns the
// number of values added.
func Apply(res *logparse.Result, defs []Definition) (added int, err error) {
	for _, rec := range res.Records {
		values := rec.Values()
		fields := mapset.NewThreadUnsafeSetFromMapKeys(values)
		parameters := make(map[string]any, len(values))
		for name, value := range values {
			parameters[name] = value
		}
		for _, def := range defs {
			if !def.Variables.IsSubset(fields) {
				continue
			}
			var result any
			if result, err = def.Evaluable.Evaluate(parameters); err != nil {
				err = fmt.Errorf("failed to evaluate %s for section %d: %w", def.Name, rec.Key, err)
				return
			}
			value, ok := result.(float64)
			if !ok {
				err = fmt.Errorf("expression for %s does not produce a number: %v", def.Name, result)
				return
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				slog.Debug("skipping non-finite derived value", slog.String("name", def.Name), slog.Int("section", rec.Key))
				continue
			}
			rec.Set(def.Name, value)
			// later definitions may refer to this one
			parameters[def.Name] = value
			fields.Add(def.Name)
			added++
		}
	}
	return
}

// getEvaluatorFunctions defines functions that can be called in expressions
func getEvaluatorFunctions() (functions map[string]govaluate.ExpressionFunction) {
	functions = make(map[string]govaluate.ExpressionFunction)
	functions["max"] = func(args ...any) (any, error) {
		leftVal, rightVal, err := twoFloats("max", args)
		if err != nil {
			return nil, err
		}
		return max(leftVal, rightVal), nil
	}
	functions["min"] = func(args ...any) (any, error) {
		leftVal, rightVal, err := twoFloats("min", args)
		if err != nil {
			return nil, err
		}
		return min(leftVal, rightVal), nil
	}
	return
}

func twoFloats(name string, args []any) (leftVal, rightVal float64, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		return
	}
	vals := make([]float64, 2)
	for i, arg := range args {
		switch t := arg.(type) {
		case int:
			vals[i] = float64(t)
		case float64:
			vals[i] = t
		default:
			err = fmt.Errorf("%s expects numeric arguments, got %T", name, arg)
			return
		}
	}
	return vals[0], vals[1], nil
}
