// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads VNPU settings from a Starlark configuration script.
//
// A configuration script assigns any of these globals:
//
//	verbose = True             # enable verbose logging
//	prompt = True              # print '> ' before each instruction
//	delay_ms = 1000            # pause before each instruction
//	boot = ["M 5 A", "M 2 B"]  # instructions run before any input
//
// The cpu defines (WORD_SIZE, MEMORY_SIZE, INSTR_LEN_LIMIT) are predeclared.
// Globals starting with an underscore are private to the script.
package config

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/vnpu/cpu"
)

// Config holds the VNPU settings.
type Config struct {
	Verbose    bool          // Enable verbose logging.
	VerboseSet bool          // Verbose was decided; do not ask at startup.
	Prompt     bool          // Print a prompt before each read.
	Delay      time.Duration // Pause before each instruction.
	Boot       []string      // Instruction lines executed before any input.
}

// predeclared returns the names available to a configuration script.
func predeclared() (pred starlark.StringDict) {
	pred = starlark.StringDict{}
	for key, str := range cpu.NewCpu(nil).Defines() {
		value, err := strconv.Atoi(str)
		if err != nil {
			continue
		}
		pred[key] = starlark.MakeInt(value)
	}

	return
}

// Load evaluates a configuration script, and applies its settings.
// If src is nil, the script is read from filename.
func (cfg *Config) Load(filename string, src any) (err error) {
	thread := &starlark.Thread{
		Name: "config",
		Print: func(_ *starlark.Thread, msg string) {
			log.Printf("%v: %v", filename, msg)
		},
	}
	opts := syntax.FileOptions{TopLevelControl: true}

	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, predeclared())
	if err != nil {
		return
	}

	for _, name := range globals.Keys() {
		err = cfg.set(name, globals[name])
		if err != nil {
			return
		}
	}

	return
}

// set applies a single configuration setting.
func (cfg *Config) set(name string, value starlark.Value) (err error) {
	defer func() {
		if err != nil {
			err = &ErrConfig{Name: name, Err: err}
		}
	}()

	switch name {
	case "verbose":
		cfg.Verbose, err = asBool(value)
		cfg.VerboseSet = err == nil
	case "prompt":
		cfg.Prompt, err = asBool(value)
	case "delay_ms":
		var ms int
		err = starlark.AsInt(value, &ms)
		if err != nil {
			return ErrConfigType
		}
		if ms < 0 {
			return ErrConfigValue
		}
		cfg.Delay = time.Duration(ms) * time.Millisecond
	case "boot":
		cfg.Boot, err = asBoot(value)
	default:
		if strings.HasPrefix(name, "_") {
			return
		}
		err = ErrConfigUnknown(name)
	}

	return
}

func asBool(value starlark.Value) (b bool, err error) {
	sb, ok := value.(starlark.Bool)
	if !ok {
		err = ErrConfigType
		return
	}

	b = bool(sb)
	return
}

// asBoot converts a sequence of strings into instruction lines,
// each of which must decode. Empty lines are dropped.
func asBoot(value starlark.Value) (lines []string, err error) {
	seq, ok := value.(starlark.Iterable)
	if !ok {
		err = ErrConfigType
		return
	}

	iter := seq.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		str, ok := starlark.AsString(item)
		if !ok {
			err = ErrConfigType
			return
		}
		_, err = cpu.Decode(str)
		if errors.Is(err, cpu.ErrEmptyLine) {
			err = nil
			continue
		}
		if err != nil {
			return
		}
		lines = append(lines, str)
	}

	return
}
