// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ezrec/vnpu/cpu"
)

const (
	CONFIRM_LIMIT = 8 // Attempts at answering the interrupt confirmation.
)

// inputLine is a single line read from the input, or the read error.
type inputLine struct {
	text string
	err  error
}

// Emulator state. CPU + console.
type Emulator struct {
	Verbose  bool          // If set, enables verbose logging.
	*cpu.Cpu               // Reference to the CPU simulation.
	Prompt   bool          // If set, prints a prompt before each read.
	Delay    time.Duration // Pause before each instruction.
	Boot     []string      // Instruction lines executed before any input.

	Input     io.Reader        // Instruction input.
	Interrupt <-chan os.Signal // Interrupt notifications, may be nil.

	LineNo int // Lines executed since reset.

	lines  chan inputLine
	quit   chan struct{}
	closed bool
}

// NewEmulator creates a new emulator reading instructions from the
// input, and writing to the output.
func NewEmulator(input io.Reader, output io.Writer) (emu *Emulator) {
	emu = &Emulator{
		Cpu:   cpu.NewCpu(output),
		Input: input,
	}

	return
}

// Close the emulator, and stop reading the input.
// After Close, the input reads as ended.
func (emu *Emulator) Close() (err error) {
	if emu.quit != nil {
		close(emu.quit)
		emu.quit = nil
		emu.lines = nil
	}
	emu.closed = true

	return
}

// Reset the emulator state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.LineNo = 0
}

// printf writes a translated message to the output.
func (emu *Emulator) printf(key string, args ...any) {
	fmt.Fprint(emu.Output, f(key, args...))
}

// receive waits for the next input line. If interrupt is not nil,
// interrupts are confirmed while waiting.
func (emu *Emulator) receive(ctx context.Context, interrupt <-chan os.Signal) (line string, err error) {
	if emu.closed {
		err = io.EOF
		return
	}

	if emu.lines == nil {
		emu.lines = make(chan inputLine)
		emu.quit = make(chan struct{})
		go readLines(emu.Input, emu.lines, emu.quit)
	}

	for {
		// A pending interrupt is handled before pending input.
		select {
		case <-interrupt:
			err = emu.interrupted(ctx)
			if err != nil {
				return
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-interrupt:
			err = emu.interrupted(ctx)
			if err != nil {
				return
			}
		case in, ok := <-emu.lines:
			if !ok {
				err = io.EOF
				return
			}
			line, err = in.text, in.err
			return
		}
	}
}

// interrupted confirms an interrupt, and halts the emulator if confirmed.
func (emu *Emulator) interrupted(ctx context.Context) (err error) {
	exit, err := emu.confirm(ctx)
	if err != nil {
		return
	}

	if exit {
		emu.Cpu.Halted = true
		return ErrInterrupted
	}

	if emu.Prompt {
		emu.printf("> ")
	}

	return
}

// readLines sends each line of the input, until end of input or quit.
// Lines of any length are sent whole; the decoder rejects long lines.
func readLines(input io.Reader, lines chan<- inputLine, quit <-chan struct{}) {
	defer close(lines)

	reader := bufio.NewReader(input)
	for {
		text, err := reader.ReadString('\n')
		if len(text) > 0 {
			text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
			select {
			case lines <- inputLine{text: text}:
			case <-quit:
				return
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			select {
			case lines <- inputLine{err: err}:
			case <-quit:
			}
			return
		}
	}
}

// confirm asks whether to exit after an interrupt.
func (emu *Emulator) confirm(ctx context.Context) (exit bool, err error) {
	if emu.Verbose {
		log.Printf("vnpu: interrupt")
	}

	for range CONFIRM_LIMIT {
		emu.printf("\nVNPU => SIGINT intercepted.\n\t=> Exit? (y|Y[e|E[s|S]]/n|N[o|O]) ")

		var answer string
		answer, err = emu.receive(ctx, nil)
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return
		}

		answer = strings.TrimSpace(answer)
		switch strings.ToLower(answer) {
		case "y", "ye", "yes":
			return true, nil
		case "n", "no":
			emu.printf("VNPU => Continuing execution.\n")
			return false, nil
		}

		emu.printf("VNPU => Unknown option entered: \"%v\"\n", answer)
	}

	emu.printf("VNPU => Continuing execution.\n")

	return
}

// exit prints the exit message.
func (emu *Emulator) exit() {
	if emu.Verbose {
		log.Printf("vnpu: exiting with code 0")
	}
	emu.printf("VNPU => Exiting with code 0\n")
}

// Start prints the start banner, and when ask is set, asks whether to
// enable verbose logging.
//
// A confirmed interrupt while asking halts the emulator.
func (emu *Emulator) Start(ctx context.Context, ask bool) (err error) {
	emu.printf("VNPU => Initialization finished.\n")

	if ask {
		emu.printf("VNPU => Enable logging to console? (y/N)\n: ")

		var answer string
		answer, err = emu.receive(ctx, emu.Interrupt)
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if errors.Is(err, ErrInterrupted) {
			emu.exit()
			return nil
		}
		if err != nil {
			return
		}

		answer = strings.TrimSpace(answer)
		emu.Verbose = len(answer) > 0 && (answer[0] == 'y' || answer[0] == 'Y')
	}

	emu.Cpu.Verbose = emu.Verbose

	if emu.Verbose {
		log.Printf("vnpu: entered phase 1 of runtime")
	}

	return
}

// Step decodes and executes a single instruction line.
// Empty lines are ignored.
func (emu *Emulator) Step(line string) (done bool, err error) {
	if emu.Cpu.Halted {
		return true, cpu.ErrHalted
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.LineNo++

	lineno := emu.LineNo
	defer func() {
		if err != nil {
			emu.Cpu.Halted = true
			done = true
			err = &ErrRuntime{LineNo: lineno, Line: line, Err: err}
			emu.printf("VNPU => ERROR: An illegal instruction was provided.\n")
			if emu.Verbose {
				log.Printf("vnpu: %v", err)
			}
		}
	}()

	inst, err := cpu.Decode(line)
	if errors.Is(err, cpu.ErrEmptyLine) {
		err = nil
		return
	}
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("vnpu: %d: decoded %v", lineno, inst)
	}

	done, err = emu.Cpu.Execute(inst)
	if emu.Verbose && err == nil {
		log.Printf("vnpu: state\n%v", emu.Cpu)
	}

	return
}

// Tick waits for the next line of input, and executes it.
// End of input halts the emulator.
func (emu *Emulator) Tick(ctx context.Context) (done bool, err error) {
	if emu.Delay > 0 {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case <-time.After(emu.Delay):
		}
	}

	if emu.Verbose {
		log.Printf("vnpu: waiting for instructions")
	}

	if emu.Prompt {
		emu.printf("> ")
	}

	line, err := emu.receive(ctx, emu.Interrupt)
	if errors.Is(err, io.EOF) {
		if emu.Verbose {
			log.Printf("vnpu: end of input")
		}
		return true, nil
	}
	if err != nil {
		return true, err
	}

	return emu.Step(line)
}

// Run executes the boot lines, then the input, until the emulator halts.
//
// Returns nil on a halt instruction, end of input, or a confirmed
// interrupt; returns *ErrRuntime if an instruction failed.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	defer func() {
		if errors.Is(err, ErrInterrupted) {
			err = nil
		}
		var runtime *ErrRuntime
		if err != nil && !errors.As(err, &runtime) {
			return
		}
		emu.exit()
	}()

	for _, line := range emu.Boot {
		var done bool
		done, err = emu.Step(line)
		if done {
			return
		}
	}

	for done := false; !done; {
		done, err = emu.Tick(ctx)
	}

	return
}
