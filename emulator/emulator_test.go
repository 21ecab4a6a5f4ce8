package emulator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/vnpu/cpu"
)

const (
	banner  = "VNPU => Initialization finished.\n"
	illegal = "VNPU => ERROR: An illegal instruction was provided.\n"
	exiting = "VNPU => Exiting with code 0\n"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(strings.NewReader(""), nil)
	defer emu.Close()

	assert.False(emu.Verbose)
	assert.False(emu.Prompt)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Output)
}

// doRun runs the input to completion, returning the output.
func doRun(t *testing.T, emu *Emulator, input []string) (output string, err error) {
	out := &bytes.Buffer{}
	emu.Input = strings.NewReader(strings.Join(input, "\n"))
	emu.Output = out
	defer emu.Close()

	emu.Reset()
	err = emu.Run(context.Background())

	output = out.String()
	return
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		input  []string
		output string
		halted bool
		err    error
	}){
		{"add", []string{"+ 3 4", "@ A"}, "7\n" + exiting, false, nil},
		{"mov", []string{"M 5 A", "@ A"}, "5\n" + exiting, false, nil},
		{"div0", []string{"/ 5 0", "@ A"}, illegal + exiting, true, cpu.ErrInvalidOperation},
		{"halt", []string{".", "@ A"}, exiting, true, nil},
		{"empty", []string{"", "M 2 B", "", "@ B", "."}, "2\n" + exiting, true, nil},
		{"unknown", []string{"x 1 2", "@ A"}, illegal + exiting, true, cpu.ErrMalformedInstruction},
		{"unresolvable", []string{"+ x 1", "@ A"}, illegal + exiting, true, cpu.ErrUnresolvableOperand},
		{"long", []string{"+ 1 2 3 4"}, illegal + exiting, true, cpu.ErrMalformedInstruction},
		{"huge", []string{strings.Repeat("x", 70000), "@ 1"}, illegal + exiting, true, cpu.ErrLineLength},
		{"crlf", []string{"M 4 A\r", "@ A\r"}, "4\n" + exiting, false, nil},
		{"eof", []string{"M 1 A"}, exiting, false, nil},
		{"compare", []string{"M 3 A", "M 3 B", "? A B", "@ A"}, "3\n" + exiting, false, nil},
		{"literal", []string{"@ z", "@ 4"}, "z\n4\n" + exiting, false, nil},
	}

	for _, entry := range table {
		emu := NewEmulator(nil, nil)
		output, err := doRun(t, emu, entry.input)
		if entry.err == nil {
			assert.NoError(err, entry.name)
		} else {
			assert.ErrorIs(err, entry.err, entry.name)
			var runtime *ErrRuntime
			if assert.True(errors.As(err, &runtime), entry.name) {
				assert.Equal(1, runtime.LineNo, entry.name)
				assert.Equal(entry.input[0], runtime.Line, entry.name)
			}
		}
		assert.Equal(entry.output, output, entry.name)
		assert.Equal(entry.halted, emu.Halted, entry.name)
	}
}

func TestEmulator_Prompt(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	emu.Prompt = true

	output, err := doRun(t, emu, []string{"M 5 A", "@ A", "."})
	assert.NoError(err)
	assert.Equal("> > 5\n> "+exiting, output)
}

func TestEmulator_Boot(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	emu.Boot = []string{"M 7 B", "+ B 1"}

	output, err := doRun(t, emu, []string{"@ A", "@ B"})
	assert.NoError(err)
	assert.Equal("8\n7\n"+exiting, output)
	assert.Equal(4, emu.LineNo)

	emu = NewEmulator(nil, nil)
	emu.Boot = []string{"/ 1 0"}
	output, err = doRun(t, emu, []string{"@ A"})
	assert.ErrorIs(err, cpu.ErrInvalidOperation)
	assert.Equal(illegal+exiting, output)

	emu = NewEmulator(nil, nil)
	emu.Boot = []string{"."}
	output, err = doRun(t, emu, []string{"@ A"})
	assert.NoError(err)
	assert.Equal(exiting, output)
}

func TestEmulator_Step(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator(nil, out)

	done, err := emu.Step("")
	assert.False(done)
	assert.NoError(err)

	done, err = emu.Step("* 9 9")
	assert.False(done)
	assert.NoError(err)
	assert.Equal(81, emu.AX.Value())
	assert.Equal(81, emu.Memory.Value())

	done, err = emu.Step("? 1")
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrMalformedInstruction)
	assert.True(emu.Halted)
	assert.Equal(illegal, out.String())
	assert.Equal(81, emu.AX.Value())

	done, err = emu.Step("M 1 A")
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrHalted)
	assert.Equal(3, emu.LineNo)
	assert.Equal(illegal, out.String())
}

func TestEmulator_Start(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		answer  string
		verbose bool
	}){
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"n", false},
		{"N", false},
		{"", false},
		{"x", false},
	}

	for _, entry := range table {
		out := &bytes.Buffer{}
		emu := NewEmulator(strings.NewReader(entry.answer+"\n"), out)

		err := emu.Start(context.Background(), true)
		assert.NoError(err, entry.answer)
		assert.Equal(entry.verbose, emu.Verbose, entry.answer)
		assert.Equal(entry.verbose, emu.Cpu.Verbose, entry.answer)
		assert.Equal(banner+"VNPU => Enable logging to console? (y/N)\n: ", out.String(), entry.answer)
		emu.Close()
	}

	// Verbosity already decided.
	out := &bytes.Buffer{}
	emu := NewEmulator(strings.NewReader("y\n"), out)
	defer emu.Close()
	err := emu.Start(context.Background(), false)
	assert.NoError(err)
	assert.False(emu.Verbose)
	assert.Equal(banner, out.String())

	// The answer line is not consumed as an instruction.
	emu = NewEmulator(strings.NewReader("n\n@ 3\n"), &bytes.Buffer{})
	defer emu.Close()
	require.NoError(t, emu.Start(context.Background(), true))
	assert.NoError(emu.Run(context.Background()))
	assert.Contains(emu.Output.(*bytes.Buffer).String(), "\n: 3\n")
}

func TestEmulator_StartInterrupt(t *testing.T) {
	assert := assert.New(t)

	question := banner + "VNPU => Enable logging to console? (y/N)\n: "
	intercepted := "\nVNPU => SIGINT intercepted.\n\t=> Exit? (y|Y[e|E[s|S]]/n|N[o|O]) "

	// Confirmed: halted, exit message, no error.
	interrupt := make(chan os.Signal, 1)
	interrupt <- os.Interrupt

	out := &bytes.Buffer{}
	emu := NewEmulator(strings.NewReader("y\n@ 1\n"), out)
	defer emu.Close()
	emu.Interrupt = interrupt

	err := emu.Start(context.Background(), true)
	assert.NoError(err)
	assert.True(emu.Halted)
	assert.False(emu.Verbose)
	assert.Equal(question+intercepted+exiting, out.String())

	// Declined: the next line answers the question.
	interrupt <- os.Interrupt

	out = &bytes.Buffer{}
	emu = NewEmulator(strings.NewReader("n\ny\n"), out)
	defer emu.Close()
	emu.Interrupt = interrupt

	err = emu.Start(context.Background(), true)
	assert.NoError(err)
	assert.False(emu.Halted)
	assert.True(emu.Verbose)
	assert.Equal(question+intercepted+"VNPU => Continuing execution.\n", out.String())
}

func TestEmulator_Closed(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator(strings.NewReader("M 1 A\nM 2 A\n@ A\n"), out)

	done, err := emu.Tick(context.Background())
	assert.False(done)
	assert.NoError(err)
	assert.NoError(emu.Close())

	// The rest of the input is never read.
	done, err = emu.Tick(context.Background())
	assert.True(done)
	assert.NoError(err)
	assert.Equal(1, emu.AX.Value())
	assert.Equal("", out.String())

	assert.NoError(emu.Close())
}

// interruptRun starts the emulator with a pending interrupt, feeding the
// input lines one at a time.
func interruptRun(t *testing.T, input []string, closeInput bool) (emu *Emulator, output string, err error) {
	pr, pw := io.Pipe()
	out := &bytes.Buffer{}

	interrupt := make(chan os.Signal, 1)
	interrupt <- os.Interrupt

	emu = NewEmulator(pr, out)
	emu.Interrupt = interrupt
	defer emu.Close()

	result := make(chan error, 1)
	go func() {
		result <- emu.Run(context.Background())
	}()

	for _, line := range input {
		_, werr := io.WriteString(pw, line+"\n")
		if werr != nil {
			break
		}
	}
	if closeInput {
		pw.Close()
	}

	select {
	case err = <-result:
	case <-time.After(10 * time.Second):
		t.Fatal("emulator did not halt")
	}
	pw.Close()

	output = out.String()
	return
}

func TestEmulator_InterruptContinue(t *testing.T) {
	assert := assert.New(t)

	emu, output, err := interruptRun(t, []string{"maybe", "No", "M 5 A", "@ A", "."}, false)
	assert.NoError(err)
	assert.Equal(strings.Join([]string{
		"\nVNPU => SIGINT intercepted.\n\t=> Exit? (y|Y[e|E[s|S]]/n|N[o|O]) ",
		"VNPU => Unknown option entered: \"maybe\"\n",
		"\nVNPU => SIGINT intercepted.\n\t=> Exit? (y|Y[e|E[s|S]]/n|N[o|O]) ",
		"VNPU => Continuing execution.\n",
		"5\n",
		exiting,
	}, ""), output)
	assert.Equal(5, emu.AX.Value())
	assert.True(emu.Halted)
}

func TestEmulator_InterruptExit(t *testing.T) {
	assert := assert.New(t)

	for _, answer := range []string{"y", "Y", "ye", "yE", "yes", "YeS", "YES"} {
		emu, output, err := interruptRun(t, []string{answer}, false)
		assert.NoError(err, answer)
		assert.True(emu.Halted, answer)
		assert.NotContains(output, "Continuing", answer)
		assert.True(strings.HasSuffix(output, exiting), answer)
	}
}

func TestEmulator_InterruptEOF(t *testing.T) {
	assert := assert.New(t)

	emu, output, err := interruptRun(t, nil, true)
	assert.NoError(err)
	assert.True(emu.Halted)
	assert.True(strings.HasSuffix(output, exiting))
}

func TestEmulator_InterruptLimit(t *testing.T) {
	assert := assert.New(t)

	var input []string
	for range CONFIRM_LIMIT {
		input = append(input, "what")
	}
	input = append(input, "M 2 B", "@ B", ".")

	emu, output, err := interruptRun(t, input, false)
	assert.NoError(err)
	assert.Equal(CONFIRM_LIMIT, strings.Count(output, "Unknown option"))
	assert.Equal(1, strings.Count(output, "Continuing execution"))
	assert.Equal(2, emu.BX.Value())
	assert.True(strings.HasSuffix(output, "2\n"+exiting))
}

func TestEmulator_Cancel(t *testing.T) {
	assert := assert.New(t)

	pr, pw := io.Pipe()
	defer pw.Close()

	out := &bytes.Buffer{}
	emu := NewEmulator(pr, out)
	defer emu.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal("", out.String())
}

func TestEmulator_Delay(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	emu.Delay = 5 * time.Millisecond

	start := time.Now()
	output, err := doRun(t, emu, []string{"@ 1", "@ 2"})
	assert.NoError(err)
	assert.Equal("1\n2\n"+exiting, output)
	assert.True(time.Since(start) >= 3*emu.Delay)
}

func TestErrRuntime(t *testing.T) {
	assert := assert.New(t)

	err := &ErrRuntime{LineNo: 3, Line: "/ 5 0", Err: cpu.ErrInvalidOperation}
	assert.Equal("line 3 '/ 5 0' invalid operation", err.Error())
	assert.ErrorIs(err, cpu.ErrInvalidOperation)
}
