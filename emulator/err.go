package emulator

import (
	"errors"

	"github.com/ezrec/vnpu/translate"
)

var f = translate.From

var (
	ErrInterrupted = errors.New(f("interrupted"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
