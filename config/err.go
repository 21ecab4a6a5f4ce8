package config

import (
	"errors"

	"github.com/ezrec/vnpu/translate"
)

var f = translate.From

var (
	ErrConfigType  = errors.New(f("wrong type"))
	ErrConfigValue = errors.New(f("invalid value"))
)

// ErrConfigUnknown is an unrecognized configuration setting.
type ErrConfigUnknown string

func (err ErrConfigUnknown) Error() string {
	return f("'%v' is not a configuration setting", string(err))
}

// ErrConfig locates an error in a configuration setting.
type ErrConfig struct {
	Name string
	Err  error
}

func (err *ErrConfig) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
