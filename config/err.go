package config

import (
	"errors"

	"github.com/ezrec/pbrain/translate"
)

var f = translate.From

var (
	ErrRange              = errors.New(f("value out of range"))
	ErrSemaphoreName      = errors.New(f("semaphore name missing"))
	ErrSemaphoreDuplicate = errors.New(f("semaphore name duplicated"))
	ErrSemaphoreTable     = errors.New(f("semaphore table has no resource semaphores"))
)

// ErrKey locates a configuration error at its key.
type ErrKey struct {
	Key string
	Err error
}

func (err *ErrKey) Error() string {
	return f("%v: %v", err.Key, err.Err)
}

func (err *ErrKey) Unwrap() error {
	return err.Err
}
