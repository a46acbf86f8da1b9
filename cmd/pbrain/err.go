package main

import (
	"errors"

	"github.com/ezrec/pbrain/translate"
)

var f = translate.From

var (
	ErrNoPrograms   = errors.New(f("no programs queued"))
	ErrReportFormat = errors.New(f("report format unknown"))
	ErrCommand      = errors.New(f("command unknown"))
	ErrArgument     = errors.New(f("argument invalid"))
)
