package io

import (
	"errors"

	"github.com/ezrec/opvm/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrNoInput  = errors.New(f("tape has no input"))
	ErrNoOutput = errors.New(f("tape has no output"))
)
