package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Tape reads whitespace separated decimal integers from Input and writes
// decimal integers to Output. Written values carry no separator.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
	buffer []byte
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape, but any read-ahead is discarded so a
// new Input may be attached.
func (tc *Tape) Rewind() {
	tc.reader = nil
}

// Receive scans the next integer from the input stream.
func (tc *Tape) Receive() (value int32, err error) {
	if tc.Input == nil {
		err = ErrNoInput
		return
	}

	if tc.reader == nil {
		tc.reader = bufio.NewReader(tc.Input)
	}

	_, err = fmt.Fscan(tc.reader, &value)
	return
}

// Send writes the decimal form of value to the output stream.
func (tc *Tape) Send(value int32) (err error) {
	if tc.Output == nil {
		err = ErrNoOutput
		return
	}

	tc.buffer = strconv.AppendInt(tc.buffer[:0], int64(value), 10)
	_, err = tc.Output.Write(tc.buffer)

	return
}
