// Package io provides the I/O channels used by the IN and OUT opcodes of
// the opvm machine.
package io

// Channel is the integer stream seen by a running program.
type Channel interface {
	// Rewind drops any buffered state of the channel.
	Rewind()
	// Receive reads the next integer from the channel.
	Receive() (value int32, err error)
	// Send writes an integer to the channel.
	Send(value int32) error
}
