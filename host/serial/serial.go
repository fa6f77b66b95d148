// Package serial opens the USART link to the board.
package serial

import "io"

// Port is the byte stream carrying telemetry frames.
type Port = io.ReadWriteCloser

// DefaultBaud is the ATmega32 USART rate the firmware programs
// (UBRR = 25 at 16 MHz).
const DefaultBaud = 38400

// Config describes the host side of the link.
type Config struct {
	Device string // e.g. "/dev/ttyUSB0", "COM3"
	Baud   int

	// ReadTimeout bounds a single read in milliseconds; 0 blocks.
	ReadTimeout int
}

// DefaultConfig returns settings matching the firmware.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
