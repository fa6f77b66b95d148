// Package protocol frames Timer1 telemetry for a serial link.
//
// The framing follows the Klipper wire format: a length byte, a sequence
// byte, a VLQ-encoded payload, a CRC16 and a 0x7E sync byte. Traffic is one
// way, MCU to host, so there are no ACKs and no retransmission; the
// sequence nibble only lets the reader count lost frames.
package protocol

// Version is the telemetry protocol version
const Version = "0.1.0"

// Frame layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	MessageSeqMask = 0x0F
)
