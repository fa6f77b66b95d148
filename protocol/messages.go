package protocol

import (
	"errors"
	"strconv"

	"avrtimer/timer1"
)

// ErrUnknownMessage is returned by Decode for an unrecognised message ID.
var ErrUnknownMessage = errors.New("unknown message")

// DecodeError reports where Decode failed. Field is -1 for the message ID.
type DecodeError struct {
	ID    uint32
	Field int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field < 0 {
		return e.Err.Error() + ": id " + strconv.FormatUint(uint64(e.ID), 10)
	}
	return "message " + strconv.FormatUint(uint64(e.ID), 10) +
		" field " + strconv.Itoa(e.Field) + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Message IDs. The format strings document the argument order.
const (
	MsgEvent  = 1 // timer1_event kind=%c seq=%u count=%hu dropped=%u
	MsgConfig = 2 // timer1_config mode=%c prescaler=%c threshold=%hu cpu_hz=%u
)

// EventKind identifies the interrupt source behind an event.
type EventKind uint8

const (
	EventOverflow     EventKind = 1
	EventCompareMatch EventKind = 2
)

func (k EventKind) String() string {
	switch k {
	case EventOverflow:
		return "overflow"
	case EventCompareMatch:
		return "compare"
	}
	return "unknown"
}

// EventMessage reports one dispatched interrupt.
type EventMessage struct {
	Kind    EventKind
	Seq     uint32 // running event number, gaps mean lost events
	Counter uint16 // TCNT1 sampled in the handler
	Dropped uint32 // events the MCU could not queue so far
}

// Encode writes the message payload.
func (m *EventMessage) Encode(output OutputBuffer) {
	EncodeVLQUint(output, MsgEvent)
	EncodeVLQUint(output, uint32(m.Kind))
	EncodeVLQUint(output, m.Seq)
	EncodeVLQUint(output, uint32(m.Counter))
	EncodeVLQUint(output, m.Dropped)
}

// ConfigMessage reports how the timer was set up.
type ConfigMessage struct {
	Mode      timer1.Mode
	Prescaler timer1.Prescaler
	Threshold uint16
	CPUHz     uint32
}

// Encode writes the message payload.
func (m *ConfigMessage) Encode(output OutputBuffer) {
	EncodeVLQUint(output, MsgConfig)
	EncodeVLQUint(output, uint32(m.Mode))
	EncodeVLQUint(output, uint32(m.Prescaler))
	EncodeVLQUint(output, uint32(m.Threshold))
	EncodeVLQUint(output, m.CPUHz)
}

// Decode parses a frame payload into *EventMessage or *ConfigMessage.
func Decode(payload []byte) (any, error) {
	data := payload
	id, err := DecodeVLQUint(&data)
	if err != nil {
		return nil, err
	}
	if id != MsgEvent && id != MsgConfig {
		return nil, &DecodeError{ID: id, Field: -1, Err: ErrUnknownMessage}
	}

	var fields [4]uint32
	for i := range fields {
		if fields[i], err = DecodeVLQUint(&data); err != nil {
			return nil, &DecodeError{ID: id, Field: i, Err: err}
		}
	}

	switch id {
	case MsgEvent:
		return &EventMessage{
			Kind:    EventKind(fields[0]),
			Seq:     fields[1],
			Counter: uint16(fields[2]),
			Dropped: fields[3],
		}, nil
	default:
		return &ConfigMessage{
			Mode:      timer1.Mode(fields[0]),
			Prescaler: timer1.Prescaler(fields[1]),
			Threshold: uint16(fields[2]),
			CPUHz:     fields[3],
		}, nil
	}
}
