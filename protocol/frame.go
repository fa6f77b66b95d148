package protocol

import (
	"errors"
	"io"
)

// ErrFrameTooLong is returned when a payload does not fit in one frame.
var ErrFrameTooLong = errors.New("frame exceeds maximum message length")

// Message is one validated frame.
type Message struct {
	Length   uint8
	Sequence uint8  // low nibble only
	Payload  []byte // frame data without header/trailer
	CRC      uint16
}

// FrameWriter frames payloads onto a byte stream. The sequence advances on
// every frame written.
type FrameWriter struct {
	w   io.Writer
	seq uint8
	out ScratchOutput
}

// NewFrameWriter creates a FrameWriter writing to w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame encodes one frame with the payload produced by frameData.
func (f *FrameWriter) WriteFrame(frameData func(output OutputBuffer)) error {
	f.out.Reset()

	f.out.Output([]byte{0, MessageDest | f.seq})
	frameData(&f.out)

	length := f.out.Len() + MessageTrailerSize
	if f.out.Truncated() || length > MessageLengthMax {
		return ErrFrameTooLong
	}
	f.out.SetByte(MessagePositionLen, uint8(length))

	crc := CRC16(f.out.Result())
	f.out.Output([]byte{
		uint8(crc >> 8),
		uint8(crc),
		MessageValueSync,
	})

	f.seq = (f.seq + 1) & MessageSeqMask

	_, err := f.w.Write(f.out.Result())
	return err
}

// FrameReader pulls validated frames out of a byte stream, resynchronising
// on the 0x7E sync byte after corruption.
type FrameReader struct {
	r       io.Reader
	in      *RxBuffer
	chunk   []byte
	synced  bool
	resyncs uint32
}

// NewFrameReader creates a FrameReader reading from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:      r,
		in:     NewRxBuffer(1024),
		chunk:  make([]byte, 256),
		synced: true,
	}
}

// Next blocks until a full frame is available or the reader fails. Frames
// already buffered are returned before the read error.
func (f *FrameReader) Next() (*Message, error) {
	for {
		if msg := f.parse(); msg != nil {
			return msg, nil
		}
		n, err := f.r.Read(f.chunk)
		if n > 0 {
			f.in.Append(f.chunk[:n])
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

// Resyncs counts how many times the reader lost and found framing.
func (f *FrameReader) Resyncs() uint32 {
	return f.resyncs
}

// parse returns the next complete frame in the buffer, or nil.
func (f *FrameReader) parse() *Message {
	data := f.in.Bytes()
	defer func() {
		f.in.Consume(f.in.Len() - len(data))
	}()

	for len(data) > 0 {
		if !f.synced {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			f.synced = true
			f.resyncs++
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			f.synced = false
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			f.synced = false
			continue
		}

		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			f.synced = false
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			f.synced = false
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		msg := &Message{
			Length:   uint8(msgLen),
			Sequence: seq & MessageSeqMask,
			Payload:  payload,
			CRC:      frameCRC,
		}
		data = data[msgLen:]
		return msg
	}
	return nil
}
