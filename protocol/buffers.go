package protocol

// OutputBuffer receives encoded bytes.
type OutputBuffer interface {
	Output(data []byte)
}

// ScratchOutput holds one frame in a fixed array so encoding never
// allocates on the MCU. Bytes past the end are dropped and the buffer is
// marked truncated.
type ScratchOutput struct {
	buf       [MessageLengthMax]byte
	n         int
	truncated bool
}

// NewScratchOutput creates an empty ScratchOutput.
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	c := copy(s.buf[s.n:], data)
	s.n += c
	if c < len(data) {
		s.truncated = true
	}
}

// Len is the number of bytes held.
func (s *ScratchOutput) Len() int {
	return s.n
}

// SetByte patches a byte that was already written; other positions are
// ignored.
func (s *ScratchOutput) SetByte(pos int, v byte) {
	if pos >= 0 && pos < s.n {
		s.buf[pos] = v
	}
}

// Truncated reports whether any Output since the last Reset was cut short.
func (s *ScratchOutput) Truncated() bool {
	return s.truncated
}

// Result returns the bytes held. The slice is reused after Reset.
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.n]
}

func (s *ScratchOutput) Reset() {
	s.n = 0
	s.truncated = false
}

// RxBuffer accumulates received bytes until whole frames can be parsed.
// Consumed bytes are reclaimed on the next Append.
type RxBuffer struct {
	buf   []byte
	start int
}

// NewRxBuffer creates an RxBuffer with room for size bytes before it
// has to grow.
func NewRxBuffer(size int) *RxBuffer {
	return &RxBuffer{buf: make([]byte, 0, size)}
}

// Append adds data after the unconsumed bytes.
func (b *RxBuffer) Append(data []byte) {
	if b.start > 0 {
		n := copy(b.buf, b.buf[b.start:])
		b.buf = b.buf[:n]
		b.start = 0
	}
	b.buf = append(b.buf, data...)
}

// Bytes returns the unconsumed bytes. The slice is valid until the next
// Append.
func (b *RxBuffer) Bytes() []byte {
	return b.buf[b.start:]
}

// Len is the number of unconsumed bytes.
func (b *RxBuffer) Len() int {
	return len(b.buf) - b.start
}

// Consume drops n bytes from the front.
func (b *RxBuffer) Consume(n int) {
	if n > b.Len() {
		n = b.Len()
	}
	b.start += n
}

func (b *RxBuffer) Reset() {
	b.buf = b.buf[:0]
	b.start = 0
}
