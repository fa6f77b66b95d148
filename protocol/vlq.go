package protocol

import "errors"

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
)

// vlqMaxBytes is the longest encoding of a 32-bit value.
const vlqMaxBytes = 5

// EncodeVLQInt writes v as 7-bit groups, most significant first, with the
// high bit set on every byte but the last. The final byte's bit 6 carries
// the sign, so values in [-32, 96) fit in one byte.
func EncodeVLQInt(output OutputBuffer, v int32) {
	var buf [vlqMaxBytes]byte
	n := 0
	for shift := 28; shift >= 7; shift -= 7 {
		bound := int32(1) << (shift - 2)
		if n > 0 || v < -bound || v >= 3*bound {
			buf[n] = byte(v>>shift)&0x7F | 0x80
			n++
		}
	}
	buf[n] = byte(v) & 0x7F
	output.Output(buf[:n+1])
}

// EncodeVLQUint encodes v through its int32 bit pattern.
func EncodeVLQUint(output OutputBuffer, v uint32) {
	EncodeVLQInt(output, int32(v))
}

// DecodeVLQInt decodes one value and advances data past it. On error data
// is left untouched.
func DecodeVLQInt(data *[]byte) (int32, error) {
	buf := *data
	var v uint32
	for i, c := range buf {
		if i == 0 {
			v = uint32(c & 0x7F)
			if c&0x60 == 0x60 {
				v |= ^uint32(0x1F)
			}
		} else {
			v = v<<7 | uint32(c&0x7F)
		}
		if c&0x80 == 0 {
			*data = buf[i+1:]
			return int32(v), nil
		}
		if i == vlqMaxBytes-1 {
			return 0, ErrInvalidVLQ
		}
	}
	return 0, ErrBufferTooSmall
}

// DecodeVLQUint decodes a value written by EncodeVLQUint.
func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}
