package smf

import (
	"github.com/pkg/errors"
)

// MaxVLQ is the largest value a variable-length quantity may hold.
const MaxVLQ = 0x0FFFFFFF

// VLQ errors
var (
	ErrVLQOverflow  = errors.New("variable-length quantity overflow")
	ErrVLQTruncated = errors.New("variable-length quantity cut short")
)

// AppendVLQ appends v as a variable-length quantity: seven bits per byte,
// most significant first, with the top bit set on every byte but the last.
func AppendVLQ(dst []byte, v uint32) ([]byte, error) {
	if v > MaxVLQ {
		return dst, errors.Wrapf(ErrVLQOverflow, "0x%X", v)
	}
	var buf [4]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, buf[i:]...), nil
}

// ReadVLQ decodes a variable-length quantity from the start of b and returns
// it with the number of bytes it took.
func ReadVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		if i >= len(b) {
			return 0, 0, ErrVLQTruncated
		}
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrVLQOverflow
}
