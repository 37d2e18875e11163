package sysex

// Checksum computes the Roland checksum of span: the value that brings the
// sum of span plus the checksum to a multiple of 128. The result is always a
// data byte.
func Checksum(span []byte) byte {
	return byte((128 - int(sum7(span))) & 0x7F)
}

// ChecksumValid reports whether span, whose last byte is a checksum, sums to
// zero modulo 128.
func ChecksumValid(span []byte) bool {
	return len(span) > 0 && sum7(span) == 0
}

func sum7(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum = (sum + v) & 0x7F
	}
	return sum
}
