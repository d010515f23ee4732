// Package conv holds allocation-free numeric formatting for println-style
// firmware logging.
package conv

// Itoa formats n in decimal into buf, filling from the back, and returns the
// slice of buf actually used. A 20-byte buffer fits any int64; smaller
// buffers truncate high digits. The result aliases buf.
func Itoa(buf []byte, n int64) []byte {
	i := len(buf)
	if i == 0 {
		return buf
	}

	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	for {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
		if u == 0 || i == 0 {
			break
		}
	}
	if n < 0 && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
