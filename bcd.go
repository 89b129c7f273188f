package main

import (
	"strconv"
	"strings"
)

// The frequency field is always 5 bytes / 10 digits wide.
const freqBCDLen = 5
const maxFreq = 9999999999

// decodeFreqDigits returns the decimal digits held in a BCD frequency field.
// Bytes are read from the last one toward the first, high nibble first, so
// the field's least significant digits live in the first byte. Nibbles above
// 9 are rendered as hex letters, which makes the result fail freqFromDigits.
func decodeFreqDigits(d []byte) string {
	if len(d) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := len(d) - 1; i >= 0; i-- {
		sb.WriteByte(nibbleChar(d[i] >> 4))
		sb.WriteByte(nibbleChar(d[i] & 0x0f))
	}

	digits := strings.TrimLeft(sb.String(), "0")
	if digits == "" {
		return "0"
	}
	return digits
}

// nibbleChar renders a BCD nibble. Values above 9 come out as a-f.
func nibbleChar(n byte) byte {
	if n <= 9 {
		return '0' + n
	}
	return 'a' + n - 10
}

// freqFromDigits converts a decoded digit string to Hz.
func freqFromDigits(digits string) (uint64, error) {
	return strconv.ParseUint(digits, 10, 64)
}

// encodeFreqData packs f into the 5 byte BCD frequency field. Only the lowest
// 10 decimal digits are kept; callers must cap f at maxFreq.
func encodeFreqData(f uint64) (b [freqBCDLen]byte) {
	for i := 0; i < freqBCDLen; i++ {
		lo := byte(f % 10)
		f /= 10
		hi := byte(f % 10)
		f /= 10
		b[i] = hi<<4 | lo
	}
	return
}
