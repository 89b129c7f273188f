package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const freqFracDigits = 6 // MHz to Hz

var errEmptyFreq = errors.New("empty frequency")

// parseFreqString converts a MHz value like "145.500", "7.1" or ".5" to Hz.
// Non-digits in the fraction are dropped, digits past the 6th are ignored.
func parseFreqString(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyFreq
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return -1
		}
		return r
	}, fracPart)
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}

	var mhz uint64
	if intPart != "" {
		var err error
		if mhz, err = strconv.ParseUint(intPart, 10, 64); err != nil {
			return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
		}
	}

	if len(fracPart) > freqFracDigits {
		fracPart = fracPart[:freqFracDigits]
	}
	fracPart += strings.Repeat("0", freqFracDigits-len(fracPart))
	hz, err := strconv.ParseUint(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}

	if mhz > maxFreq/1000000 || mhz*1000000+hz > maxFreq {
		return 0, fmt.Errorf("frequency %q out of range", s)
	}
	return mhz*1000000 + hz, nil
}

// freqOrPrevious parses s, falling back to prev with a warning.
func freqOrPrevious(log *zap.SugaredLogger, s string, prev uint64) (uint64, bool) {
	f, err := parseFreqString(s)
	if err != nil {
		log.Warnw("ignoring frequency", "input", s, "error", err, "freq", prev)
		return prev, false
	}
	return f, true
}
