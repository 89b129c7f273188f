package main

import "fmt"

type civOperatingMode struct {
	name string
	code byte
}

var civOperatingModes = []civOperatingMode{
	{name: "LSB", code: 0x00},
	{name: "USB", code: 0x01},
	{name: "AM", code: 0x02},
	{name: "CW", code: 0x03},
	{name: "RTTY", code: 0x04},
	{name: "FM", code: 0x05},
	{name: "WFM", code: 0x06},
	{name: "AM-N", code: 0x12},
	{name: "FM-N", code: 0x15},
	{name: "P25", code: 0x16},
	{name: "DV", code: 0x17},
	{name: "D-STAR Data", code: 0x18},
	{name: "NXDN-N", code: 0x19},
	{name: "S-AM(d)", code: 0x1a},
	{name: "dPMR", code: 0x1b},
	{name: "NXDN-VN", code: 0x1c},
}

// civMode is a decoded mode byte. Codes missing from civOperatingModes are
// kept as they arrived so they can still be shown.
type civMode struct {
	code  byte
	idx   int // into civOperatingModes, -1 when unknown
	valid bool
}

// decodeModeCode looks up a mode code. Codes missing from the table are
// kept, they are displayed as Unknown(code).
func decodeModeCode(code byte) civMode {
	for i := range civOperatingModes {
		if civOperatingModes[i].code == code {
			return civMode{code: code, idx: i, valid: true}
		}
	}
	return civMode{code: code, idx: -1, valid: true}
}

// known reports whether the mode was received and is in the table.
func (m civMode) known() bool {
	return m.valid && m.idx >= 0
}

func (m civMode) String() string {
	switch {
	case !m.valid:
		return "?"
	case m.idx < 0:
		return fmt.Sprintf("Unknown(0x%02x)", m.code)
	}
	return civOperatingModes[m.idx].name
}

var civFilterNames = [4]string{"Wide", "Narrow", "Mid", "Auto"}

type civFilter struct {
	code  byte
	valid bool
}

// decodeFilterCode keeps any code, known() tells if it has a name.
func decodeFilterCode(code byte) civFilter {
	return civFilter{code: code, valid: true}
}

func (f civFilter) known() bool {
	return f.valid && int(f.code) < len(civFilterNames)
}

func (f civFilter) String() string {
	switch {
	case !f.valid:
		return "?"
	case !f.known():
		return fmt.Sprintf("Unknown(0x%02x)", f.code)
	}
	return civFilterNames[f.code]
}

// tuningSteps is the canonical step table, in Hz.
var tuningSteps = []uint64{
	1, 10, 100, 1000, 5000, 6250, 8330, 9000, 10000,
	12500, 20000, 25000, 30000, 50000, 100000, 200000, 500000,
}

// Step report codes index tuningSteps directly. The trailing zero entry is
// the sentinel for codes the receiver reports but we can't map.
var civStepCodes = append(append([]uint64{}, tuningSteps...), 0)

const stepUnknown = -1

// stepIdxForCode maps a step report code to an index into tuningSteps.
func stepIdxForCode(code byte) int {
	if int(code) >= len(civStepCodes) || civStepCodes[code] == 0 {
		return stepUnknown
	}
	return int(code)
}

// stepIdxForValue returns the index of the step of exactly v Hz.
func stepIdxForValue(v uint64) int {
	for i := range tuningSteps {
		if tuningSteps[i] == v {
			return i
		}
	}
	return stepUnknown
}

// wrapStepIdx moves idx by delta, wrapping around the ends of tuningSteps.
func wrapStepIdx(idx, delta int) int {
	n := len(tuningSteps)
	return ((idx+delta)%n + n) % n
}

// formatStep prints a step in Hz, or kHz with no trailing zeros from 1 kHz up.
func formatStep(ts uint64) string {
	if ts >= 1000 {
		switch {
		case ts%1000 == 0:
			return fmt.Sprintf("%dk", ts/1000)
		case ts%100 == 0:
			return fmt.Sprintf("%d.%dk", ts/1000, ts%1000/100)
		default:
			return fmt.Sprintf("%d.%02dk", ts/1000, ts%1000/10)
		}
	}
	return fmt.Sprint(ts)
}

// rxModeCycle is the order the knob walks receive modes in.
var rxModeCycle = []civOperatingMode{
	{name: "FM", code: 0x05},
	{name: "AM", code: 0x02},
	{name: "USB", code: 0x01},
	{name: "LSB", code: 0x00},
	{name: "WFM", code: 0x06},
	{name: "CW", code: 0x03},
	{name: "DV", code: 0x17},
}

// rxModeCycleIdx returns the position of code in rxModeCycle, or -1.
func rxModeCycleIdx(code byte) int {
	for i := range rxModeCycle {
		if rxModeCycle[i].code == code {
			return i
		}
	}
	return -1
}
