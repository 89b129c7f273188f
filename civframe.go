package main

import (
	"errors"
	"fmt"
)

const (
	civPreamble = 0xfe
	civEndOfMsg = 0xfd

	// FE FE to from cmd|FD
	civMinFrameLen = 5
	// FE FE to from cmd mode FD
	civMinModeFrameLen = 7
	civMinStepFrameLen = 7
	// FE FE to from cmd + 5 BCD bytes + FD. Some captures show a 10 byte
	// variant, so the codec accepts a configurable minimum down to this.
	defaultMinFreqFrameLen = 5 + freqBCDLen + 1
	lowestMinFreqFrameLen  = 10

	// Longest run of bytes kept while waiting for an end marker.
	maxPendingFrameLen = 64
)

// Commands reference: IC-R30 CI-V reference guide.
const (
	cmdFreqBroadcast = 0x00
	cmdModeBroadcast = 0x01
	cmdReadFreq      = 0x03
	cmdReadMode      = 0x04
	cmdStep          = 0x05
	cmdSetMode       = 0x06
)

var (
	errIncompleteFrame = errors.New("incomplete frame")
	errShortFrame      = errors.New("frame too short")
)

type civFrameKind int

const (
	frameOpaque civFrameKind = iota
	frameFreq
	frameMode
	frameStep
)

func (k civFrameKind) String() string {
	switch k {
	case frameFreq:
		return "freq"
	case frameMode:
		return "mode"
	case frameStep:
		return "step"
	default:
		return "opaque"
	}
}

type civFrame struct {
	kind     civFrameKind
	to       byte
	from     byte
	cmd      byte
	digits   string    // frameFreq
	mode     civMode   // frameMode
	filter   civFilter // frameMode, valid only if the radio sent one
	stepCode byte      // frameStep
}

type civCodec struct {
	civAddress        byte
	controllerAddress byte
	minFreqFrameLen   int
}

// newCIVCodec returns a codec talking to civAddress as controllerAddress.
// minFreqFrameLen is raised to lowestMinFreqFrameLen if needed.
func newCIVCodec(civAddress, controllerAddress byte, minFreqFrameLen int) civCodec {
	if minFreqFrameLen < lowestMinFreqFrameLen {
		minFreqFrameLen = lowestMinFreqFrameLen
	}
	return civCodec{
		civAddress:        civAddress,
		controllerAddress: controllerAddress,
		minFreqFrameLen:   minFreqFrameLen,
	}
}

// prepPacket wraps cmd and data into a frame addressed to the radio.
func (c civCodec) prepPacket(cmd byte, data []byte) (pkt []byte) {
	pkt = make([]byte, 0, civMinFrameLen+1+len(data))
	pkt = append(pkt, civPreamble, civPreamble, c.civAddress, c.controllerAddress, cmd)
	pkt = append(pkt, data...)
	pkt = append(pkt, civEndOfMsg)
	return
}

// queryFrame asks the radio to report the value behind cmd.
func (c civCodec) queryFrame(cmd byte) []byte {
	return c.prepPacket(cmd, nil)
}

// setFreqFrame sets the operating frequency in Hz.
func (c civCodec) setFreqFrame(f uint64) []byte {
	asBCD := encodeFreqData(f) // fixed width so leading zeros aren't lost
	return c.prepPacket(cmdFreqBroadcast, asBCD[:])
}

// setModeFrame selects an operating mode, leaving the filter to the radio.
func (c civCodec) setModeFrame(mode byte) []byte {
	return c.prepPacket(cmdSetMode, []byte{mode})
}

// parseFrame decodes one candidate frame ending with the end marker. The
// preamble bytes are not checked: whatever preceded the end marker is taken
// as the frame.
func (c civCodec) parseFrame(d []byte) (f civFrame, err error) {
	if len(d) == 0 || d[len(d)-1] != civEndOfMsg {
		return f, errIncompleteFrame
	}
	if len(d) < civMinFrameLen {
		return f, fmt.Errorf("%w: %d bytes", errShortFrame, len(d))
	}

	f.to = d[2]
	f.from = d[3]
	f.cmd = d[4]
	if len(d) == civMinFrameLen {
		// The end marker sits where the command would be.
		return f, nil
	}

	switch f.cmd {
	case cmdFreqBroadcast, cmdReadFreq:
		if len(d) < c.minFreqFrameLen {
			return f, fmt.Errorf("%w: freq frame has %d bytes, need %d", errShortFrame, len(d), c.minFreqFrameLen)
		}
		f.kind = frameFreq
		f.digits = decodeFreqDigits(d[5 : len(d)-1])
	case cmdModeBroadcast, cmdReadMode:
		if len(d) < civMinModeFrameLen {
			return f, fmt.Errorf("%w: mode frame has %d bytes", errShortFrame, len(d))
		}
		f.kind = frameMode
		f.mode = decodeModeCode(d[5])
		if d[6] != civEndOfMsg {
			f.filter = decodeFilterCode(d[6])
		}
	case cmdStep:
		if len(d) < civMinStepFrameLen {
			return f, fmt.Errorf("%w: step frame has %d bytes", errShortFrame, len(d))
		}
		f.kind = frameStep
		f.stepCode = d[len(d)-2]
	}
	return f, nil
}

// civFrameAssembler collects stream bytes until an end marker arrives.
type civFrameAssembler struct {
	buf []byte
}

// push appends b and returns the collected bytes once b closes a frame.
func (a *civFrameAssembler) push(b byte) (frame []byte, ok bool) {
	a.buf = append(a.buf, b)
	if b != civEndOfMsg {
		if len(a.buf) > maxPendingFrameLen {
			a.buf = a.buf[len(a.buf)-maxPendingFrameLen:]
		}
		return nil, false
	}
	frame = a.buf
	a.buf = nil
	return frame, true
}

// pending is the number of bytes waiting for an end of message.
func (a *civFrameAssembler) pending() int {
	return len(a.buf)
}

// describePacket renders a frame as hex with its addresses named, for packet
// debugging.
func (c civCodec) describePacket(dir string, pkt []byte) string {
	msg := fmt.Sprintf("%s [% x]", dir, pkt)
	if len(pkt) < civMinFrameLen {
		return msg
	}
	msg += " to " + c.addressName(pkt[2]) + " <= from " + c.addressName(pkt[3])
	msg += fmt.Sprintf(" cmd: [%02x]", pkt[4])
	if len(pkt) > civMinFrameLen+1 {
		msg += fmt.Sprintf(" payload [% x]", pkt[5:len(pkt)-1])
	}
	return msg
}

// addressName names a frame address relative to this codec.
func (c civCodec) addressName(a byte) string {
	switch a {
	case c.civAddress:
		return "[RADIO]"
	case c.controllerAddress:
		return "[CONTROLLER]"
	}
	return fmt.Sprintf("[UNKNOWN DEVICE: %02x]", a)
}
