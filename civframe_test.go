package main

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBuildFrames(t *testing.T) {
	c := qt.New(t)

	c.Assert(testCodec.queryFrame(cmdReadFreq), qt.DeepEquals,
		[]byte{0xfe, 0xfe, 0x96, 0xe0, 0x03, 0xfd})
	c.Assert(testCodec.queryFrame(cmdStep), qt.DeepEquals,
		[]byte{0xfe, 0xfe, 0x96, 0xe0, 0x05, 0xfd})
	c.Assert(testCodec.setFreqFrame(145500000), qt.DeepEquals,
		[]byte{0xfe, 0xfe, 0x96, 0xe0, 0x00, 0x00, 0x00, 0x50, 0x45, 0x01, 0xfd})
	c.Assert(testCodec.setModeFrame(0x05), qt.DeepEquals,
		[]byte{0xfe, 0xfe, 0x96, 0xe0, 0x06, 0x05, 0xfd})
}

func TestSetFreqFrameRoundTrip(t *testing.T) {
	c := qt.New(t)
	for _, f := range []uint64{0, 1, 6250, 7100000, 145500000, 433500000, maxFreq} {
		frame, err := testCodec.parseFrame(testCodec.setFreqFrame(f))
		c.Assert(err, qt.IsNil)
		c.Assert(frame.kind, qt.Equals, frameFreq)
		got, err := freqFromDigits(frame.digits)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, f)
	}
}

func TestParseFrame(t *testing.T) {
	c := qt.New(t)

	c.Run("incomplete", func(c *qt.C) {
		_, err := testCodec.parseFrame([]byte{0xfe, 0xfe, 0xe0, 0x96, 0x03, 0x00})
		c.Assert(err, qt.ErrorIs, errIncompleteFrame)
		_, err = testCodec.parseFrame(nil)
		c.Assert(err, qt.ErrorIs, errIncompleteFrame)
	})

	c.Run("too short", func(c *qt.C) {
		_, err := testCodec.parseFrame([]byte{0xfe, 0xe0, 0xfd})
		c.Assert(err, qt.ErrorIs, errShortFrame)
	})

	c.Run("end marker in command position", func(c *qt.C) {
		f, err := testCodec.parseFrame([]byte{0xfe, 0xfe, 0xe0, 0x96, 0xfd})
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameOpaque)
	})

	c.Run("frequency frame below minimum length", func(c *qt.C) {
		short := radioFrame(cmdFreqBroadcast, 0x00, 0x00, 0x50, 0x45)
		_, err := testCodec.parseFrame(short)
		c.Assert(err, qt.ErrorIs, errShortFrame)

		lenient := newCIVCodec(0x96, 0xe0, lowestMinFreqFrameLen)
		f, err := lenient.parseFrame(short)
		c.Assert(err, qt.IsNil)
		c.Assert(f.digits, qt.Equals, "45500000")
	})

	c.Run("minimum length is clamped", func(c *qt.C) {
		c.Assert(newCIVCodec(0x96, 0xe0, 3).minFreqFrameLen, qt.Equals, lowestMinFreqFrameLen)
	})

	c.Run("read frequency response", func(c *qt.C) {
		b := encodeFreqData(7100000)
		f, err := testCodec.parseFrame(radioFrame(cmdReadFreq, b[:]...))
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameFreq)
		c.Assert(f.digits, qt.Equals, "7100000")
		c.Assert(f.to, qt.Equals, byte(0xe0))
		c.Assert(f.from, qt.Equals, byte(0x96))
	})

	c.Run("mode with filter", func(c *qt.C) {
		f, err := testCodec.parseFrame(radioFrame(cmdModeBroadcast, 0x05, 0x01))
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameMode)
		c.Assert(f.mode.String(), qt.Equals, "FM")
		c.Assert(f.filter.valid, qt.IsTrue)
		c.Assert(f.filter.String(), qt.Equals, "Narrow")
	})

	c.Run("mode without filter", func(c *qt.C) {
		f, err := testCodec.parseFrame(radioFrame(cmdReadMode, 0x02))
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameMode)
		c.Assert(f.mode.String(), qt.Equals, "AM")
		c.Assert(f.filter.valid, qt.IsFalse)
	})

	c.Run("unknown mode code is kept", func(c *qt.C) {
		f, err := testCodec.parseFrame(radioFrame(cmdModeBroadcast, 0x20))
		c.Assert(err, qt.IsNil)
		c.Assert(f.mode.known(), qt.IsFalse)
		c.Assert(f.mode.code, qt.Equals, byte(0x20))
		c.Assert(f.mode.String(), qt.Equals, "Unknown(0x20)")
	})

	c.Run("short mode frame", func(c *qt.C) {
		_, err := testCodec.parseFrame(radioFrame(cmdModeBroadcast))
		c.Assert(err, qt.ErrorIs, errShortFrame)
	})

	c.Run("step takes the byte before the end marker", func(c *qt.C) {
		f, err := testCodec.parseFrame(radioFrame(cmdStep, 0x00, 0x05))
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameStep)
		c.Assert(f.stepCode, qt.Equals, byte(0x05))
	})

	c.Run("other commands are opaque", func(c *qt.C) {
		f, err := testCodec.parseFrame(radioFrame(0x1c, 0x00, 0x01))
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameOpaque)
		c.Assert(f.cmd, qt.Equals, byte(0x1c))
	})
}

func TestFrameAssembler(t *testing.T) {
	c := qt.New(t)

	push := func(a *civFrameAssembler, data []byte) (frames [][]byte) {
		for _, b := range data {
			if f, ok := a.push(b); ok {
				frames = append(frames, f)
			}
		}
		return
	}

	c.Run("splits on end markers", func(c *qt.C) {
		var a civFrameAssembler
		first := freqBroadcast(145500000)
		second := radioFrame(cmdModeBroadcast, 0x05, 0x00)
		stream := append(append([]byte{}, first...), second...)

		frames := push(&a, stream[:7])
		c.Assert(frames, qt.HasLen, 0)
		c.Assert(a.pending(), qt.Equals, 7)

		frames = push(&a, stream[7:])
		c.Assert(frames, qt.DeepEquals, [][]byte{first, second})
		c.Assert(a.pending(), qt.Equals, 0)
	})

	c.Run("garbage before a frame is passed along", func(c *qt.C) {
		var a civFrameAssembler
		stream := append([]byte{0x11, 0x22}, freqBroadcast(145500000)...)
		frames := push(&a, stream)
		c.Assert(frames, qt.HasLen, 1)
		c.Assert(frames[0], qt.DeepEquals, stream)

		// The destination address lands in the command position.
		f, err := testCodec.parseFrame(frames[0])
		c.Assert(err, qt.IsNil)
		c.Assert(f.kind, qt.Equals, frameOpaque)
	})

	c.Run("pending bytes are bounded", func(c *qt.C) {
		var a civFrameAssembler
		for i := 0; i < 3*maxPendingFrameLen; i++ {
			a.push(0x01)
		}
		c.Assert(a.pending(), qt.Equals, maxPendingFrameLen)
	})
}

func TestDescribePacket(t *testing.T) {
	c := qt.New(t)
	msg := testCodec.describePacket("setFreq", testCodec.setFreqFrame(145500000))
	c.Assert(msg, qt.Contains, "to [RADIO] <= from [CONTROLLER]")
	c.Assert(msg, qt.Contains, "cmd: [00]")

	msg = testCodec.describePacket("decoding", radioFrame(0x1c, 0x01))
	c.Assert(msg, qt.Contains, "to [CONTROLLER] <= from [RADIO]")
}
