package main

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

type fakeTransport struct {
	open     bool
	rx       [][]byte
	tx       [][]byte
	readErr  error
	writeErr error
	closed   int
}

func (f *fakeTransport) Open() error  { f.open = true; return nil }
func (f *fakeTransport) IsOpen() bool { return f.open }

func (f *fakeTransport) Read(p []byte) (int, error) {
	if len(f.rx) == 0 {
		return 0, f.readErr
	}
	n := copy(p, f.rx[0])
	if n < len(f.rx[0]) {
		f.rx[0] = f.rx[0][n:]
	} else {
		f.rx = f.rx[1:]
	}
	return n, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.tx = append(f.tx, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeTransport) Close() error {
	f.open = false
	f.closed++
	return nil
}

type fakeHID struct {
	reports [][]byte
	err     error
	closed  bool
}

func (f *fakeHID) Poll(timeout time.Duration) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reports) == 0 {
		return nil, nil
	}
	r := f.reports[0]
	f.reports = f.reports[1:]
	return r, nil
}

func (f *fakeHID) Close() error {
	f.closed = true
	return nil
}

// hidReport builds a remote report. Buttons are active-low, so 0xff means
// nothing is held.
func hidReport(knob, buttons byte) []byte {
	r := make([]byte, 8)
	r[defaultKnobOffset] = knob
	r[defaultButtonOffset] = buttons
	return r
}

var testCodec = newCIVCodec(0x96, 0xe0, defaultMinFreqFrameLen)

// radioFrame builds a frame as the receiver sends it to the controller.
func radioFrame(cmd byte, data ...byte) []byte {
	pkt := []byte{civPreamble, civPreamble, 0xe0, 0x96, cmd}
	pkt = append(pkt, data...)
	return append(pkt, civEndOfMsg)
}

func freqBroadcast(f uint64) []byte {
	b := encodeFreqData(f)
	return radioFrame(cmdFreqBroadcast, b[:]...)
}
