package main

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Used for knob tuning until the radio reports or we infer a step.
const defaultStepIdx = 3 // 1 kHz

type autoStepPolicy int

const (
	// Nearest canonical step, accepted within 10% of that step.
	autoStepTolerant autoStepPolicy = iota
	// Only deltas equal to a canonical step.
	autoStepExact
	autoStepOff
)

func parseAutoStepPolicy(s string) (autoStepPolicy, error) {
	switch s {
	case "tolerant":
		return autoStepTolerant, nil
	case "exact":
		return autoStepExact, nil
	case "off":
		return autoStepOff, nil
	}
	return autoStepOff, fmt.Errorf("unknown auto-step policy %q", s)
}

func (p autoStepPolicy) String() string {
	switch p {
	case autoStepTolerant:
		return "tolerant"
	case autoStepExact:
		return "exact"
	}
	return "off"
}

// inferStep guesses the radio's tuning step from the difference between two
// broadcast frequencies.
func (p autoStepPolicy) inferStep(diff uint64) (idx int, ok bool) {
	switch p {
	case autoStepExact:
		idx = stepIdxForValue(diff)
		return idx, idx != stepUnknown
	case autoStepTolerant:
		bestErr := ^uint64(0)
		for i, ts := range tuningSteps {
			e := absDiff(ts, diff)
			if e < bestErr {
				bestErr = e
				idx = i
			}
		}
		if bestErr*10 <= tuningSteps[idx] {
			return idx, true
		}
	}
	return stepUnknown, false
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

type tuningStep struct {
	idx      int  // into tuningSteps, stepUnknown if not known
	code     byte // raw step code of the last report that didn't map
	reported bool
}

var noStep = tuningStep{idx: stepUnknown}

func (t tuningStep) hz() (uint64, bool) {
	if t.idx == stepUnknown {
		return 0, false
	}
	return tuningSteps[t.idx], true
}

func (t tuningStep) String() string {
	if t.idx != stepUnknown {
		return formatStep(tuningSteps[t.idx])
	}
	if t.reported {
		return fmt.Sprintf("Unknown(0x%02x)", t.code)
	}
	return "?"
}

// receiverState is the latest known state of the receiver.
type receiverState struct {
	freq       uint64
	freqDigits string // as last received, for display
	mode       civMode
	filter     civFilter
	step       tuningStep
}

type civControlStruct struct {
	codec        civCodec
	asm          civFrameAssembler
	tx           *txQueue
	log          *zap.SugaredLogger
	autoStep     autoStepPolicy
	debugPackets bool

	st      civTransport
	readBuf []byte

	state struct {
		mutex sync.Mutex
		receiverState
		lastBroadcastFreq uint64
	}
}

func newCIVControl(codec civCodec, policy autoStepPolicy, log *zap.SugaredLogger) *civControlStruct {
	s := &civControlStruct{
		codec:    codec,
		tx:       newTxQueue(log),
		log:      log,
		autoStep: policy,
		readBuf:  make([]byte, 256),
	}
	s.state.step = noStep
	s.state.freqDigits = "0"
	return s
}

// attach replaces the transport. A nil transport leaves the engine running
// with nowhere to send frames.
func (s *civControlStruct) attach(st civTransport) {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.st = st
}

// detach removes and returns the current transport.
func (s *civControlStruct) detach() civTransport {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	st := s.st
	s.st = nil
	return st
}

func (s *civControlStruct) snapshot() receiverState {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	return s.state.receiverState
}

// readTransport feeds every byte the transport has ready into the frame
// assembler, dispatching frames as they complete.
func (s *civControlStruct) readTransport() error {
	s.state.mutex.Lock()
	st := s.st
	s.state.mutex.Unlock()

	if st == nil || !st.IsOpen() {
		return nil
	}
	for {
		n, err := st.Read(s.readBuf)
		for _, b := range s.readBuf[:n] {
			s.feed(b)
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if n < len(s.readBuf) {
			return nil
		}
	}
}

func (s *civControlStruct) feed(b byte) {
	if frame, ok := s.asm.push(b); ok {
		s.decode(frame)
	}
}

func (s *civControlStruct) decode(d []byte) {
	if s.debugPackets {
		s.log.Debug(s.codec.describePacket("decoding", d))
	}

	f, err := s.codec.parseFrame(d)
	if err != nil {
		s.log.Debugw("ignoring malformed frame", "frame", fmt.Sprintf("% x", d), "error", err)
		return
	}

	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()

	switch f.kind {
	case frameFreq:
		s.decodeFreq(f)
	case frameMode:
		s.decodeMode(f)
	case frameStep:
		s.decodeStep(f)
	default:
		s.log.Debugw("ignoring frame", "cmd", fmt.Sprintf("0x%02x", f.cmd))
	}
}

func (s *civControlStruct) decodeFreq(f civFrame) {
	freq, err := freqFromDigits(f.digits)
	if err != nil {
		s.log.Warnw("can't decode frequency, keeping last one",
			"digits", f.digits, "freq", s.state.freq)
		return
	}

	if last := s.state.lastBroadcastFreq; last > 0 {
		if idx, ok := s.autoStep.inferStep(absDiff(freq, last)); ok && idx != s.state.step.idx {
			s.log.Debugw("detected tuning step", "step", tuningSteps[idx])
			s.state.step = tuningStep{idx: idx}
		}
	}

	s.state.freq = freq
	s.state.freqDigits = f.digits
	s.state.lastBroadcastFreq = freq
}

func (s *civControlStruct) decodeMode(f civFrame) {
	s.state.mode = f.mode
	if f.filter.valid {
		s.state.filter = f.filter
	}
	if !f.mode.known() {
		s.log.Debugw("unknown mode code", "code", fmt.Sprintf("0x%02x", f.mode.code))
	}
}

func (s *civControlStruct) decodeStep(f civFrame) {
	idx := stepIdxForCode(f.stepCode)
	s.state.step = tuningStep{idx: idx, code: f.stepCode, reported: true}
	if idx == stepUnknown {
		s.log.Debugw("unknown step code", "code", fmt.Sprintf("0x%02x", f.stepCode))
	}
}

// send queues pkt for the next flush. Caller holds the state mutex.
func (s *civControlStruct) send(name string, pkt []byte) {
	if s.debugPackets {
		s.log.Debug(s.codec.describePacket(name, pkt))
	}
	s.tx.add(name, pkt)
}

// flush writes the frames queued during this cycle.
func (s *civControlStruct) flush() error {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()

	_, err := s.tx.flush(s.st)
	if errors.Is(err, errNoTransport) {
		return nil
	}
	return err
}

func (s *civControlStruct) setFreqLocked(f uint64) {
	if f > maxFreq {
		f = maxFreq
	}
	s.state.freq = f
	s.state.freqDigits = strconv.FormatUint(f, 10)
	s.send("setFreq", s.codec.setFreqFrame(f))
}

func (s *civControlStruct) setFrequency(f uint64) {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.setFreqLocked(f)
}

func (s *civControlStruct) setMode(code byte) {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.send("setMode", s.codec.setModeFrame(code))
}

func (s *civControlStruct) queryFrequency() {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.send("getFreq", s.codec.queryFrame(cmdReadFreq))
}

func (s *civControlStruct) queryMode() {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.send("getMode", s.codec.queryFrame(cmdReadMode))
}

func (s *civControlStruct) queryStep() {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.send("getStep", s.codec.queryFrame(cmdStep))
}

func (s *civControlStruct) stepIdxLocked() int {
	if s.state.step.idx == stepUnknown {
		return defaultStepIdx
	}
	return s.state.step.idx
}

// nudgeFrequency moves the frequency by dir steps of the current tuning
// step, not going below 0 Hz.
func (s *civControlStruct) nudgeFrequency(dir int) {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()

	ts := tuningSteps[s.stepIdxLocked()]
	f := s.state.freq
	if dir > 0 {
		f += ts
	} else if f > ts {
		f -= ts
	} else {
		f = 0
	}
	s.setFreqLocked(f)
}

// stepBy selects a neighbouring tuning step locally, nothing is sent.
func (s *civControlStruct) stepBy(delta int) {
	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()
	s.state.step = tuningStep{idx: wrapStepIdx(s.stepIdxLocked(), delta)}
}

// init asks the radio for the state we track.
func (s *civControlStruct) init() {
	s.queryFrequency()
	s.queryMode()
	s.queryStep()
}
