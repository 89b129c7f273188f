package main

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultKnobSensitivity = 3
	defaultLongPress       = 500 * time.Millisecond

	defaultKnobOffset   = 3
	defaultButtonOffset = 5
)

type knobMode int

const (
	knobModeFreq knobMode = iota
	knobModeStep
	knobModeRXMode
)

func (m knobMode) String() string {
	switch m {
	case knobModeStep:
		return "STEP"
	case knobModeRXMode:
		return "RXMODE"
	}
	return "FREQ"
}

type pressLength int

const (
	pressShort pressLength = iota
	pressLong
)

func (p pressLength) String() string {
	if p == pressLong {
		return "long"
	}
	return "short"
}

type buttonID int

const (
	buttonPrimary buttonID = iota
	buttonSecondary
	buttonMode
	numButtons
)

func (b buttonID) String() string {
	switch b {
	case buttonPrimary:
		return "primary"
	case buttonSecondary:
		return "secondary"
	}
	return "mode"
}

// presetKey names the preset recalled by a press of b, e.g. "primary-short".
func presetKey(b buttonID, l pressLength) string {
	return b.String() + "-" + l.String()
}

// radioCommander is the part of the protocol engine the remote drives.
type radioCommander interface {
	snapshot() receiverState
	nudgeFrequency(dir int)
	stepBy(delta int)
	setMode(code byte)
	setFrequency(f uint64)
}

type hidLayout struct {
	knobOffset   int
	buttonOffset int
	// Buttons are active-low: a clear bit means pressed.
	masks [numButtons]byte
}

type remoteConfig struct {
	layout      hidLayout
	sensitivity int
	longPress   time.Duration
	presets     map[string]string
}

type buttonState struct {
	pressedAt time.Time
	active    bool
}

// remoteControl turns HID reports from the knob remote into radio commands.
type remoteControl struct {
	cfg   remoteConfig
	radio radioCommander
	log   *zap.SugaredLogger

	mutex     sync.Mutex
	mode      knobMode
	tickDir   int
	tickCount int
	rxModeIdx int
	buttons   [numButtons]buttonState
}

// newRemoteControl starts in FREQ mode with no button held.
func newRemoteControl(cfg remoteConfig, radio radioCommander, log *zap.SugaredLogger) *remoteControl {
	if cfg.sensitivity < 1 {
		cfg.sensitivity = 1
	}
	return &remoteControl{
		cfg:       cfg,
		radio:     radio,
		log:       log,
		rxModeIdx: -1,
	}
}

func (r *remoteControl) currentKnobMode() knobMode {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.mode
}

// handleReport processes one HID report received at now: the knob byte
// first, then press and release edges of each configured button.
func (r *remoteControl) handleReport(report []byte, now time.Time) {
	l := r.cfg.layout
	if len(report) <= l.knobOffset || len(report) <= l.buttonOffset {
		r.log.Debugw("short HID report", "report", fmt.Sprintf("% x", report))
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	switch dir := int8(report[l.knobOffset]); {
	case dir > 0:
		r.tick(1)
	case dir < 0:
		r.tick(-1)
	}

	bits := report[l.buttonOffset]
	for b := buttonID(0); b < numButtons; b++ {
		mask := l.masks[b]
		if mask == 0 {
			continue
		}
		pressed := bits&mask == 0
		bs := &r.buttons[b]
		switch {
		case pressed && !bs.active:
			bs.active = true
			bs.pressedAt = now
		case !pressed && bs.active:
			held := now.Sub(bs.pressedAt)
			*bs = buttonState{}
			r.released(b, r.classify(held))
		}
	}
}

// classify splits presses at the long press threshold, which counts as long.
func (r *remoteControl) classify(held time.Duration) pressLength {
	if held >= r.cfg.longPress {
		return pressLong
	}
	return pressShort
}

// released dispatches a completed press.
func (r *remoteControl) released(b buttonID, l pressLength) {
	r.log.Debugw("button released", "button", b, "press", l)
	if b == buttonMode {
		r.switchMode(l)
		return
	}
	r.recallPreset(b, l)
}

// switchMode handles the mode button. Any press leaves STEP or RXMODE,
// from FREQ a short press selects STEP and a long press RXMODE.
func (r *remoteControl) switchMode(l pressLength) {
	prev := r.mode
	switch {
	case r.mode != knobModeFreq:
		r.mode = knobModeFreq
	case l == pressLong:
		r.mode = knobModeRXMode
		r.rxModeIdx = -1
		if m := r.radio.snapshot().mode; m.valid {
			r.rxModeIdx = rxModeCycleIdx(m.code)
		}
	default:
		r.mode = knobModeStep
	}
	r.tickCount = 0
	r.log.Debugw("knob mode changed", "from", prev, "to", r.mode)
}

// recallPreset tunes to the preset bound to the button and press length.
func (r *remoteControl) recallPreset(b buttonID, l pressLength) {
	key := presetKey(b, l)
	str, ok := r.cfg.presets[key]
	if !ok {
		r.log.Warnw("no preset configured", "preset", key)
		return
	}
	if f, ok := freqOrPrevious(r.log, str, r.radio.snapshot().freq); ok {
		r.radio.setFrequency(f)
	}
}

// tick handles one knob detent. Only every sensitivity'th tick in the same
// direction does something.
func (r *remoteControl) tick(dir int) {
	if dir != r.tickDir {
		r.tickDir = dir
		r.tickCount = 0
	}
	r.tickCount++
	if r.tickCount < r.cfg.sensitivity {
		return
	}
	r.tickCount = 0

	switch r.mode {
	case knobModeFreq:
		r.radio.nudgeFrequency(dir)
	case knobModeStep:
		r.radio.stepBy(dir)
	case knobModeRXMode:
		switch {
		case r.rxModeIdx >= 0:
			n := len(rxModeCycle)
			r.rxModeIdx = ((r.rxModeIdx+dir)%n + n) % n
		case dir > 0:
			r.rxModeIdx = 0
		default:
			r.rxModeIdx = len(rxModeCycle) - 1
		}
		r.radio.setMode(rxModeCycle[r.rxModeIdx].code)
	}
}
