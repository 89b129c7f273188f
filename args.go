package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pborman/getopt"
)

var (
	verboseLog        bool
	quietLog          bool
	serialPortName    string
	serialBaudRate    int
	serialReadTimeout time.Duration
	civAddress        byte
	controllerAddress byte
	hidVendorID       uint16
	hidProductID      uint16
	hidPollTimeout    time.Duration
	knobSensitivity   int
	longPressDuration time.Duration
	autoStep          autoStepPolicy
	minFreqFrameLen   int
	buttonMasks       [numButtons]byte
	presets           map[string]string
	statusLogInterval time.Duration
	debugPackets      bool
)

func parseHex(s string, bitSize int) (uint64, error) {
	s = strings.Replace(s, "0x", "", -1)
	s = strings.Replace(s, "0X", "", -1)
	return strconv.ParseUint(s, 16, bitSize)
}

const minHIDPollTimeout = time.Millisecond

// msDuration converts a millisecond flag value, rejecting anything below lowest.
func msDuration(what string, ms uint16, lowest time.Duration) (time.Duration, error) {
	d := time.Duration(ms) * time.Millisecond
	if d < lowest {
		return 0, fmt.Errorf("invalid %s: %v is below %v", what, d, lowest)
	}
	return d, nil
}

func mustMSDuration(what string, ms uint16, lowest time.Duration) time.Duration {
	d, err := msDuration(what, ms, lowest)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return d
}

func mustParseHex(what, s string, bitSize int) uint64 {
	v, err := parseHex(s, bitSize)
	if err != nil {
		fmt.Println("invalid", what+": can't parse", s)
		os.Exit(1)
	}
	return v
}

func parseArgs() {
	h := getopt.BoolLong("help", 'h', "display help")
	v := getopt.BoolLong("verbose", 'v', "Enable verbose (debug) logging")
	q := getopt.BoolLong("quiet", 'q', "Disable logging")
	p := getopt.StringLong("port", 'p', "/dev/ttyUSB0", "Serial port of the receiver")
	b := getopt.IntLong("baud", 'b', 9600, "Serial port baud rate")
	rt := getopt.Uint16Long("read-timeout", 'r', 20, "Serial read timeout in milliseconds")
	c := getopt.StringLong("civ-address", 'c', "0x96", "CI-V address for radio")
	ca := getopt.StringLong("controller-address", 'z', "0xe0", "Controller address")
	vid := getopt.StringLong("hid-vid", 'V', "0x0b33", "Vendor ID of the knob remote")
	pid := getopt.StringLong("hid-pid", 'P', "0x0020", "Product ID of the knob remote")
	ht := getopt.Uint16Long("hid-timeout", 't', 10, "HID poll timeout in milliseconds")
	s := getopt.IntLong("sensitivity", 's', defaultKnobSensitivity, "Knob ticks per action")
	l := getopt.Uint16Long("long-press", 'l', uint16(defaultLongPress/time.Millisecond), "Long press threshold in milliseconds")
	as := getopt.StringLong("auto-step", 'a', autoStepTolerant.String(), "Auto step detection: tolerant, exact or off")
	ml := getopt.IntLong("min-freq-frame", 'm', defaultMinFreqFrameLen, "Minimum length of a frequency frame in bytes")
	mp := getopt.StringLong("mask-primary", 0, "0x10", "Report bit mask of the primary preset button")
	ms := getopt.StringLong("mask-secondary", 0, "0x20", "Report bit mask of the secondary preset button")
	mm := getopt.StringLong("mask-mode", 0, "0x40", "Report bit mask of the knob mode button")
	ps := getopt.StringLong("primary-short", 0, "145.500", "Preset recalled by a short press of the primary button (MHz)")
	pl := getopt.StringLong("primary-long", 0, "433.500", "Preset recalled by a long press of the primary button (MHz)")
	ss := getopt.StringLong("secondary-short", 0, "7.1", "Preset recalled by a short press of the secondary button (MHz)")
	sl := getopt.StringLong("secondary-long", 0, "14.2", "Preset recalled by a long press of the secondary button (MHz)")
	i := getopt.Uint16Long("log-interval", 'i', 150, "Status bar/log interval in milliseconds")
	dp := getopt.BoolLong("debug-packets", 'D', "Show CI-V packets for debugging")

	getopt.Parse()

	if *h || *p == "" || (*q && *v) {
		fmt.Println(getAboutStr())
		getopt.Usage()
		os.Exit(1)
	}

	verboseLog = *v || *dp
	quietLog = *q
	serialPortName = *p
	serialBaudRate = *b
	serialReadTimeout = time.Duration(*rt) * time.Millisecond

	civAddress = byte(mustParseHex("CI-V address", *c, 8))
	controllerAddress = byte(mustParseHex("CI-V address for controller", *ca, 8))
	hidVendorID = uint16(mustParseHex("HID vendor ID", *vid, 16))
	hidProductID = uint16(mustParseHex("HID product ID", *pid, 16))
	hidPollTimeout = mustMSDuration("HID poll timeout", *ht, minHIDPollTimeout)

	if *s < 1 {
		fmt.Println("invalid sensitivity:", *s)
		os.Exit(1)
	}
	knobSensitivity = *s
	longPressDuration = time.Duration(*l) * time.Millisecond

	var err error
	if autoStep, err = parseAutoStepPolicy(*as); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *ml < lowestMinFreqFrameLen {
		fmt.Println("invalid minimum frequency frame length:", *ml, "is below", lowestMinFreqFrameLen)
		os.Exit(1)
	}
	minFreqFrameLen = *ml

	buttonMasks[buttonPrimary] = byte(mustParseHex("primary button mask", *mp, 8))
	buttonMasks[buttonSecondary] = byte(mustParseHex("secondary button mask", *ms, 8))
	buttonMasks[buttonMode] = byte(mustParseHex("mode button mask", *mm, 8))

	presets = map[string]string{
		presetKey(buttonPrimary, pressShort):   *ps,
		presetKey(buttonPrimary, pressLong):    *pl,
		presetKey(buttonSecondary, pressShort): *ss,
		presetKey(buttonSecondary, pressLong):  *sl,
	}

	statusLogInterval = mustMSDuration("log interval", *i, time.Millisecond)
	debugPackets = *dp
}
