package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/ssh/terminal"
)

type statusLogData struct {
	line1 string
	line2 string

	startTime time.Time
}

type statusLogStruct struct {
	ticker           *time.Ticker
	stopChan         chan bool
	stopFinishedChan chan bool
	mutex            sync.Mutex
	realtime         bool

	// showing is read by the log output without taking mutex.
	showing atomic.Bool

	radio  *civControlStruct
	remote *remoteControl

	preGenerated struct {
		freqColor    *color.Color
		knobColor    *color.Color
		unknownColor *color.Color
	}

	data *statusLogData
}

type termAspects struct {
	cols        int
	rows        int
	cursorUp    string
	cursorDown  string
	eraseLine   string
	eraseScreen string
}

var statusLog statusLogStruct
var termDetail = termAspects{
	cursorUp:    fmt.Sprintf("%c[1A", 0x1b),
	cursorDown:  fmt.Sprintf("%c[1B", 0x1b),
	eraseLine:   fmt.Sprintf("%c[2K", 0x1b),
	eraseScreen: fmt.Sprintf("%c[2J", 0x1b),
}

// formatFreqDigits renders a decoded digit string as MHz with all 6
// fractional digits, without going through floating point.
func formatFreqDigits(digits string) string {
	if len(digits) < 7 {
		digits = strings.Repeat("0", 7-len(digits)) + digits
	}
	return digits[:len(digits)-6] + "." + digits[len(digits)-6:]
}

func (s *statusLogStruct) clearStatusLine() {
	fmt.Print(termDetail.eraseLine)
}

func (s *statusLogStruct) print() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.realtime {
		s.clearStatusLine()
		fmt.Println(s.data.line1)
		s.clearStatusLine()
		fmt.Printf(s.data.line2+"%v", termDetail.cursorUp)
	} else {
		log.PrintStatusLog(s.data.line2)
	}
}

func (s *statusLogStruct) padRight(str string, length int) string {
	if !s.realtime {
		return str
	}
	if length-len(str) > 0 {
		str += strings.Repeat(" ", length-len(str))
	}
	return str
}

func (s *statusLogStruct) styled(c *color.Color, str string, known bool) string {
	if !known {
		c = s.preGenerated.unknownColor
	}
	return c.Sprint(str)
}

func (s *statusLogStruct) update() {
	rs := s.radio.snapshot()
	knob := knobModeFreq
	if s.remote != nil {
		knob = s.remote.currentKnobMode()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, stepKnown := rs.step.hz()
	s.data.line1 = fmt.Sprint(
		s.preGenerated.knobColor.Sprintf(" %v ", s.padRight(knob.String(), 6)),
		" TS: ", s.styled(s.preGenerated.freqColor, s.padRight(rs.step.String(), 6), stepKnown),
		"  - uptime: ", time.Since(s.data.startTime).Round(time.Second))

	s.data.line2 = fmt.Sprint(
		s.preGenerated.freqColor.Sprint(formatFreqDigits(rs.freqDigits)), " MHz ",
		s.styled(s.preGenerated.freqColor, rs.mode.String(), rs.mode.known()), " ",
		s.styled(s.preGenerated.freqColor, rs.filter.String(), rs.filter.known()),
		"\r")

	if s.realtime {
		t := time.Now().Format("2006-01-02T15:04:05 Z0700")
		s.data.line1 = fmt.Sprint(t, " ", s.data.line1)
		s.data.line2 = fmt.Sprint(t, " ", s.data.line2)
	}
}

func (s *statusLogStruct) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.update()
			s.print()
		case <-s.stopChan:
			s.stopFinishedChan <- true
			return
		}
	}
}

func (s *statusLogStruct) isActive() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.ticker != nil
}

func (s *statusLogStruct) startPeriodicPrint(radio *civControlStruct, remote *remoteControl) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.initIfNeeded()

	s.radio = radio
	s.remote = remote
	s.data = &statusLogData{startTime: time.Now()}

	s.stopChan = make(chan bool)
	s.stopFinishedChan = make(chan bool)
	s.ticker = time.NewTicker(statusLogInterval)
	s.showing.Store(s.realtime)
	go s.loop()
}

func (s *statusLogStruct) stopPeriodicPrint() {
	if !s.isActive() {
		return
	}
	s.mutex.Lock()
	s.ticker.Stop()
	s.mutex.Unlock()

	s.stopChan <- true
	<-s.stopFinishedChan

	s.mutex.Lock()
	s.ticker = nil
	s.showing.Store(false)
	s.mutex.Unlock()

	if s.realtime {
		for i := 0; i < 2; i++ {
			s.clearStatusLine()
			fmt.Println()
		}
	}
}

func (s *statusLogStruct) initIfNeeded() {
	if s.data != nil { // Already initialized?
		return
	}

	s.realtime = !quietLog && isatty.IsTerminal(os.Stdout.Fd())
	if !s.realtime && statusLogInterval < time.Second {
		statusLogInterval = time.Second
	}

	cols, rows, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err == nil {
		termDetail.cols = cols
		termDetail.rows = rows
	} else {
		// Redirected to a file.
		termDetail.cols = 120
		termDetail.rows = 20
	}

	if s.realtime && termDetail.rows > 10 {
		vertWhitespace := strings.Repeat(termDetail.cursorDown, termDetail.rows-10)
		fmt.Printf("%v%v", termDetail.eraseScreen, vertWhitespace)
	}

	s.preGenerated.freqColor = color.New(color.FgHiWhite, color.Bold)
	s.preGenerated.knobColor = color.New(color.FgHiWhite)
	s.preGenerated.knobColor.Add(color.BgBlue)
	s.preGenerated.unknownColor = color.New(color.FgHiYellow)
}
