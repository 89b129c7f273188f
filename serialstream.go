package main

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// civTransport is what the engine needs from a byte link to the radio.
// Read must return within a bounded time, with 0 bytes when idle.
type civTransport interface {
	Open() error
	IsOpen() bool
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

type serialStream struct {
	portName    string
	baudRate    int
	readTimeout time.Duration

	mutex sync.Mutex
	port  serial.Port
}

func newSerialStream(portName string, baudRate int, readTimeout time.Duration) *serialStream {
	return &serialStream{
		portName:    portName,
		baudRate:    baudRate,
		readTimeout: readTimeout,
	}
}

func (s *serialStream) Open() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.port != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(s.portName, mode)
	if err != nil {
		return fmt.Errorf("can't open %s: %w", s.portName, err)
	}
	if err := port.SetReadTimeout(s.readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("can't set read timeout on %s: %w", s.portName, err)
	}
	s.port = port
	return nil
}

func (s *serialStream) IsOpen() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.port != nil
}

func (s *serialStream) current() serial.Port {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.port
}

func (s *serialStream) Read(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, errNoTransport
	}
	return port.Read(p)
}

func (s *serialStream) Write(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, errNoTransport
	}
	return port.Write(p)
}

func (s *serialStream) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
