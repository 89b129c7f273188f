package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sstallion/go-hid"
)

const hidReportLen = 64

// hidSource yields raw input reports. An idle Poll returns a nil report.
type hidSource interface {
	Poll(timeout time.Duration) ([]byte, error)
	Close() error
}

type hidDevice struct {
	dev *hid.Device
	buf []byte
}

func openHIDDevice(vid, pid uint16) (*hidDevice, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hid init: %w", err)
	}
	dev, err := hid.OpenFirst(vid, pid)
	if err != nil {
		_ = hid.Exit()
		return nil, fmt.Errorf("can't open HID device %04x:%04x: %w", vid, pid, err)
	}
	return &hidDevice{dev: dev, buf: make([]byte, hidReportLen)}, nil
}

func (d *hidDevice) Poll(timeout time.Duration) ([]byte, error) {
	n, err := d.dev.ReadWithTimeout(d.buf, timeout)
	if errors.Is(err, hid.ErrTimeout) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	report := make([]byte, n)
	copy(report, d.buf[:n])
	return report, nil
}

func (d *hidDevice) Close() error {
	err := d.dev.Close()
	if exitErr := hid.Exit(); err == nil {
		err = exitErr
	}
	return err
}
