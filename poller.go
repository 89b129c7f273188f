package main

import (
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// poller drives everything from one goroutine: serial bytes first, then at
// most one HID report, then the frames queued during the cycle.
type poller struct {
	radio      *civControlStruct
	remote     *remoteControl
	hid        hidSource
	hidTimeout time.Duration
	now        func() time.Time
	log        *zap.SugaredLogger
}

func newPoller(radio *civControlStruct, remote *remoteControl, hid hidSource, hidTimeout time.Duration,
	log *zap.SugaredLogger) *poller {
	return &poller{
		radio:      radio,
		remote:     remote,
		hid:        hid,
		hidTimeout: hidTimeout,
		now:        time.Now,
		log:        log,
	}
}

func (p *poller) cycle() {
	if err := p.radio.readTransport(); err != nil {
		p.log.Errorw("lost the receiver, continuing without it", "error", err)
		if st := p.radio.detach(); st != nil {
			if err := st.Close(); err != nil {
				p.log.Debugw("can't close the receiver transport", "error", err)
			}
		}
	}

	if p.hid == nil {
		time.Sleep(p.hidTimeout)
	} else {
		report, err := p.hid.Poll(p.hidTimeout)
		switch {
		case err != nil:
			p.log.Errorw("lost the remote, continuing without it", "error", err)
			if err := p.hid.Close(); err != nil {
				p.log.Debugw("can't close the remote", "error", err)
			}
			p.hid = nil
		case report != nil:
			p.remote.handleReport(report, p.now())
		}
	}

	if err := p.radio.flush(); err != nil {
		p.log.Errorw("can't send to the receiver", "error", err)
	}
}

func (p *poller) run(stop <-chan os.Signal) {
	for {
		select {
		case sig := <-stop:
			p.log.Infow("stopping", "signal", sig.String())
			return
		default:
			p.cycle()
		}
	}
}

func (p *poller) close() (err error) {
	if st := p.radio.detach(); st != nil {
		err = multierr.Append(err, st.Close())
	}
	if p.hid != nil {
		err = multierr.Append(err, p.hid.Close())
		p.hid = nil
	}
	return err
}
