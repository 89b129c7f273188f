package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var errNoTransport = errors.New("no transport")

type txQueueEntry struct {
	name string
	data []byte
}

// txQueue holds frames generated during one poll cycle until flush. Frames
// are sent once. Whatever can't be sent is dropped, the next broadcast from
// the radio tells us what it actually did.
type txQueue struct {
	entries []txQueueEntry
	log     *zap.SugaredLogger
}

func newTxQueue(log *zap.SugaredLogger) *txQueue {
	return &txQueue{log: log}
}

func (q *txQueue) add(name string, p []byte) {
	q.entries = append(q.entries, txQueueEntry{name: name, data: p})
}

func (q *txQueue) len() int {
	return len(q.entries)
}

// drop discards every queued entry.
func (q *txQueue) drop(reason string) (dropped int) {
	for _, e := range q.entries {
		q.log.Debugw("dropping unsent frame", "cmd", e.name, "frame", fmt.Sprintf("% x", e.data),
			"reason", reason)
	}
	dropped = len(q.entries)
	q.entries = nil
	return dropped
}

// flush writes queued frames in order. On a write error the failed frame and
// everything after it are dropped. With no open transport the whole queue is
// dropped and errNoTransport returned.
func (q *txQueue) flush(t civTransport) (sent int, err error) {
	if t == nil || !t.IsOpen() {
		if q.drop(errNoTransport.Error()) > 0 {
			return 0, errNoTransport
		}
		return 0, nil
	}

	for len(q.entries) > 0 {
		e := q.entries[0]
		if _, err = t.Write(e.data); err != nil {
			q.drop(err.Error())
			return sent, err
		}
		q.entries[0] = txQueueEntry{}
		q.entries = q.entries[1:]
		sent++
	}
	return sent, nil
}
