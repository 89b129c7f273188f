package main

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTxQueueFlushesInOrder(t *testing.T) {
	c := qt.New(t)
	lg, _ := newObservedLogger()
	q := newTxQueue(lg)
	st := &fakeTransport{open: true}

	q.add("a", []byte{1})
	q.add("b", []byte{2})
	q.add("c", []byte{3})

	sent, err := q.flush(st)
	c.Assert(err, qt.IsNil)
	c.Assert(sent, qt.Equals, 3)
	c.Assert(st.tx, qt.DeepEquals, [][]byte{{1}, {2}, {3}})
	c.Assert(q.len(), qt.Equals, 0)
}

func TestTxQueueWithoutTransport(t *testing.T) {
	c := qt.New(t)
	lg, logs := newObservedLogger()
	q := newTxQueue(lg)

	sent, err := q.flush(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(sent, qt.Equals, 0)

	q.add("a", []byte{1})
	_, err = q.flush(nil)
	c.Assert(err, qt.ErrorIs, errNoTransport)
	c.Assert(q.len(), qt.Equals, 0)

	q.add("b", []byte{2})
	q.add("c", []byte{3})
	_, err = q.flush(&fakeTransport{})
	c.Assert(err, qt.ErrorIs, errNoTransport)
	c.Assert(q.len(), qt.Equals, 0)

	c.Assert(logs.FilterMessage("dropping unsent frame").Len(), qt.Equals, 3)

	// Nothing comes back once a transport shows up.
	st := &fakeTransport{open: true}
	sent, err = q.flush(st)
	c.Assert(err, qt.IsNil)
	c.Assert(sent, qt.Equals, 0)
	c.Assert(st.tx, qt.HasLen, 0)
}

func TestTxQueueDropsOnWriteError(t *testing.T) {
	c := qt.New(t)
	lg, logs := newObservedLogger()
	q := newTxQueue(lg)
	st := &fakeTransport{open: true, writeErr: errors.New("busy")}

	q.add("a", []byte{1})
	q.add("b", []byte{2})
	sent, err := q.flush(st)
	c.Assert(err, qt.ErrorMatches, "busy")
	c.Assert(sent, qt.Equals, 0)
	c.Assert(q.len(), qt.Equals, 0)
	c.Assert(logs.FilterMessage("dropping unsent frame").Len(), qt.Equals, 2)

	// Frames are not sent again once the link recovers.
	st.writeErr = nil
	q.add("c", []byte{3})
	sent, err = q.flush(st)
	c.Assert(err, qt.IsNil)
	c.Assert(sent, qt.Equals, 1)
	c.Assert(st.tx, qt.DeepEquals, [][]byte{{3}})
}

type failAfterTransport struct {
	*fakeTransport
	ok int
}

func (f *failAfterTransport) Write(p []byte) (int, error) {
	if f.ok == 0 {
		return 0, errors.New("short write")
	}
	f.ok--
	return f.fakeTransport.Write(p)
}

func TestTxQueueDropsRestAfterFailedFrame(t *testing.T) {
	c := qt.New(t)
	lg, _ := newObservedLogger()
	q := newTxQueue(lg)
	st := &failAfterTransport{fakeTransport: &fakeTransport{open: true}, ok: 1}

	q.add("a", []byte{1})
	q.add("b", []byte{2})
	q.add("c", []byte{3})
	sent, err := q.flush(st)
	c.Assert(err, qt.ErrorMatches, "short write")
	c.Assert(sent, qt.Equals, 1)
	c.Assert(st.tx, qt.DeepEquals, [][]byte{{1}})
	c.Assert(q.len(), qt.Equals, 0)
}
