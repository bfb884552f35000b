// SPDX-License-Identifier: Unlicense OR MIT

// Package activitylog implements a binary diagnostic log of wheel
// events and the synthetic scroll they produced.
//
// File layout:
//
//	[0:8]   Magic bytes: "OSSLOG\x01\x00"
//	Then N records, each structured as:
//	  [0]     Record type byte (RecordTypeEvent=0x01 | RecordTypeState=0x02 |
//	          RecordTypeCompletion=0x03)
//	  [1:5]   uint32 big-endian payload length
//	  [5:5+N] fixed-layout binary payload (see Event/StateChange/Completion)
package activitylog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

var magic = [8]byte{'O', 'S', 'S', 'L', 'O', 'G', 0x01, 0x00}

const maxPayloadBytes = 1 * 1024 * 1024

// RecordType discriminates the three record kinds in a log file.
type RecordType byte

const (
	RecordTypeEvent      RecordType = 0x01
	RecordTypeState      RecordType = 0x02
	RecordTypeCompletion RecordType = 0x03
)

// Event is one accepted wheel event: the raw delta, the resolved
// foreground executable, and the accelerated amount handed to the
// axis.
type Event struct {
	UnixNanos int64
	Axis      uint8 // 0 = vertical, 1 = horizontal
	RawDelta  int32
	Amount    float64
	Exe       string
}

func (e Event) marshal() []byte {
	buf := make([]byte, 8+1+4+8+2+len(e.Exe))
	binary.BigEndian.PutUint64(buf[0:8], uint64(e.UnixNanos))
	buf[8] = e.Axis
	binary.BigEndian.PutUint32(buf[9:13], uint32(e.RawDelta))
	binary.BigEndian.PutUint64(buf[13:21], math.Float64bits(e.Amount))
	binary.BigEndian.PutUint16(buf[21:23], uint16(len(e.Exe)))
	copy(buf[23:], e.Exe)
	return buf
}

func unmarshalEvent(b []byte) (Event, error) {
	if len(b) < 23 {
		return Event{}, fmt.Errorf("activitylog: bad event payload length %d", len(b))
	}
	n := binary.BigEndian.Uint16(b[21:23])
	if len(b) != 23+int(n) {
		return Event{}, fmt.Errorf("activitylog: event payload length mismatch")
	}
	return Event{
		UnixNanos: int64(binary.BigEndian.Uint64(b[0:8])),
		Axis:      b[8],
		RawDelta:  int32(binary.BigEndian.Uint32(b[9:13])),
		Amount:    math.Float64frombits(binary.BigEndian.Uint64(b[13:21])),
		Exe:       string(b[23 : 23+int(n)]),
	}, nil
}

// Completion records one axis animation run finishing: the total
// integer pixels it emitted and its wall-clock duration.
type Completion struct {
	UnixNanos     int64
	Axis          uint8 // 0 = vertical, 1 = horizontal
	Total         int32
	DurationNanos int64
}

func (c Completion) marshal() []byte {
	buf := make([]byte, 8+1+4+8)
	binary.BigEndian.PutUint64(buf[0:8], uint64(c.UnixNanos))
	buf[8] = c.Axis
	binary.BigEndian.PutUint32(buf[9:13], uint32(c.Total))
	binary.BigEndian.PutUint64(buf[13:21], uint64(c.DurationNanos))
	return buf
}

func unmarshalCompletion(b []byte) (Completion, error) {
	if len(b) != 21 {
		return Completion{}, fmt.Errorf("activitylog: bad completion payload length %d", len(b))
	}
	return Completion{
		UnixNanos:     int64(binary.BigEndian.Uint64(b[0:8])),
		Axis:          b[8],
		Total:         int32(binary.BigEndian.Uint32(b[9:13])),
		DurationNanos: int64(binary.BigEndian.Uint64(b[13:21])),
	}, nil
}

// StateChange records the engine's lifecycle transitions.
type StateChange struct {
	UnixNanos int64
	State     string
}

func (s StateChange) marshal() []byte {
	buf := make([]byte, 8+2+len(s.State))
	binary.BigEndian.PutUint64(buf[0:8], uint64(s.UnixNanos))
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(s.State)))
	copy(buf[10:], s.State)
	return buf
}

func unmarshalStateChange(b []byte) (StateChange, error) {
	if len(b) < 10 {
		return StateChange{}, fmt.Errorf("activitylog: bad state payload length %d", len(b))
	}
	n := binary.BigEndian.Uint16(b[8:10])
	if len(b) != 10+int(n) {
		return StateChange{}, fmt.Errorf("activitylog: state payload length mismatch")
	}
	return StateChange{
		UnixNanos: int64(binary.BigEndian.Uint64(b[0:8])),
		State:     string(b[10 : 10+int(n)]),
	}, nil
}

// Writer appends activity records to an activitylog file.
type Writer struct {
	w    *bufio.Writer
	f    *os.File
	path string
}

// Create truncates (or creates) the file at path, writes the magic
// header, and returns a Writer ready to accept records.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("activitylog: create %q: %w", path, err)
	}
	w := &Writer{f: f, w: bufio.NewWriterSize(f, 32*1024), path: path}
	if _, err := w.w.Write(magic[:]); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("activitylog: write magic: %w", err)
	}
	return w, nil
}

// Path returns the filesystem path of the underlying log file.
func (w *Writer) Path() string { return w.path }

// WriteEvent appends ev as an Event record.
func (w *Writer) WriteEvent(ev Event) error {
	return w.appendRecord(RecordTypeEvent, ev.marshal())
}

// WriteStateChange appends sc as a StateChange record.
func (w *Writer) WriteStateChange(sc StateChange) error {
	return w.appendRecord(RecordTypeState, sc.marshal())
}

// WriteCompletion appends c as a Completion record.
func (w *Writer) WriteCompletion(c Completion) error {
	return w.appendRecord(RecordTypeCompletion, c.marshal())
}

// Close flushes buffered data and closes the underlying file. Safe to
// call more than once.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		w.f = nil
		return fmt.Errorf("activitylog: flush %q: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		w.f = nil
		return fmt.Errorf("activitylog: close %q: %w", w.path, err)
	}
	w.f = nil
	return nil
}

func (w *Writer) appendRecord(rt RecordType, payload []byte) error {
	if err := w.w.WriteByte(byte(rt)); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.w.Write(payload)
	return err
}

// Record is a decoded entry from an activitylog file. For a known Type
// exactly one of Event, State, or Completion is non-nil; a record of an
// unrecognised type leaves all three nil.
type Record struct {
	Type       RecordType
	Event      *Event
	State      *StateChange
	Completion *Completion
}

// Reader reads records sequentially from an activitylog file.
type Reader struct {
	f *os.File
	r *bufio.Reader
}

// Open opens path, validates the magic bytes, and returns a Reader
// positioned at the first record.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("activitylog: open %q: %w", path, err)
	}
	br := bufio.NewReaderSize(f, 32*1024)

	var got [8]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("activitylog: read magic: %w", err)
	}
	if got != magic {
		_ = f.Close()
		return nil, fmt.Errorf("activitylog: %q is not a valid activity log (bad magic bytes)", path)
	}
	return &Reader{f: f, r: br}, nil
}

// Next reads and decodes the next record. It returns (nil, io.EOF)
// when the file is exhausted.
func (r *Reader) Next() (*Record, error) {
	typByte, err := r.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("activitylog: read type: %w", err)
	}
	rt := RecordType(typByte)

	var lenBuf [4]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("activitylog: read length: %w", err)
	}
	payloadLen := binary.BigEndian.Uint32(lenBuf[:])
	if payloadLen > maxPayloadBytes {
		return nil, fmt.Errorf("activitylog: record payload too large (%d bytes); possible corruption", payloadLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("activitylog: read payload: %w", err)
	}

	rec := &Record{Type: rt}
	switch rt {
	case RecordTypeEvent:
		ev, err := unmarshalEvent(payload)
		if err != nil {
			return nil, err
		}
		rec.Event = &ev
	case RecordTypeState:
		sc, err := unmarshalStateChange(payload)
		if err != nil {
			return nil, err
		}
		rec.State = &sc
	case RecordTypeCompletion:
		c, err := unmarshalCompletion(payload)
		if err != nil {
			return nil, err
		}
		rec.Completion = &c
	}
	return rec, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
