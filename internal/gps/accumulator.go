// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"time"

	logger "github.com/sirupsen/logrus"
)

// NMEA 0183 caps a sentence at 82 characters including "$" and CR/LF.
// Anything past maxLineLen is line noise and the line is dropped.
const maxLineLen = 128

// Stats counts complete lines by outcome.
type Stats struct {
	Position  uint64
	NoFix     uint64
	Ignored   uint64
	Malformed uint64
	Overflow  uint64
}

// Accumulator reassembles NMEA sentences from a byte stream, a byte at a
// time, and keeps the last known good fix. It is not safe for concurrent
// use; the sampling loop owns it.
type Accumulator struct {
	buf      []byte
	inLine   bool
	overflow bool

	fix   Fix
	stats Stats

	now func() time.Time

	// OnSentence, when set, is called with the type and outcome of every
	// complete line. Used for metrics.
	OnSentence func(typ, outcome string)
}

func NewAccumulator() *Accumulator {
	return NewAccumulatorClock(time.Now)
}

// NewAccumulatorClock stamps Fix.UpdatedAt with now instead of the wall
// clock.
func NewAccumulatorClock(now func() time.Time) *Accumulator {
	return &Accumulator{
		buf: make([]byte, 0, maxLineLen),
		now: now,
	}
}

// Write implements io.Writer. It never fails.
func (a *Accumulator) Write(p []byte) (int, error) {
	a.Drain(p)
	return len(p), nil
}

// Drain feeds bytes into the accumulator. Bad input is discarded; the fix
// only changes when a complete, valid position sentence arrives.
func (a *Accumulator) Drain(p []byte) {
	for _, b := range p {
		a.feed(b)
	}
}

func (a *Accumulator) feed(b byte) {
	switch {
	case b == '$':
		// start of sentence; a half-read line before it is abandoned
		a.buf = append(a.buf[:0], b)
		a.inLine = true
		a.overflow = false
	case !a.inLine:
		// noise between sentences, or the LF after a CR
	case b == '\r' || b == '\n':
		a.endLine()
	default:
		if len(a.buf) >= maxLineLen {
			a.overflow = true
			return
		}
		a.buf = append(a.buf, b)
	}
}

func (a *Accumulator) endLine() {
	line := string(a.buf)
	overflow := a.overflow
	a.buf = a.buf[:0]
	a.inLine = false
	a.overflow = false

	if overflow {
		a.stats.Overflow++
		logger.Debugf("nmea: dropped oversized line (%d+ bytes)", maxLineLen)
		a.report("", "overflow")
		return
	}

	res := parseSentence(line)
	switch res.kind {
	case resultPosition:
		a.stats.Position++
		res.update(&a.fix)
		a.fix.UpdatedAt = a.now()
	case resultNoFix:
		a.stats.NoFix++
		res.update(&a.fix)
	case resultIgnored:
		// not a position sentence; accepted and dropped
		a.stats.Ignored++
	case resultMalformed:
		// keep the previous fix and wait for the next good sentence
		a.stats.Malformed++
		logger.Debugf("nmea: discarding %q: %v", line, res.err)
	}
	a.report(res.typ, res.kind.String())
}

func (a *Accumulator) report(typ, outcome string) {
	if a.OnSentence != nil {
		a.OnSentence(typ, outcome)
	}
}

// Latitude returns the last known latitude. Degrees is 0 until a fix.
func (a *Accumulator) Latitude() RawCoordinate {
	return a.fix.Latitude
}

// Longitude returns the last known longitude. Degrees is 0 until a fix.
func (a *Accumulator) Longitude() RawCoordinate {
	return a.fix.Longitude
}

func (a *Accumulator) Snapshot() Fix {
	return a.fix
}

func (a *Accumulator) Stats() Stats {
	return a.stats
}
