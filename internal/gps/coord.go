// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"strconv"
	"strings"
)

// Hemisphere is the compass letter that follows an NMEA latitude or
// longitude field.
type Hemisphere byte

const (
	North Hemisphere = 'N'
	South Hemisphere = 'S'
	East  Hemisphere = 'E'
	West  Hemisphere = 'W'
)

// ParseHemisphere validates an NMEA hemisphere field.
func ParseHemisphere(s string) (Hemisphere, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, fmt.Errorf("gps: invalid hemisphere %q", s)
	}
	h := Hemisphere(s[0])
	if !h.Valid() {
		return 0, fmt.Errorf("gps: invalid hemisphere %q", s)
	}
	return h, nil
}

func (h Hemisphere) Valid() bool {
	switch h {
	case North, South, East, West:
		return true
	}
	return false
}

func (h Hemisphere) String() string {
	if h == 0 {
		return ""
	}
	return string(rune(h))
}

func (h Hemisphere) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// RawCoordinate is a latitude or longitude as it appears on the wire:
// whole degrees, decimal minutes and a hemisphere. Degrees == 0 means no
// fix has been seen yet.
type RawCoordinate struct {
	Degrees    float64    `json:"degrees"`
	Minutes    float64    `json:"minutes"`
	Hemisphere Hemisphere `json:"hemisphere"`
}

// Convert turns a raw coordinate into signed decimal degrees with six
// fractional digits. South and West are negative. The second result is
// false when there is no fix (zero degrees); callers supply their own
// fallback.
//
// Convert panics on a hemisphere outside N/S/E/W. RawCoordinate values
// built by this package are always valid.
func Convert(raw RawCoordinate) (string, bool) {
	if raw.Degrees == 0 {
		return "", false
	}

	d := raw.Degrees + raw.Minutes/60.0
	switch raw.Hemisphere {
	case North, East:
	case South, West:
		d = -d
	default:
		panic(fmt.Sprintf("gps: invalid hemisphere %q in raw coordinate", byte(raw.Hemisphere)))
	}

	return strconv.FormatFloat(d, 'f', 6, 64), true
}

// parseRawCoordinate splits an NMEA ddmm.mmmm / dddmm.mmmm field into
// degrees and minutes. Everything left of the last two integer digits is
// degrees.
func parseRawCoordinate(value, hemi string) (RawCoordinate, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return RawCoordinate{}, fmt.Errorf("gps: empty coordinate")
	}
	h, err := ParseHemisphere(hemi)
	if err != nil {
		return RawCoordinate{}, err
	}

	intPart := value
	if dot := strings.IndexByte(value, '.'); dot != -1 {
		intPart = value[:dot]
	}
	if len(intPart) < 3 {
		return RawCoordinate{}, fmt.Errorf("gps: short coordinate %q", value)
	}

	deg, err := strconv.ParseUint(intPart[:len(intPart)-2], 10, 16)
	if err != nil {
		return RawCoordinate{}, fmt.Errorf("gps: bad degrees in %q: %w", value, err)
	}
	mins, err := strconv.ParseFloat(value[len(intPart)-2:], 64)
	if err != nil {
		return RawCoordinate{}, fmt.Errorf("gps: bad minutes in %q: %w", value, err)
	}
	if mins < 0 || mins >= 60 {
		return RawCoordinate{}, fmt.Errorf("gps: minutes out of range in %q", value)
	}

	return RawCoordinate{Degrees: float64(deg), Minutes: mins, Hemisphere: h}, nil
}
