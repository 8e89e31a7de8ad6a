package gps

import (
	"errors"
	"fmt"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// sentenceKind classifies what a single NMEA line means for the fix state.
type sentenceKind int

const (
	resultMalformed sentenceKind = iota // framing, checksum or field error
	resultIgnored                       // well formed, not a position sentence
	resultNoFix                         // position sentence flagged void / invalid
	resultPosition                      // position sentence with a usable fix
)

func (k sentenceKind) String() string {
	switch k {
	case resultMalformed:
		return "malformed"
	case resultIgnored:
		return "ignored"
	case resultNoFix:
		return "no_fix"
	case resultPosition:
		return "position"
	}
	return "unknown"
}

type sentenceResult struct {
	kind   sentenceKind
	typ    string
	err    error
	update func(f *Fix) // nil unless kind is resultPosition or resultNoFix
}

// parseSentence parses one NMEA line. It never panics; every failure is
// reported as a resultMalformed value for the caller to discard.
func parseSentence(line string) sentenceResult {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return sentenceResult{kind: resultMalformed, err: fmt.Errorf("nmea: missing '$'")}
	}

	s, err := nmea.Parse(line)
	if err != nil {
		var unsupported *nmea.NotSupportedError
		if errors.As(err, &unsupported) {
			return sentenceResult{kind: resultIgnored, typ: unsupported.Prefix}
		}
		return sentenceResult{kind: resultMalformed, err: err}
	}

	switch m := s.(type) {
	case nmea.RMC:
		return fromRMC(m)
	case nmea.GGA:
		return fromGGA(m)
	case nmea.GLL:
		return fromGLL(m)
	default:
		return sentenceResult{kind: resultIgnored, typ: s.DataType()}
	}
}

func voidResult(typ string) sentenceResult {
	return sentenceResult{
		kind:   resultNoFix,
		typ:    typ,
		update: func(f *Fix) { f.Valid = false },
	}
}

// positionFields reads the raw latitude/longitude fields starting at index i
// of the sentence payload (lat, N/S, lon, E/W).
func positionFields(fields []string, i int) (RawCoordinate, RawCoordinate, error) {
	if len(fields) < i+4 {
		return RawCoordinate{}, RawCoordinate{}, fmt.Errorf("nmea: too few fields")
	}
	lat, err := parseRawCoordinate(fields[i], fields[i+1])
	if err != nil {
		return RawCoordinate{}, RawCoordinate{}, fmt.Errorf("latitude: %w", err)
	}
	if lat.Hemisphere != North && lat.Hemisphere != South {
		return RawCoordinate{}, RawCoordinate{}, fmt.Errorf("latitude: hemisphere %s", lat.Hemisphere)
	}
	lon, err := parseRawCoordinate(fields[i+2], fields[i+3])
	if err != nil {
		return RawCoordinate{}, RawCoordinate{}, fmt.Errorf("longitude: %w", err)
	}
	if lon.Hemisphere != East && lon.Hemisphere != West {
		return RawCoordinate{}, RawCoordinate{}, fmt.Errorf("longitude: hemisphere %s", lon.Hemisphere)
	}
	return lat, lon, nil
}

// RMC fields after the type: time, status, lat, N/S, lon, E/W, speed,
// course, date, ...
func fromRMC(m nmea.RMC) sentenceResult {
	if m.Validity != nmea.ValidRMC {
		return voidResult(nmea.TypeRMC)
	}
	lat, lon, err := positionFields(m.Fields, 2)
	if err != nil {
		return sentenceResult{kind: resultMalformed, typ: nmea.TypeRMC, err: err}
	}
	return sentenceResult{
		kind: resultPosition,
		typ:  nmea.TypeRMC,
		update: func(f *Fix) {
			f.Latitude = lat
			f.Longitude = lon
			f.Time = m.Time.String()
			f.Date = m.Date.String()
			f.SpeedKnots = m.Speed
			f.CourseDeg = m.Course
			f.Valid = true
		},
	}
}

// GGA fields after the type: time, lat, N/S, lon, E/W, quality, satellites,
// HDOP, altitude, ...
func fromGGA(m nmea.GGA) sentenceResult {
	if m.FixQuality == nmea.Invalid || m.FixQuality == "" {
		return voidResult(nmea.TypeGGA)
	}
	lat, lon, err := positionFields(m.Fields, 1)
	if err != nil {
		return sentenceResult{kind: resultMalformed, typ: nmea.TypeGGA, err: err}
	}
	return sentenceResult{
		kind: resultPosition,
		typ:  nmea.TypeGGA,
		update: func(f *Fix) {
			f.Latitude = lat
			f.Longitude = lon
			f.Time = m.Time.String()
			f.FixQuality = m.FixQuality
			f.Satellites = m.NumSatellites
			f.HDOP = m.HDOP
			f.AltitudeM = m.Altitude
			f.Valid = true
		},
	}
}

// GLL fields after the type: lat, N/S, lon, E/W, time, status, ...
func fromGLL(m nmea.GLL) sentenceResult {
	if m.Validity != nmea.ValidGLL {
		return voidResult(nmea.TypeGLL)
	}
	lat, lon, err := positionFields(m.Fields, 0)
	if err != nil {
		return sentenceResult{kind: resultMalformed, typ: nmea.TypeGLL, err: err}
	}
	return sentenceResult{
		kind: resultPosition,
		typ:  nmea.TypeGLL,
		update: func(f *Fix) {
			f.Latitude = lat
			f.Longitude = lon
			f.Time = m.Time.String()
			f.Valid = true
		},
	}
}
