// Package telemetry builds and parses the one-line text record sent by the
// agent on every tick.
package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/relabs-tech/env_telemetry/internal/env"
)

// NoFix is written for both coordinates when the position is unknown.
const NoFix = "0.000000"

const separator = "   "

var labels = [...]string{"Temperatura", "Presion", "Humedad", "Latitud", "Longitud"}

// Format renders one telemetry line. lat and lon are decimal degree strings
// from gps.Convert; if either is nil both are replaced by NoFix.
func Format(m env.Measurement, lat, lon *string) string {
	latS, lonS := NoFix, NoFix
	if lat != nil && lon != nil {
		latS, lonS = *lat, *lon
	}

	fields := [...]string{
		formatNumber(m.Temperature),
		formatNumber(m.Pressure),
		formatNumber(m.Humidity),
		latS,
		lonS,
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(labels[i])
		b.WriteString(": ")
		b.WriteString(f)
	}
	return b.String()
}

// formatNumber prints the shortest decimal that round-trips, always with a
// fractional part: 45 -> "45.0", 1013.2 -> "1013.2".
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Reading is a telemetry line split back into its values.
type Reading struct {
	Temperature float64 `json:"temp"`
	Pressure    float64 `json:"pressure"`
	Humidity    float64 `json:"humidity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// HasPosition is false for the NoFix fallback.
func (r Reading) HasPosition() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

// Parse splits a line produced by Format. Labels are checked by position
// and every value must be a finite number.
func Parse(line string) (Reading, error) {
	parts := strings.Split(strings.TrimSpace(line), separator)
	if len(parts) != len(labels) {
		return Reading{}, fmt.Errorf("telemetry: want %d fields, got %d", len(labels), len(parts))
	}

	var vals [len(labels)]float64
	for i, p := range parts {
		label, value, ok := strings.Cut(p, ":")
		if !ok {
			return Reading{}, fmt.Errorf("telemetry: field %d %q has no label", i, p)
		}
		if strings.TrimSpace(label) != labels[i] {
			return Reading{}, fmt.Errorf("telemetry: field %d label %q, want %q", i, label, labels[i])
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Reading{}, fmt.Errorf("telemetry: %s: %w", labels[i], err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Reading{}, fmt.Errorf("telemetry: %s: non-finite value %q", labels[i], strings.TrimSpace(value))
		}
		vals[i] = v
	}

	return Reading{
		Temperature: vals[0],
		Pressure:    vals[1],
		Humidity:    vals[2],
		Latitude:    vals[3],
		Longitude:   vals[4],
	}, nil
}
