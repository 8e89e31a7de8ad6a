package gps

import "time"

// Fix is the last known good GPS state. Position fields are overwritten
// sentence by sentence and never cleared; there is no staleness check.
type Fix struct {
	Latitude  RawCoordinate `json:"lat"`
	Longitude RawCoordinate `json:"lon"`

	Time       string  `json:"time,omitempty"`        // e.g. "12:35:19.0000"
	Date       string  `json:"date,omitempty"`        // e.g. "23/03/94"
	SpeedKnots float64 `json:"speed_knots,omitempty"` // speed over ground
	CourseDeg  float64 `json:"course_deg,omitempty"`  // course over ground
	FixQuality string  `json:"fix_quality,omitempty"` // GGA quality, "0" = invalid
	Satellites int64   `json:"satellites,omitempty"`
	HDOP       float64 `json:"hdop,omitempty"`
	AltitudeM  float64 `json:"altitude_m,omitempty"`
	Valid      bool    `json:"valid"` // validity of the most recent position sentence

	UpdatedAt time.Time `json:"updated_at"`
}

// HasPosition reports whether both coordinates have been acquired.
func (f Fix) HasPosition() bool {
	return f.Latitude.Degrees != 0 && f.Longitude.Degrees != 0
}
